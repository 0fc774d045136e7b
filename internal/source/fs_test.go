package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/geodoc-io/geodoc/internal/schema"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return dir
}

func TestFSSourceEach(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"02-b.xml":   `<dc><identifier>02-b</identifier><title>Agua</title></dc>`,
		"01-a.xml":   `<dc><identifier>01-a</identifier><title>Sensores</title></dc>`,
		"03-c.txt":   "texto   plano\ncon saltos",
		"notes.md":   "ignored",
		"broken.xml": `<dc><identifier>oops`,
	})

	var got []schema.Record
	stats, err := NewFS(dir).Each(context.Background(), func(rec schema.Record) error {
		got = append(got, rec)
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}

	if stats.Emitted != 3 || stats.Failed != 1 {
		t.Fatalf("stats = %+v, want 3 emitted, 1 failed", stats)
	}

	// Lexicographic filename order, so ordinals are reproducible.
	wantPaths := []string{"01-a", "02-b", "03-c.txt"}
	var gotPaths []string
	for _, rec := range got {
		gotPaths = append(gotPaths, rec.Fields["path"])
	}
	if diff := cmp.Diff(wantPaths, gotPaths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	// Plain text collapses to single-space separated content.
	if content := got[2].Fields["content"]; content != "texto plano con saltos" {
		t.Errorf("txt content = %q", content)
	}
	for _, rec := range got {
		if rec.Fields["modified"] == "" {
			t.Errorf("record %s has no modified timestamp", rec.Fields["path"])
		}
	}
}

func TestFSSourceRejectionIsIsolated(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"01-a.xml": `<dc><identifier>01-a</identifier></dc>`,
		"02-b.xml": `<dc><identifier>02-b</identifier></dc>`,
	})

	rejectAll := errors.New("not wanted")
	stats, err := NewFS(dir).Each(context.Background(), func(schema.Record) error {
		return rejectAll
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	if stats.Emitted != 0 || stats.Failed != 2 {
		t.Errorf("stats = %+v, want 0 emitted, 2 failed", stats)
	}
}

func TestFSSourceMissingDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")).Each(context.Background(), nil); err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestFSSourceCancelledContext(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"01-a.xml": `<dc><identifier>01-a</identifier></dc>`,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFS(dir).Each(ctx, func(schema.Record) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
