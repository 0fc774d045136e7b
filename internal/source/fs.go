package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/geodoc-io/geodoc/internal/schema"
)

// FSSource reads a flat folder of .xml (Dublin-Core metadata) and .txt
// (free text) documents. Files are visited in lexicographic filename order
// so repeated builds assign the same internal ordinals.
type FSSource struct {
	dir    string
	logger *slog.Logger
}

// NewFS creates a filesystem source over dir.
func NewFS(dir string) *FSSource {
	return &FSSource{
		dir:    dir,
		logger: slog.Default().With("component", "fs-source"),
	}
}

// Each streams one record per readable document. Unreadable or unparseable
// files are skipped and reported, as are records the callback rejects.
func (s *FSSource) Each(ctx context.Context, fn func(schema.Record) error) (Stats, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Stats{}, fmt.Errorf("reading docs folder %s: %w", s.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".xml", ".txt":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var stats Stats
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		rec, err := s.readFile(name)
		if err != nil {
			stats.Failed++
			s.logger.Warn("document skipped", "file", name, "error", err)
			continue
		}
		if err := fn(rec); err != nil {
			stats.Failed++
			s.logger.Warn("document rejected", "file", name, "error", err)
			continue
		}
		stats.Emitted++
	}
	return stats, nil
}

func (s *FSSource) readFile(name string) (schema.Record, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return schema.Record{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rec schema.Record
	if strings.EqualFold(filepath.Ext(name), ".xml") {
		rec, err = ParseDublinCore(f)
		if err != nil {
			return schema.Record{}, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return schema.Record{}, fmt.Errorf("reading %s: %w", path, err)
		}
		rec = schema.Record{Fields: map[string]string{
			"path":    name,
			"content": strings.Join(strings.Fields(string(data)), " "),
		}}
	}
	if info, err := f.Stat(); err == nil {
		rec.Fields["modified"] = info.ModTime().UTC().Format(time.RFC3339)
	}
	return rec, nil
}
