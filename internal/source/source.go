// Package source supplies already-extracted document records to the index
// builder. Sources normalise whatever they read (Dublin-Core XML, plain
// text, harvested database rows) into schema.Record field maps; the builder
// never sees raw bytes.
package source

import (
	"context"

	"github.com/geodoc-io/geodoc/internal/schema"
)

// Source streams records in a deterministic order. The callback's error
// applies to that record only; Each isolates it, counts it, and moves on.
// Only an unreadable source or a cancelled context aborts the stream.
type Source interface {
	Each(ctx context.Context, fn func(schema.Record) error) (Stats, error)
}

// Stats summarises one streaming pass.
type Stats struct {
	Emitted int // records handed to the callback that it accepted
	Failed  int // unreadable or rejected records, skipped and reported
}
