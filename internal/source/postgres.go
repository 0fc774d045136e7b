package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geodoc-io/geodoc/internal/schema"
	"github.com/geodoc-io/geodoc/pkg/postgres"
)

// PGSource streams records from a harvested-metadata table. The table is
// expected to have one column per schema field (missing values as NULL);
// rows arrive ordered by the identifier column for deterministic ordinals.
type PGSource struct {
	client *postgres.Client
	table  string
	schema *schema.Schema
	logger *slog.Logger
}

// NewPG creates a PostgreSQL source reading from table.
func NewPG(client *postgres.Client, table string, s *schema.Schema) *PGSource {
	return &PGSource{
		client: client,
		table:  table,
		schema: s,
		logger: slog.Default().With("component", "pg-source"),
	}
}

// Each selects every row and emits it as a record. A row the callback
// rejects is counted and skipped; a failed scan likewise.
func (s *PGSource) Each(ctx context.Context, fn func(schema.Record) error) (Stats, error) {
	fields := s.schema.Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = quoteIdent(f.Name)
	}
	idColumn := quoteIdent(s.schema.IdentifierField().Name)
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(columns, ", "), quoteIdent(s.table), idColumn)

	rows, err := s.client.DB.QueryContext(ctx, query)
	if err != nil {
		return Stats{}, fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	var stats Stats
	values := make([]sql.NullString, len(fields))
	scanArgs := make([]any, len(fields))
	for i := range values {
		scanArgs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			stats.Failed++
			s.logger.Warn("row skipped", "table", s.table, "error", err)
			continue
		}
		rec := schema.Record{Fields: make(map[string]string, len(fields))}
		for i, f := range fields {
			if values[i].Valid {
				rec.Fields[f.Name] = values[i].String
			}
		}
		if err := fn(rec); err != nil {
			stats.Failed++
			s.logger.Warn("row rejected", "table", s.table, "error", err)
			continue
		}
		stats.Emitted++
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterating %s: %w", s.table, err)
	}
	return stats, nil
}

// quoteIdent double-quotes a SQL identifier. Field names come from the
// schema, not user input, but quoting keeps reserved words usable.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
