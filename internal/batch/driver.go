// Package batch drives query-list files through the executor: one query per
// input line, 1-indexed, producing the delimited output lines downstream
// evaluation tooling consumes. Line format must not change:
//
//	spatial-combined query:  <n>\t<count>\t<id,id,...>\t<score,score,...>
//	pure text query:         one stored document id per line
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/geodoc-io/geodoc/internal/search/executor"
	"github.com/geodoc-io/geodoc/internal/search/parser"
)

// maxConcurrentQueries bounds the worker pool draining a query file.
const maxConcurrentQueries = 8

// Driver runs queries against one committed index.
type Driver struct {
	parser   *parser.Parser
	executor *executor.Executor
	limit    int
	idRule   string
	logger   *slog.Logger
}

// Summary reports how a batch run went; no per-query failure aborts it.
type Summary struct {
	Queries   int
	Matched   int
	Malformed int
}

// New creates a driver. limit <= 0 disables result truncation; idRule is
// "dash-prefix" (id up to the first dash) or "full".
func New(p *parser.Parser, e *executor.Executor, limit int, idRule string) *Driver {
	return &Driver{
		parser:   p,
		executor: e,
		limit:    limit,
		idRule:   idRule,
		logger:   slog.Default().With("component", "batch-driver"),
	}
}

// Run reads one query per line from in, executes them concurrently, and
// writes their output blocks to out in input order. Blank lines are skipped
// and not numbered.
func (d *Driver) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	var queries []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			queries = append(queries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Summary{}, fmt.Errorf("reading query file: %w", err)
	}

	blocks := make([]string, len(queries))
	malformed := make([]bool, len(queries))
	matched := make([]bool, len(queries))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQueries)
	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			block, ok, bad := d.runOne(i+1, query)
			blocks[i], matched[i], malformed[i] = block, ok, bad
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	w := bufio.NewWriter(out)
	for _, block := range blocks {
		if _, err := w.WriteString(block); err != nil {
			return Summary{}, fmt.Errorf("writing results: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return Summary{}, fmt.Errorf("writing results: %w", err)
	}

	summary := Summary{Queries: len(queries)}
	for i := range queries {
		if matched[i] {
			summary.Matched++
		}
		if malformed[i] {
			summary.Malformed++
		}
	}
	return summary, nil
}

// runOne executes one numbered query and renders its output block. Malformed
// queries degrade to an empty result, never abort the run.
func (d *Driver) runOne(queryNum int, query string) (block string, matchedAny, wasMalformed bool) {
	q, err := d.parser.Parse(query)
	if err != nil {
		d.logger.Warn("malformed query", "query_num", queryNum, "query", query, "error", err)
		wasMalformed = true
	}
	results := d.executor.Execute(q, d.limit)
	matchedAny = len(results) > 0
	if !matchedAny {
		d.logger.Info("query matched nothing", "query_num", queryNum, "query", query)
	}

	if q.Spatial != nil {
		return FormatSpatialLine(queryNum, results, d.idRule), matchedAny, wasMalformed
	}
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(r.Path)
		sb.WriteByte('\n')
	}
	return sb.String(), matchedAny, wasMalformed
}

// FormatSpatialLine renders the tab-delimited line emitted for every
// spatial-combined query, empty result sets included.
func FormatSpatialLine(queryNum int, results []executor.Result, idRule string) string {
	ids := make([]string, len(results))
	scores := make([]string, len(results))
	for i, r := range results {
		ids[i] = extractID(r.Path, idRule)
		scores[i] = fmt.Sprintf("%.2f", r.Score)
	}
	return fmt.Sprintf("%d\t%d\t%s\t%s\n",
		queryNum, len(results), strings.Join(ids, ","), strings.Join(scores, ","))
}

// extractID reduces a stored document id for the spatial output line. The
// id format of the reference collections is "<number>-<suffix>"; dash-prefix
// keeps the number. Other collections should configure "full".
func extractID(path, idRule string) string {
	if idRule == "dash-prefix" {
		if head, _, found := strings.Cut(path, "-"); found {
			return head
		}
	}
	return path
}
