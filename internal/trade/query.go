package trade

import (
	"golang.org/x/sync/errgroup"

	"github.com/roach88/tcstore/internal/filter"
	"github.com/roach88/tcstore/internal/store"
	"github.com/roach88/tcstore/internal/value"
)

// Query selects records. All parts combine with AND.
//
// Where is the filter in wire shape {"<path>": {"<op>": <operand>}}; the
// service parses it, so a malformed filter fails the call with
// INVALID_FILTER. A nil or empty Where matches everything.
//
// Matches are ordered by id. Offset and Limit page through the matches
// (Limit 0 means no limit); CountByFilter ignores both.
type Query struct {
	Where  value.Object
	IDs    []string
	Limit  int
	Offset int
}

// Where is shorthand for a query with only a filter.
func Where(raw value.Object) Query {
	return Query{Where: raw}
}

// compile checks paging and parses the filter.
func (q Query) compile() (*filter.Expression, error) {
	if q.Limit < 0 {
		return nil, &filter.Error{Reason: "limit must be >= 0"}
	}
	if q.Offset < 0 {
		return nil, &filter.Error{Reason: "offset must be >= 0"}
	}
	return filter.Parse(q.Where)
}

// ListItem is the summarized form returned by ListByFilter.
type ListItem struct {
	ID      string       `json:"id"`
	Summary value.Object `json:"summary"`
}

// LoadByFilter returns full records matching q.
func (s *Service) LoadByFilter(q Query) ([]store.Record, error) {
	matches, err := s.match(opLoadByFilter, q)
	if err != nil {
		return nil, err
	}
	return page(matches, q.Offset, q.Limit), nil
}

// ListByFilter returns list items for records matching q. Each summary holds
// the configured list fields that resolve in the record, keyed by path.
func (s *Service) ListByFilter(q Query) ([]ListItem, error) {
	matches, err := s.match(opListByFilter, q)
	if err != nil {
		return nil, err
	}

	matches = page(matches, q.Offset, q.Limit)
	items := make([]ListItem, len(matches))
	for i, rec := range matches {
		items[i] = s.summarize(rec)
	}
	return items, nil
}

// CountByFilter returns how many records match q, ignoring paging.
func (s *Service) CountByFilter(q Query) (int, error) {
	q.Limit, q.Offset = 0, 0
	matches, err := s.match(opCountByFilter, q)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (s *Service) summarize(rec store.Record) ListItem {
	doc := rec.Document()
	summary := value.Object{}
	for _, path := range s.listFields {
		if v, ok := filter.Resolve(doc, path); ok {
			summary[path] = v
		}
	}
	return ListItem{ID: rec.ID, Summary: summary}
}

// match parses q, snapshots the store and evaluates the filter. The filter
// is rejected before any record is read.
// Read-only: nothing is logged to the operation log.
func (s *Service) match(op string, q Query) ([]store.Record, error) {
	expr, err := q.compile()
	if err != nil {
		e := newError(op, "", err)
		s.metrics.observe(op, e)
		s.logger.Debug("query rejected", "op", op, "error", err)
		return nil, e
	}

	candidates := s.store.GetAll()
	if len(q.IDs) > 0 {
		candidates = restrict(candidates, q.IDs)
	}

	matches := s.scan(candidates, expr)
	s.metrics.observe(op, nil)
	s.metrics.scanned(len(candidates), len(matches))
	s.logger.Debug("filter scan", "op", op, "candidates", len(candidates), "matches", len(matches), "workers", s.workers)
	return matches, nil
}

// scan evaluates expr over records, splitting the work across s.workers
// goroutines. The result keeps input order.
func (s *Service) scan(records []store.Record, expr *filter.Expression) []store.Record {
	if expr.Empty() {
		return records
	}

	hit := make([]bool, len(records))
	if s.workers <= 1 || len(records) < 2 {
		for i := range records {
			hit[i] = expr.Matches(records[i].Document())
		}
	} else {
		chunk := (len(records) + s.workers - 1) / s.workers
		var g errgroup.Group
		g.SetLimit(s.workers)
		for start := 0; start < len(records); start += chunk {
			end := min(start+chunk, len(records))
			g.Go(func() error {
				for i := start; i < end; i++ {
					hit[i] = expr.Matches(records[i].Document())
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	out := make([]store.Record, 0, len(records))
	for i, ok := range hit {
		if ok {
			out = append(out, records[i])
		}
	}
	return out
}

// restrict keeps the records whose id is listed. Order stays by id and each
// record appears at most once.
func restrict(records []store.Record, ids []string) []store.Record {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := records[:0:0]
	for _, rec := range records {
		if _, ok := want[rec.ID]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func page(records []store.Record, offset, limit int) []store.Record {
	if offset >= len(records) {
		return []store.Record{}
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}
