package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/tcstore/internal/audit"
	"github.com/roach88/tcstore/internal/store"
	"github.com/roach88/tcstore/internal/trade"
	"github.com/roach88/tcstore/internal/value"
)

// inputContext is the audit context used when the CLI loads an input file
// into a scratch store.
var inputContext = audit.Context{
	User:   "cli",
	Agent:  "tcstore",
	Action: "load_input",
	Intent: "query",
}

// inputRecord is the file format read by query: the same {id, data} shape
// seed prints.
type inputRecord struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// readTrades reads a JSON array of {"id", "data"} documents. "-" reads
// stdin.
func readTrades(path string, stdin io.Reader) ([]store.Record, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var docs []inputRecord
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}

	records := make([]store.Record, 0, len(docs))
	for i, doc := range docs {
		if strings.TrimSpace(doc.ID) == "" {
			return nil, fmt.Errorf("input[%d]: id is required", i)
		}
		var data value.Value = value.Null{}
		if len(doc.Data) > 0 {
			if data, err = value.Unmarshal(doc.Data); err != nil {
				return nil, fmt.Errorf("input[%d] %s: %w", i, doc.ID, err)
			}
		}
		records = append(records, store.Record{ID: doc.ID, Data: data})
	}
	return records, nil
}

// loadInto saves records through svc. A duplicate id in the input fails
// with ALREADY_EXISTS.
func loadInto(svc *trade.Service, records []store.Record) error {
	for _, rec := range records {
		if _, err := svc.SaveNew(rec.ID, rec.Data, inputContext); err != nil {
			return err
		}
	}
	return nil
}

// parseObject parses a JSON object flag value.
func parseObject(flag, raw string) (value.Object, error) {
	obj, err := value.UnmarshalObject([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return obj, nil
}
