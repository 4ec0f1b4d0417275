package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tcstore/internal/store"
	"github.com/roach88/tcstore/internal/trade"
	"github.com/roach88/tcstore/internal/value"
)

// Query modes.
const (
	ModeLoad  = "load"
	ModeList  = "list"
	ModeCount = "count"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Input  string
	Where  string
	IDs    []string
	Limit  int
	Offset int
	Mode   string
	Fields []string // list fields; default from config
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a trade file with a filter expression",
		Long: `Load a JSON array of {"id", "data"} trades into a scratch store and
run a filter query against it.

The filter maps dotted paths, resolved against {"id", "data"}, to operator
objects. Operators: eq ne gt gte lt lte regex in nin. All conditions must
hold.

Modes:
  load  - full matching records
  list  - {id, summary} items built from the list fields
  count - number of matches (ignores --limit and --offset)

Examples:
  tcstore seed --count 20 | tcstore query --input - --where '{"data.common.book": {"eq": "RATES-1"}}'
  tcstore query --input trades.json --mode count --where '{"data.swapLegs.0.interestRate": {"gte": 4}}'
  tcstore query --input trades.json --mode list --limit 5 --offset 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Input, "input", "", `trades file ("-" for stdin) (required)`)
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().StringVar(&opts.Where, "where", "", "filter expression as JSON")
	cmd.Flags().StringSliceVar(&opts.IDs, "ids", nil, "restrict to these ids (comma separated)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results, 0 for all")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "matches to skip")
	cmd.Flags().StringVar(&opts.Mode, "mode", ModeLoad, "load|list|count")
	cmd.Flags().StringSliceVar(&opts.Fields, "fields", nil, "list summary paths (default from config)")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg := opts.config()
	log := opts.logger()

	if opts.Mode != ModeLoad && opts.Mode != ModeList && opts.Mode != ModeCount {
		return f.Fail(ExitCommandError, ErrCodeInput, fmt.Errorf("invalid mode %q: must be load, list or count", opts.Mode))
	}

	q := trade.Query{IDs: opts.IDs, Limit: opts.Limit, Offset: opts.Offset}
	if opts.Where != "" {
		where, err := parseObject("where", opts.Where)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeInput, err)
		}
		q.Where = where
	}

	records, err := readTrades(opts.Input, cmd.InOrStdin())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, err)
	}

	fields := cfg.List.Fields
	if len(opts.Fields) > 0 {
		fields = opts.Fields
	}
	svc := trade.NewService(store.New(store.WithLogger(log)),
		trade.WithLogger(log),
		trade.WithFilterWorkers(cfg.Filter.Workers),
		trade.WithListFields(fields),
	)
	if err := loadInto(svc, records); err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, err)
	}
	f.VerboseLog("Loaded %d trade(s) from %s", len(records), displayPath(opts.Input))

	switch opts.Mode {
	case ModeCount:
		n, err := svc.CountByFilter(q)
		if err != nil {
			return f.Fail(ExitCommandError, string(trade.CodeInternal), err)
		}
		return f.Success(value.Object{"count": value.NewInt(int64(n))})

	case ModeList:
		items, err := svc.ListByFilter(q)
		if err != nil {
			return f.Fail(ExitCommandError, string(trade.CodeInternal), err)
		}
		return f.Success(items)

	default:
		recs, err := svc.LoadByFilter(q)
		if err != nil {
			return f.Fail(ExitCommandError, string(trade.CodeInternal), err)
		}
		return f.Success(recs)
	}
}

func displayPath(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}
