package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tcstore/internal/seed"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Count int
	Seed  uint64
	Base  string // YYYY-MM-DD; overrides seed.base_date
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate example IR swap trades",
		Long: `Generate example IR swap trades as a JSON array of {"id", "data"}.

Output is deterministic for a given --seed and --base date, and can be fed
to "tcstore query --input".

Examples:
  tcstore seed --count 10 > trades.json
  tcstore seed --count 5 --seed 42 --base 2026-03-02`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 0, "number of trades, 1-100 (default from config)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "generator seed (default from config)")
	cmd.Flags().StringVar(&opts.Base, "base", "", "base trade date YYYY-MM-DD (default from config, else today)")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	cfg := opts.config().Seed

	if cmd.Flags().Changed("count") {
		cfg.Count = opts.Count
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if opts.Base != "" {
		if _, err := time.Parse("2006-01-02", opts.Base); err != nil {
			return f.Fail(ExitCommandError, ErrCodeInput, err)
		}
		cfg.BaseDate = opts.Base
	}

	trades, err := seed.NewGenerator(cfg.Seed, cfg.Base(time.Now)).Trades(cfg.Count)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, err)
	}
	opts.logger().Debug("generated trades", "count", len(trades), "seed", cfg.Seed)
	return f.Success(trades)
}
