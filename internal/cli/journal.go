package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tcstore/internal/audit"
	"github.com/roach88/tcstore/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Run string // run id; empty lists runs
}

// JournalResult is the JSON payload of the journal command.
type JournalResult struct {
	Runs    []journal.Run `json:"runs,omitempty"`
	RunID   string        `json:"run_id,omitempty"`
	Entries []audit.Entry `json:"entries,omitempty"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal <db>",
		Short: "Read the SQLite audit journal",
		Long: `Read operation log entries mirrored to a journal database.

Without --run, lists the runs in the journal with their entry counts.
With --run, prints that run's entries in sequence order.

Examples:
  tcstore journal ./audit.db
  tcstore journal ./audit.db --run 0192f1c4-...
  tcstore journal ./audit.db --run 0192f1c4-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Run, "run", "", "print the entries of this run")

	return cmd
}

func runJournal(opts *JournalOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := journal.OpenReader(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, err)
	}
	defer j.Close()

	if opts.Run == "" {
		runs, err := j.Runs(ctx)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeJournal, err)
		}
		if opts.Format == "json" {
			return f.Success(JournalResult{Runs: runs})
		}
		outputRunsText(f.Writer, runs)
		return nil
	}

	entries, err := j.ReadRun(ctx, opts.Run)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeJournal, err)
	}
	if len(entries) == 0 {
		return f.Fail(ExitFailure, ErrCodeJournal, fmt.Errorf("no entries for run %s", opts.Run))
	}
	if opts.Format == "json" {
		return f.Success(JournalResult{RunID: opts.Run, Entries: entries})
	}
	outputEntriesText(f.Writer, entries)
	return nil
}

func outputRunsText(w io.Writer, runs []journal.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %d entries\n", r.ID, r.StartedAt, r.Entries)
	}
}

func outputEntriesText(w io.Writer, entries []audit.Entry) {
	for _, e := range entries {
		line := fmt.Sprintf("%4d  %s  %-12s  %s  [%s]",
			e.Seq,
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			e.Operation,
			e.Context,
			strings.Join(e.IDs, ","),
		)
		if len(e.Missing) > 0 {
			line += fmt.Sprintf(" missing=[%s]", strings.Join(e.Missing, ","))
		}
		fmt.Fprintln(w, line)
	}
}
