package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/tcstore/internal/harness"
	"github.com/roach88/tcstore/internal/journal"
	"github.com/roach88/tcstore/internal/trade"
	"github.com/roach88/tcstore/internal/value"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal   string // mirror log entries to this SQLite file
	GoldenOut string // write {name}.golden snapshots into this directory
	Filter    string // scenario filter (glob pattern)
	Metrics   bool   // print service metrics after the run
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string               `json:"name"`
	Pass   bool                 `json:"pass"`
	Errors []string             `json:"errors,omitempty"`
	Trace  []harness.TraceEvent `json:"trace,omitempty"`
	RunID  string               `json:"run_id,omitempty"` // journal run, when journaling
}

// RunResult holds the overall run result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml | scenarios-dir>",
		Short: "Run trade store scenarios",
		Long: `Run scripted scenarios, each against a fresh in-memory store.

A scenario lists service calls (save_new, save_partial, load_by_filter, ...)
with optional expectations. Log timestamps come from a deterministic clock,
so snapshots written with --golden-out are stable across runs.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unreadable scenario, etc.)

Examples:
  tcstore run ./scenarios/crud.yaml
  tcstore run ./scenarios --filter "filter_*"
  tcstore run ./scenarios --journal ./audit.db
  tcstore run ./scenarios --golden-out ./testdata/golden --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "mirror operation log entries to this SQLite file")
	cmd.Flags().StringVar(&opts.GoldenOut, "golden-out", "", "directory to write canonical snapshots into")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print service metrics after the run")

	return cmd
}

func runScenarios(opts *RunOptions, target string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	log := opts.logger()

	files, err := findScenarioFiles(target, opts.Filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, err)
	}

	harnessOpts := []harness.Option{
		harness.WithLogger(log),
		harness.WithFilterWorkers(opts.config().Filter.Workers),
	}

	result := RunResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}

	journalPath := opts.Journal
	if journalPath == "" {
		journalPath = opts.config().Journal.Path
	}

	reg := prometheus.NewRegistry()
	if opts.Metrics {
		harnessOpts = append(harnessOpts, harness.WithMetrics(trade.NewMetrics(reg)))
	}

	for _, file := range files {
		sr := runScenarioFile(opts, file, journalPath, harnessOpts, f)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		outputRunText(f.Writer, result, opts.Verbose)
	}

	if opts.Metrics {
		if err := writeMetrics(f.GetErrWriter(), reg); err != nil {
			return WrapExitError(ExitFailure, "failed to gather metrics", err)
		}
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", result.Failed, result.Total))
	}
	return nil
}

// runScenarioFile loads and runs one scenario. Load and execution errors
// become failed results so one bad file does not hide the others.
//
// Every scenario starts its own store, and so its own seq numbering; with
// journaling on it also gets its own journal run.
func runScenarioFile(opts *RunOptions, file, journalPath string, harnessOpts []harness.Option, f *OutputFormatter) ScenarioResult {
	log := opts.logger()

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	var runID string
	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			return ScenarioResult{
				Name:   scenario.Name,
				Errors: []string{fmt.Sprintf("failed to open journal: %v", err)},
			}
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()
		runID = j.RunID()
		harnessOpts = append(slices.Clip(harnessOpts), harness.WithJournal(j))
		log.Info("journal run started", "path", journalPath, "scenario", scenario.Name, "run_id", runID)
	}

	f.VerboseLog("Running %s (%d steps)", scenario.Name, len(scenario.Steps))
	res, err := harness.Run(scenario, harnessOpts...)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
			RunID:  runID,
		}
	}

	sr := ScenarioResult{Name: scenario.Name, Pass: res.Pass, Trace: res.Trace, RunID: runID}
	if len(res.Errors) > 0 {
		sr.Errors = res.Errors
	}

	if opts.GoldenOut != "" {
		if err := writeGolden(opts.GoldenOut, scenario.Name, res); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to write golden file: %v", err))
		}
	}
	return sr
}

// writeGolden writes the canonical snapshot in the same form the harness
// golden tests compare against.
func writeGolden(dir, name string, res *harness.Result) error {
	snapshot, err := value.MarshalCanonical(res.Snapshot(name))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name+".golden"), snapshot, 0o644)
}

// findScenarioFiles returns target itself when it is a file, otherwise all
// YAML files below it whose base name matches filter.
func findScenarioFiles(target, filter string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("scenario path not found: %s", target)
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	var files []string
	err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	return files, err
}

func outputRunText(w io.Writer, result RunResult, verbose bool) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, sr := range result.Scenarios {
		if sr.Pass {
			fmt.Fprintf(w, "✓ %s\n", sr.Name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", sr.Name)
			for _, msg := range sr.Errors {
				fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(msg, "\n", "\n  "))
			}
		}
		if sr.RunID != "" {
			fmt.Fprintf(w, "  journal run: %s\n", sr.RunID)
		}
		if verbose {
			for _, ev := range sr.Trace {
				line := fmt.Sprintf("  [%d] %s", ev.Step, ev.Op)
				if ev.ID != "" {
					line += " " + ev.ID
				}
				line += " -> " + ev.Outcome
				if ev.Result != nil {
					line += " " + canonicalText(ev.Result)
				}
				fmt.Fprintln(w, line)
			}
		}
	}

	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}

// writeMetrics prints every gathered sample as "name{labels} value".
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "%s %g\n", name, v)
		}
	}
	return nil
}
