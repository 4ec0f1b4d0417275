package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tcstore/internal/merge"
	"github.com/roach88/tcstore/internal/value"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Base  string
	Patch string
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Preview a partial update",
		Long: `Apply a partial-update patch to a base document and print the result.

Objects merge recursively. A null in the patch removes an object-valued key
and sets any other key to null. Arrays and scalars replace whole.

Example:
  tcstore merge --base '{"common": {"book": "A", "notional": 1}}' --patch '{"common": {"notional": 2}}'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Base, "base", "", "base document as a JSON object (required)")
	cmd.Flags().StringVar(&opts.Patch, "patch", "", "patch as a JSON object (required)")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("patch")

	return cmd
}

func runMerge(opts *MergeOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	base, err := parseObject("base", opts.Base)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, err)
	}
	patch, err := parseObject("patch", opts.Patch)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInput, err)
	}

	merged := merge.Objects(base, patch)
	if opts.Format == "json" {
		return f.Success(merged)
	}
	return f.Success(canonicalText(value.Value(merged)))
}
