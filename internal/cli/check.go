package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/spacegen/internal/config"
	"github.com/roach88/spacegen/internal/gate"
	"github.com/roach88/spacegen/internal/ledger"
	"github.com/roach88/spacegen/internal/pipeline"
)

// CheckResult holds the check command's success payload.
type CheckResult struct {
	Output        string         `json:"output"`
	NodeSetDigest string         `json:"nodeset_digest"`
	SourceDigest  string         `json:"source_digest"`
	Stats         pipeline.Stats `json:"stats"`
}

func (r CheckResult) String() string {
	return fmt.Sprintf("%s is up to date\nnodeset digest: %s\nsource digest:  %s",
		r.Output, r.NodeSetDigest, r.SourceDigest)
}

// NewCheckCommand creates the check command (the determinism gate).
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check <manifest>",
		Short: "Verify the committed generated file matches a fresh generation",
		Long: `Check regenerates from the manifest's schema documents and compares the
result byte for byte against the committed generated file. A difference
means the schema changed without regeneration, or the committed file was
edited by hand. Exit codes: 0 match, 1 mismatch or generation failure,
2 command error.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "committed file path override")
	return cmd
}

func runCheck(opts *RootOptions, manifestPath, outputOverride string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, err := config.Load(manifestPath)
	if err != nil {
		return commandError(formatter, ErrCodeManifest, err)
	}
	out := m.Output
	if outputOverride != "" {
		out = outputOverride
	}
	if out == "" {
		return commandError(formatter, ErrCodeManifest,
			fmt.Errorf("manifest %s: output path required for check (or pass -o)", manifestPath))
	}
	if _, statErr := os.Stat(out); statErr != nil {
		// The gate can only judge a commit that exists.
		return commandError(formatter, ErrCodeNotFound,
			fmt.Errorf("committed output %s: %w", out, statErr))
	}

	res, err := gate.Check(m, out)
	if err == nil {
		recordRun(formatter, m.Ledger, manifestPath, res, ledger.OutcomeMatch, "")
		return formatter.Success(CheckResult{
			Output:        out,
			NodeSetDigest: res.NodeSetDigest,
			SourceDigest:  res.SourceDigest,
			Stats:         res.Stats,
		})
	}

	var mmErr *gate.MismatchError
	if errors.As(err, &mmErr) {
		recordRun(formatter, m.Ledger, manifestPath, res, ledger.OutcomeMismatch, mmErr.Diff)
		if outErr := formatter.Error(ErrCodeMismatch, mmErr.Error(), mmErr.Diff); outErr != nil {
			return outErr
		}
		if formatter.Format == "text" {
			fmt.Fprint(formatter.Writer, mmErr.Diff)
		}
		return WrapExitError(ExitFailure, mmErr.Error(), mmErr)
	}

	recordRun(formatter, m.Ledger, manifestPath, nil, ledger.OutcomeFailed, err.Error())
	return generationError(formatter, err)
}
