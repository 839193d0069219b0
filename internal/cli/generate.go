package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/spacegen/internal/config"
	"github.com/roach88/spacegen/internal/ledger"
	"github.com/roach88/spacegen/internal/pipeline"
)

// GenerateResult holds the generate command's success payload.
type GenerateResult struct {
	Output        string         `json:"output"`
	NodeSetDigest string         `json:"nodeset_digest"`
	SourceDigest  string         `json:"source_digest"`
	Stats         pipeline.Stats `json:"stats"`
}

func (r GenerateResult) String() string {
	return fmt.Sprintf("wrote %s (%d nodes, %d references, %d namespaces from %d documents)\nnodeset digest: %s\nsource digest:  %s",
		r.Output, r.Stats.Nodes, r.Stats.References, r.Stats.Namespaces, r.Stats.Documents,
		r.NodeSetDigest, r.SourceDigest)
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate <manifest>",
		Short: "Generate the address-space source file from schema documents",
		Long: `Generate reads the manifest's schema documents in order, builds and
validates the address-space graph, and writes one formatted Go source
file. Any schema error aborts the run whole; no partial file is written.

Use -o - to write the generated source to stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(rootOpts, args[0], output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path override (\"-\" for stdout)")
	return cmd
}

func runGenerate(opts *RootOptions, manifestPath, outputOverride string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
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
			fmt.Errorf("manifest %s: output path required for generate (or pass -o)", manifestPath))
	}

	formatter.VerboseLog("Reading %d document(s) from %s", len(m.Documents), manifestPath)

	res, err := pipeline.Run(m)
	if err != nil {
		recordRun(formatter, m.Ledger, manifestPath, nil, ledger.OutcomeFailed, err.Error())
		return generationError(formatter, err)
	}

	if out == "-" {
		if _, err := cmd.OutOrStdout().Write(res.Source); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, err)
		}
		recordRun(formatter, m.Ledger, manifestPath, res, ledger.OutcomeGenerated, "stdout")
		return nil
	}

	if err := writeFileAtomic(out, res.Source); err != nil {
		return commandError(formatter, ErrCodeWriteFailed, err)
	}
	recordRun(formatter, m.Ledger, manifestPath, res, ledger.OutcomeGenerated, "")

	return formatter.Success(GenerateResult{
		Output:        out,
		NodeSetDigest: res.NodeSetDigest,
		SourceDigest:  res.SourceDigest,
		Stats:         res.Stats,
	})
}

// writeFileAtomic writes via a temp file plus rename so a crashed run
// never leaves a truncated generated file behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// commandError reports err as a command error (exit 2).
func commandError(f *OutputFormatter, code string, err error) error {
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, err.Error(), err)
}

// generationError reports a pipeline failure (exit 1) under its mapped
// error code.
func generationError(f *OutputFormatter, err error) error {
	if outErr := f.Error(classifyError(err), err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, err.Error(), err)
}

// recordRun appends to the run ledger when the manifest configures one.
// The ledger is advisory; a recording failure warns but never fails the
// command.
func recordRun(f *OutputFormatter, ledgerPath, manifest string, res *pipeline.Result, outcome ledger.Outcome, detail string) {
	if ledgerPath == "" {
		return
	}
	l, err := ledger.Open(ledgerPath)
	if err != nil {
		fmt.Fprintf(f.GetErrWriter(), "warning: run ledger: %v\n", err)
		return
	}
	defer l.Close()

	run := ledger.Run{Manifest: manifest, Outcome: outcome, Detail: detail}
	if res != nil {
		run.NodeSetDigest = res.NodeSetDigest
		run.SourceDigest = res.SourceDigest
	}
	if _, err := l.RecordRun(context.Background(), run); err != nil {
		fmt.Fprintf(f.GetErrWriter(), "warning: run ledger: %v\n", err)
	}
}
