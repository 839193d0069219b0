package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/spacegen/internal/config"
	"github.com/roach88/spacegen/internal/pipeline"
)

// ValidateResult holds the validate command's success payload.
type ValidateResult struct {
	NodeSetDigest string         `json:"nodeset_digest"`
	Stats         pipeline.Stats `json:"stats"`
}

func (r ValidateResult) String() string {
	return fmt.Sprintf("valid: %d nodes, %d references, %d namespaces from %d documents\nnodeset digest: %s",
		r.Stats.Nodes, r.Stats.References, r.Stats.Namespaces, r.Stats.Documents, r.NodeSetDigest)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate schema documents without generating output",
		Long: `Validate reads, resolves, and builds the address-space graph without
emitting any source. Faster feedback than generate while editing schema
documents; the reported digest matches what generate would produce.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, manifestPath string, cmd *cobra.Command) error {
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

	formatter.VerboseLog("Validating %d document(s) from %s", len(m.Documents), manifestPath)

	rep, err := pipeline.Validate(m)
	if err != nil {
		return generationError(formatter, err)
	}
	return formatter.Success(ValidateResult{
		NodeSetDigest: rep.NodeSetDigest,
		Stats:         rep.Stats,
	})
}
