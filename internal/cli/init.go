package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample docforge configuration file",
		Long:  "Scaffold a commented docforge configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			cfg := &InitConfig{OutputPath: out, Force: force}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "docforge.yaml", "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

const sampleConfig = `# docforge configuration
#
# Values here are merged beneath command-line flags: a flag always wins.

# Directory containing the application module to document.
source: .

# Where to write the generated document. Defaults to <module_name>.openapi.json
# next to the working directory when omitted.
# output: docs/openapi.json

# Change the log level from INFO to DEBUG.
debug: false

# Overwrite an existing output file.
force: false

# Check the generated document against the OpenAPI schema before writing.
validate: false
`

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "docforge.yaml"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
		return newUsageError(fmt.Sprintf("init: %q exists and is not a regular file", absPath))
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("init: create directory: %w", err)
	}
	if err := os.WriteFile(absPath, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("init: write config: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}
