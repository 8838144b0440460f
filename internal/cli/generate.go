package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docforge/docforge/internal/docgen"
	"github.com/docforge/docforge/internal/registry"
	"github.com/docforge/docforge/internal/validate"
	"github.com/docforge/docforge/internal/writer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	ModuleName string
	Source     string
	Output     string
	ConfigPath string
	Debug      bool
	DryRun     bool
	Force      bool
	Validate   bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Source: "."}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <module_name>",
		Short: "Generate an OpenAPI document for the specified application module",
		Long: "Generate an OpenAPI document for the specified application module. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  docforge generate membership --output docs/membership.json
  docforge --config docforge.yaml generate membership --debug`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd, args)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("source", "", "Directory containing the application module (defaults to the working directory)")
	flags.StringP("output", "o", "", "Overwrite the output location (defaults to <module_name>.openapi.json)")
	flags.Bool("dry-run", false, "Report the planned output path without writing the document")
	flags.Bool("force", false, "Overwrite an existing output file when set")
	flags.Bool("validate", false, "Check the generated document against the OpenAPI schema before writing")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command, args []string) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
		cfg.Debug = true
	}

	cfg.ModuleName = strings.TrimSpace(args[0])
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("source") {
		value, err := flags.GetString("source")
		if err != nil {
			return err
		}
		cfg.Source = strings.TrimSpace(value)
	}
	if flags.Changed("output") {
		value, err := flags.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = strings.TrimSpace(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("validate") {
		value, err := flags.GetBool("validate")
		if err != nil {
			return err
		}
		cfg.Validate = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.ModuleName = strings.TrimSpace(c.ModuleName)
	c.Source = strings.TrimSpace(c.Source)
	if c.Source == "" {
		c.Source = "."
	}
	c.Output = strings.TrimSpace(c.Output)
	if c.Output == "" {
		c.Output = c.ModuleName + ".openapi.json"
	}
}

func (c *GenerateConfig) validate() error {
	if c.ModuleName == "" {
		return newUsageError("generate: module_name is required")
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	start := time.Now()

	// 1) Load the application's declarations into typed registries.
	app, err := registry.Load(filepath.Join(cfg.Source, cfg.ModuleName))
	if err != nil {
		return newUsageError(err.Error())
	}

	// 2) Run the traversal. Every reconciliation error has already been
	// logged with its context; the sentinel only carries the exit contract.
	doc, err := docgen.New(app, logger).Run()
	if err != nil {
		logger.Error("ERRORS FOUND WHEN PARSING DOCUMENTATION")
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	// 3) Optionally check conformance before anything touches disk.
	if cfg.Validate {
		if err := validate.Document(ctx, data); err != nil {
			return fmt.Errorf("generated document failed validation: %w", err)
		}
		logger.Info("document passed OpenAPI validation")
	}

	// 4) Write the document.
	res, err := writer.Write(cfg.Output, data, writer.Options{Force: cfg.Force, DryRun: cfg.DryRun})
	if err != nil {
		return wrapOutputError(err, cfg.Output)
	}
	if cfg.DryRun {
		fmt.Fprintf(os.Stdout, "Planned write to %s (%d bytes)\n", res.Path, res.Size)
		return nil
	}

	logger.Info("documentation generated", "path", res.Path, "elapsed", time.Since(start).String())
	return nil
}

func wrapOutputError(err error, out string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") ||
		strings.Contains(lower, "mkdir") || strings.Contains(lower, "already exists") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --output or use --force when appropriate.", out, msg))
	}
	return err
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "source":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Source = str
		case "output":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Output = str
		case "debug":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Debug = val
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "validate":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Validate = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
