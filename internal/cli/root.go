package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/deckcheck/internal/catalog"
	"github.com/roach88/deckcheck/internal/config"
	"github.com/roach88/deckcheck/internal/gapfill"
	"github.com/roach88/deckcheck/internal/logging"
	"github.com/roach88/deckcheck/internal/normalize"
	"github.com/roach88/deckcheck/internal/pipeline"
	"github.com/roach88/deckcheck/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string // explicit config file; empty searches the defaults
	Catalog    string // catalog file overriding catalog.path
	Color      string // "auto" | "always" | "never"

	// cfg is loaded on first use so subcommands also work when built
	// without the root command.
	cfg *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// version is reported by --version; SetVersion overrides it at startup.
var version = "dev"

// SetVersion sets the version string reported by the root command.
func SetVersion(v string) {
	version = v
}

// NewRootCommand creates the root command for the deckcheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "deckcheck",
		Short:   "deckcheck - pitch deck JSON checker",
		Long:    "Repairs, extracts, normalizes and validates the Content IR and Render Plan an LLM writes for a pitch deck.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if _, err := ParseColorMode(opts.Color); err != nil {
				return WrapExitError(ExitCommandError, "invalid --color", err)
			}
			if _, err := opts.Config(); err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./.deckcheck.yaml or $HOME/.config/deckcheck/.deckcheck.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", "", "template catalog file (.json, .cue, .yaml)")
	cmd.PersistentFlags().StringVar(&opts.Color, "color", "auto", "color output (auto|always|never)")

	// Add subcommands
	cmd.AddCommand(NewExtractCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewFeedbackCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Config returns the loaded configuration, reading it on first call.
func (o *RootOptions) Config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// printer builds a text printer honoring --color and output.colors.
func (o *RootOptions) printer(cmd *cobra.Command) *Printer {
	mode, _ := ParseColorMode(o.Color)
	configColors := true
	if cfg, err := o.Config(); err == nil {
		configColors = cfg.Output.Colors
	}
	return NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), ResolveColors(mode, configColors))
}

// logger writes structured logs to stderr. --verbose forces debug level.
func (o *RootOptions) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Logging.Format, cmd.ErrOrStderr())
}

// loadCatalog resolves the template catalog: --catalog, then
// catalog.path, then the embedded default. Catalog warnings go to the
// command's logger.
func (o *RootOptions) loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	path := o.Catalog
	if path == "" {
		cfg, err := o.Config()
		if err != nil {
			return nil, err
		}
		path = cfg.Catalog.Path
	}
	if path == "" {
		return catalog.Default(), nil
	}
	logger, err := o.logger(cmd)
	if err != nil {
		return nil, err
	}
	return catalog.Load(path, catalog.WithLogger(logger))
}

// pipeline builds a pipeline from config. gapFill turns gap-fill on even
// when pipeline.gap_fill is off.
func (o *RootOptions) pipeline(cmd *cobra.Command, gapFill bool) (*pipeline.Pipeline, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger, err := o.logger(cmd)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}
	cat, err := o.loadCatalog(cmd)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithNormalizeOptions(normalize.WithFinanceReclassification(cfg.Normalize.ReclassifyFinance)),
	}
	if gapFill || cfg.Pipeline.GapFill {
		opts = append(opts, pipeline.WithGapFill(gapfill.Default()))
	}

	p, err := pipeline.New(cat, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build pipeline", err)
	}
	return p, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore opens the attempt log at path, or at store.path when path is
// empty.
func (o *RootOptions) openStore(path string) (*store.Store, error) {
	if path == "" {
		cfg, err := o.Config()
		if err != nil {
			return nil, err
		}
		path = cfg.Store.Path
	}
	return store.Open(path)
}
