package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/deckcheck/internal/ir"
	"github.com/roach88/deckcheck/internal/normalize"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	NoReclassify bool
}

// NormalizeResult is the JSON payload of the normalize command.
type NormalizeResult struct {
	Plan    ir.RenderPlan `json:"render_plan"`
	Changed []int         `json:"changed_slides"` // 1-based slides whose template changed
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <plan-file|->",
		Short: "Rewrite a Render Plan into canonical slide shapes",
		Long: `Normalize a Render Plan without validating it.

Buyer tables carrying company financials become sea_conglomerates slides,
buyer rows get canonical fields and valuation rows get canonical keys.
The normalized plan is printed as canonical JSON.

Examples:
  deckcheck normalize plan.json
  deckcheck normalize plan.json --no-reclassify`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoReclassify, "no-reclassify", false, "keep buyer tables with financial columns as buyer_profiles")

	return cmd
}

func runNormalize(opts *NormalizeOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.Config()
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err)
	}
	logger, err := opts.logger(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err)
	}

	plan, err := readRenderPlan(path, cmd.InOrStdin())
	if err != nil {
		return commandError(formatter, errorCode(err), err)
	}

	reclassify := cfg.Normalize.ReclassifyFinance && !opts.NoReclassify
	normalized := normalize.Normalize(plan,
		normalize.WithFinanceReclassification(reclassify),
		normalize.WithLogger(logger),
	)

	changed := []int{}
	for i, s := range normalized.Slides {
		if s.Template != plan.Slides[i].Template {
			changed = append(changed, i+1)
		}
	}
	formatter.VerboseLog("%d slide(s) changed template", len(changed))

	if formatter.Format == "json" {
		return formatter.Success(NormalizeResult{Plan: normalized, Changed: changed})
	}

	data, err := ir.MarshalCanonical(normalized)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, fmt.Errorf("encoding plan: %w", err))
	}
	fmt.Fprintln(formatter.Writer, string(data))
	return nil
}
