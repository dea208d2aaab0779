package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/deckcheck/internal/extract"
	"github.com/roach88/deckcheck/internal/ir"
)

// ExtractOptions holds flags for the extract command.
type ExtractOptions struct {
	*RootOptions
	Document string // "both" | "content-ir" | "plan"
}

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExtractOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "extract <response-file|->",
		Short: "Pull the Content IR and Render Plan out of an LLM response",
		Long: `Extract the Content IR and Render Plan from an LLM response.

Fenced JSON blocks are tried first, then "Content IR:" / "Render Plan:"
style markers. Both documents go through JSON repair. The documents are
printed as canonical JSON; blocks that could not be used are listed.

Exit codes:
  0 - Requested documents found
  1 - A requested document is missing
  2 - Command error (unreadable input)

Examples:
  deckcheck extract response.txt
  deckcheck extract response.txt --document plan > plan.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Document, "document", "both", "which document to print (both|content-ir|plan)")

	return cmd
}

func runExtract(opts *ExtractOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	switch opts.Document {
	case "both", "content-ir", "plan":
	default:
		return commandError(formatter, ErrCodeGeneric, fmt.Errorf("invalid --document %q: must be both, content-ir, or plan", opts.Document))
	}

	text, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return commandError(formatter, errorCode(err), err)
	}

	logger, err := opts.logger(cmd)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err)
	}

	res := extract.Extract(text, extract.WithLogger(logger))
	formatter.VerboseLog("content_ir_source=%q render_plan_source=%q skipped=%d",
		res.ContentIRSource, res.PlanSource, len(res.Skipped))

	if formatter.Format == "json" {
		if err := formatter.Success(res); err != nil {
			return err
		}
	} else if err := printExtraction(opts, cmd, res); err != nil {
		return err
	}

	missingIR := opts.Document != "plan" && res.ContentIR == nil
	missingPlan := opts.Document != "content-ir" && res.Plan == nil
	if missingIR || missingPlan {
		return NewExitError(ExitFailure, "response is missing a requested document")
	}
	return nil
}

func printExtraction(opts *ExtractOptions, cmd *cobra.Command, res *extract.Result) error {
	printer := opts.printer(cmd)

	for _, skip := range res.Skipped {
		printer.Warning("skipped %s block %d: %s", skip.Source, skip.Block, skip.Reason)
	}

	if opts.Document != "plan" {
		if res.ContentIR == nil {
			printer.Fail("No Content IR found")
		} else {
			data, err := ir.MarshalCanonical(res.ContentIR)
			if err != nil {
				return err
			}
			if opts.Document == "both" {
				printer.Header(fmt.Sprintf("Content IR (%s)", res.ContentIRSource))
			}
			printer.Print("%s", data)
		}
	}

	if opts.Document != "content-ir" {
		if res.Plan == nil {
			printer.Fail("No Render Plan found")
		} else {
			data, err := ir.MarshalCanonical(*res.Plan)
			if err != nil {
				return err
			}
			if opts.Document == "both" {
				printer.Header(fmt.Sprintf("Render Plan (%s)", res.PlanSource))
			}
			printer.Print("%s", data)
		}
	}
	return nil
}
