package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/deckcheck/internal/pipeline"
)

// BatchOptions holds flags for the batch command.
type BatchOptions struct {
	*RootOptions
	Pattern     string
	Concurrency int // 0 uses pipeline.concurrency
	GapFill     bool
}

// BatchResult is the JSON payload of the batch command.
type BatchResult struct {
	Responses []DeckResult `json:"responses"`
	Ready     int          `json:"ready"`
	NotReady  int          `json:"not_ready"`
	Total     int          `json:"total"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "batch <responses-dir>",
		Short: "Validate every response file in a directory",
		Long: `Validate a directory of saved LLM responses concurrently.

Results are reported in file-name order regardless of completion order.

Exit codes:
  0 - Every deck ready
  1 - One or more decks not ready
  2 - Command error

Examples:
  deckcheck batch ./responses
  deckcheck batch ./responses --pattern "*.md" --concurrency 8`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Pattern, "pattern", defaultInputPattern, "file name glob")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "responses checked at once (default: pipeline.concurrency)")
	cmd.Flags().BoolVar(&opts.GapFill, "gap-fill", false, "substitute built-in examples for missing documents")

	return cmd
}

func runBatch(opts *BatchOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := findResponseFiles(dir, opts.Pattern)
	if err != nil {
		return commandError(formatter, errorCode(err), err)
	}

	inputs := make([]pipeline.Input, 0, len(files))
	for _, file := range files {
		text, err := readInput(file, nil)
		if err != nil {
			return commandError(formatter, errorCode(err), err)
		}
		inputs = append(inputs, pipeline.Input{Name: inputName(file), Text: text})
	}

	p, err := opts.pipeline(cmd, opts.GapFill)
	if err != nil {
		return commandError(formatter, ErrCodeCatalog, err)
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		if cfg, err := opts.Config(); err == nil {
			concurrency = cfg.Pipeline.Concurrency
		}
	}
	formatter.VerboseLog("Checking %d response(s) with concurrency %d", len(inputs), concurrency)

	outcomes, err := p.Batch(ctx, inputs, concurrency)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err)
	}

	result := BatchResult{Responses: make([]DeckResult, 0, len(outcomes)), Total: len(outcomes)}
	for _, out := range outcomes {
		result.Responses = append(result.Responses, newDeckResult(out))
		if out.Ready() {
			result.Ready++
		} else {
			result.NotReady++
		}
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.NotReady > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeBatchFailed, Message: fmt.Sprintf("%d response(s) not ready", result.NotReady)}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
	} else if err := printBatch(opts, cmd, formatter, outcomes, result); err != nil {
		return err
	}

	if result.NotReady > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d response(s) not ready", result.NotReady))
	}
	return nil
}

func printBatch(opts *BatchOptions, cmd *cobra.Command, formatter *OutputFormatter, outcomes []*pipeline.Outcome, result BatchResult) error {
	printer := opts.printer(cmd)

	if result.Total == 0 {
		printer.Print("No responses found.")
		return nil
	}

	tbl := NewTable(formatter.Writer, []string{"Response", "Status", "Slides", "Invalid", "Problems"})
	for _, out := range outcomes {
		slides, invalid := 0, 0
		if out.Report != nil {
			slides, invalid = out.Report.TotalSlides, out.Report.InvalidSlides
		}
		tbl.AddRow(out.Name, printer.ValidBadge(out.Ready()),
			fmt.Sprint(slides), fmt.Sprint(invalid), fmt.Sprint(len(out.Problems)))
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	printer.Print("")
	printer.Print("Batch Summary: %d ready, %d not ready, %d total", result.Ready, result.NotReady, result.Total)
	if result.NotReady == 0 {
		printer.Success("All decks ready")
	}
	return nil
}
