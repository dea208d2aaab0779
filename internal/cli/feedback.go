package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// FeedbackOptions holds flags for the feedback command.
type FeedbackOptions struct {
	*RootOptions
	GapFill bool
}

// FeedbackResult is the JSON payload of the feedback command.
type FeedbackResult struct {
	Ready    bool   `json:"ready"`
	Feedback string `json:"feedback"`
}

// NewFeedbackCommand creates the feedback command.
func NewFeedbackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeedbackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "feedback <response-file|->",
		Short: "Print the retry feedback for an LLM response",
		Long: `Print only the feedback text for an LLM response, ready to append to
the next prompt. Nothing is printed when the deck is ready.

Exit codes:
  0 - Deck ready (no feedback)
  1 - Feedback printed
  2 - Command error

Examples:
  deckcheck feedback response.txt >> retry_prompt.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.GapFill, "gap-fill", false, "substitute built-in examples for missing documents")

	return cmd
}

func runFeedback(opts *FeedbackOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := opts.pipeline(cmd, opts.GapFill)
	if err != nil {
		return commandError(formatter, ErrCodeCatalog, err)
	}

	text, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return commandError(formatter, errorCode(err), err)
	}

	out, err := p.Run(ctx, text)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(FeedbackResult{Ready: out.Ready(), Feedback: out.Feedback}); err != nil {
			return err
		}
	} else if out.Feedback != "" {
		fmt.Fprintln(formatter.Writer, out.Feedback)
	}

	if !out.Ready() {
		return notReady(out)
	}
	return nil
}
