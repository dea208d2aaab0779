package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/deckcheck/internal/ir"
	"github.com/roach88/deckcheck/internal/pipeline"
	"github.com/roach88/deckcheck/internal/store"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ContentIR  string // Content IR document file (instead of a response)
	Plan       string // Render Plan document file (instead of a response)
	GapFill    bool   // fill missing documents with the built-in examples
	Session    string // record the attempt under this session
	NewSession bool   // record the attempt under a fresh session
	Database   string // attempt log path (default: store.path)
	NoFeedback bool   // omit the feedback text from text output
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [response-file|-]",
		Short: "Validate an LLM response or a pair of documents",
		Long: `Validate the Content IR and Render Plan in an LLM response.

The response is repaired, both documents are extracted and the plan is
normalized before every slide is checked against the template catalog.
Pass --content-ir and --plan to check documents saved as separate files.

With --session or --new-session the attempt is appended to the attempt log.

Exit codes:
  0 - Deck ready for rendering
  1 - Validation failed (feedback printed)
  2 - Command error (unreadable input, bad catalog, store unavailable)

Examples:
  deckcheck validate response.txt
  cat response.txt | deckcheck validate -
  deckcheck validate --content-ir ir.json --plan plan.json
  deckcheck validate response.txt --new-session --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ContentIR, "content-ir", "", "Content IR JSON file")
	cmd.Flags().StringVar(&opts.Plan, "plan", "", "Render Plan JSON file")
	cmd.Flags().BoolVar(&opts.GapFill, "gap-fill", false, "substitute built-in examples for missing documents")
	cmd.Flags().StringVar(&opts.Session, "session", "", "record the attempt under this session ID")
	cmd.Flags().BoolVar(&opts.NewSession, "new-session", false, "record the attempt under a new session")
	cmd.Flags().StringVar(&opts.Database, "db", "", "attempt log database (default: store.path)")
	cmd.Flags().BoolVar(&opts.NoFeedback, "no-feedback", false, "omit feedback text from text output")
	cmd.MarkFlagsMutuallyExclusive("session", "new-session")

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	documents := opts.ContentIR != "" || opts.Plan != ""
	switch {
	case documents && len(args) > 0:
		return commandError(formatter, ErrCodeGeneric, fmt.Errorf("pass either a response or --content-ir/--plan, not both"))
	case !documents && len(args) == 0:
		return commandError(formatter, ErrCodeGeneric, fmt.Errorf("a response file (or - for stdin) is required"))
	}

	p, err := opts.pipeline(cmd, opts.GapFill)
	if err != nil {
		return commandError(formatter, ErrCodeCatalog, err)
	}

	var out *pipeline.Outcome
	if documents {
		out, err = validateDocumentFiles(ctx, p, opts, cmd)
	} else {
		formatter.VerboseLog("Reading response from %s", args[0])
		var text string
		text, err = readInput(args[0], cmd.InOrStdin())
		if err == nil {
			out, err = p.Run(ctx, text)
		}
		if out != nil {
			out.Name = inputName(args[0])
		}
	}
	if err != nil {
		return commandError(formatter, errorCode(err), err)
	}

	result := newDeckResult(out)

	sessionID, err := recordAttempt(ctx, opts, out, &result)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err)
	}

	if formatter.Format == "json" {
		status := "ok"
		var cliErr *CLIError
		if !result.Ready {
			status = "error"
			cliErr = &CLIError{Code: ErrCodeNotReady, Message: result.Summary}
		}
		if err := formatter.JSON(CLIResponse{Status: status, Data: result, Error: cliErr, SessionID: sessionID}); err != nil {
			return err
		}
	} else {
		printer := opts.printer(cmd)
		if err := printOutcome(printer, formatter, out, !opts.NoFeedback); err != nil {
			return err
		}
		if sessionID != "" {
			printer.Print("%s", printer.Dim(fmt.Sprintf("Recorded attempt %d in session %s", result.AttemptSeq, sessionID)))
		}
	}

	if !out.Ready() {
		return notReady(out)
	}
	return nil
}

// validateDocumentFiles checks --content-ir and --plan files. Either may
// be omitted; the pipeline then reports the missing document.
func validateDocumentFiles(ctx context.Context, p *pipeline.Pipeline, opts *ValidateOptions, cmd *cobra.Command) (*pipeline.Outcome, error) {
	var (
		doc  ir.ContentIR
		plan *ir.RenderPlan
	)
	if opts.ContentIR != "" {
		d, err := readContentIR(opts.ContentIR, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		doc = d
	}
	if opts.Plan != "" {
		pl, err := readRenderPlan(opts.Plan, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		plan = &pl
	}
	return p.ValidateDocuments(ctx, doc, plan)
}

// recordAttempt appends the outcome to the attempt log when a session was
// requested. Returns the session ID used, or "" when nothing was recorded.
func recordAttempt(ctx context.Context, opts *ValidateOptions, out *pipeline.Outcome, result *DeckResult) (string, error) {
	sessionID := opts.Session
	if opts.NewSession {
		id, err := store.NewSessionID()
		if err != nil {
			return "", err
		}
		sessionID = id
	}
	if sessionID == "" {
		return "", nil
	}

	st, err := opts.openStore(opts.Database)
	if err != nil {
		return "", err
	}
	defer st.Close()

	a, err := store.NewAttempt(sessionID, out)
	if err != nil {
		return "", err
	}
	stored, _, err := st.RecordAttempt(ctx, a)
	if err != nil {
		return "", err
	}
	result.AttemptSeq = stored.Seq
	return sessionID, nil
}
