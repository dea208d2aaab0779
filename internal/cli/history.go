package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "Show recorded validation attempts",
		Long: `Show the attempt log written by validate --session / --new-session.

Without arguments every session is summarized. With a session ID its
attempts are listed in order.

Examples:
  deckcheck history
  deckcheck history 0191b2c4-5d6e-7f80-9a1b-2c3d4e5f6a7b --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "attempt log database (default: store.path)")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := opts.openStore(opts.Database)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err)
	}
	defer st.Close()

	if len(args) == 0 {
		sessions, err := st.Sessions(ctx)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err)
		}
		if formatter.Format == "json" {
			return formatter.Success(sessions)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(formatter.Writer, "No sessions recorded.")
			return nil
		}

		printer := opts.printer(cmd)
		tbl := NewTable(formatter.Writer, []string{"Session", "Attempts", "Latest", "Status", "Invalid"})
		for _, s := range sessions {
			tbl.AddRow(s.SessionID, strconv.Itoa(s.Attempts), strconv.FormatInt(s.LatestSeq, 10),
				printer.ValidBadge(s.LatestReady), strconv.Itoa(s.LatestInvalidSlides))
		}
		return tbl.Render()
	}

	sessionID := args[0]
	if _, err := st.LatestAttempt(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return commandError(formatter, ErrCodeUnknownID, fmt.Errorf("no attempts recorded for session %q", sessionID))
		}
		return commandError(formatter, ErrCodeStore, err)
	}

	attempts, err := st.Attempts(ctx, sessionID)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: attempts, SessionID: sessionID})
	}

	printer := opts.printer(cmd)
	tbl := NewTable(formatter.Writer, []string{"Seq", "Status", "Slides", "Valid", "Invalid", "Warnings", "Problems"})
	for _, a := range attempts {
		tbl.AddRow(strconv.FormatInt(a.Seq, 10), printer.ValidBadge(a.Ready),
			strconv.Itoa(a.TotalSlides), strconv.Itoa(a.ValidSlides), strconv.Itoa(a.InvalidSlides),
			strconv.Itoa(a.SlidesWithWarnings), strconv.Itoa(len(a.Problems)))
	}
	return tbl.Render()
}
