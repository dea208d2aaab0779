package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/deckcheck/internal/catalog"
)

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the template catalog",
		Long: `Inspect the template catalog slides are validated against.

The catalog is the embedded default unless --catalog or catalog.path
names a .json, .cue or .yaml file.`,
	}

	cmd.AddCommand(newCatalogListCommand(rootOpts))
	cmd.AddCommand(newCatalogShowCommand(rootOpts))

	return cmd
}

// TemplateSummary is one row of catalog list.
type TemplateSummary struct {
	ID       string `json:"id"`
	Required int    `json:"required_slots"`
	Optional int    `json:"optional_slots"`
	Purpose  string `json:"purpose,omitempty"`
}

func newCatalogListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List catalog templates",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			cat, err := rootOpts.loadCatalog(cmd)
			if err != nil {
				return commandError(formatter, ErrCodeCatalog, err)
			}

			summaries := make([]TemplateSummary, 0, cat.Len())
			for _, t := range cat.Templates() {
				summaries = append(summaries, TemplateSummary{
					ID:       t.ID,
					Required: len(t.RequiredSlots),
					Optional: len(t.OptionalSlots),
					Purpose:  t.Purpose,
				})
			}

			if formatter.Format == "json" {
				return formatter.Success(summaries)
			}

			tbl := NewTable(formatter.Writer, []string{"Template", "Required", "Optional", "Purpose"})
			for _, s := range summaries {
				tbl.AddRow(s.ID, strconv.Itoa(s.Required), strconv.Itoa(s.Optional), s.Purpose)
			}
			return tbl.Render()
		},
	}
}

func newCatalogShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <template-id>",
		Short:         "Show the slots of one template",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			cat, err := rootOpts.loadCatalog(cmd)
			if err != nil {
				return commandError(formatter, ErrCodeCatalog, err)
			}

			t, ok := cat.Get(args[0])
			if !ok {
				return commandError(formatter, ErrCodeUnknownID,
					fmt.Errorf("unknown template %q (known: %s)", args[0], strings.Join(cat.IDs(), ", ")))
			}

			if formatter.Format == "json" {
				return formatter.Success(t)
			}

			printer := rootOpts.printer(cmd)
			printer.Header(t.ID)
			if t.Purpose != "" {
				printer.Print("%s", t.Purpose)
			}
			if t.DataShape != "" {
				printer.Print("data shape: %s", t.DataShape)
			}
			if sections := t.ContentIRSections(); len(sections) > 0 {
				printer.Print("content IR sections: %s", strings.Join(sections, ", "))
			}

			tbl := NewTable(formatter.Writer, []string{"Slot", "Type", "Required", "Label", "Constraints"})
			addSlotRows(tbl, t.RequiredSlots, "yes")
			addSlotRows(tbl, t.OptionalSlots, "no")
			return tbl.Render()
		},
	}
}

func addSlotRows(tbl *Table, slots catalog.Slots, required string) {
	for _, ns := range slots {
		tbl.AddRow(ns.Name, string(ns.Slot.Type), required, ns.Slot.DisplayLabel(ns.Name), slotConstraints(ns.Slot))
	}
}

// slotConstraints summarizes the limits of a slot in one cell.
func slotConstraints(s catalog.Slot) string {
	var parts []string
	if s.MinItems > 0 {
		parts = append(parts, "min_items="+strconv.Itoa(s.MinItems))
	}
	if s.MaxItems > 0 {
		parts = append(parts, "max_items="+strconv.Itoa(s.MaxItems))
	}
	if s.MaxLength > 0 {
		parts = append(parts, "max_length="+strconv.Itoa(s.MaxLength))
	}
	if s.MinColumns > 0 {
		parts = append(parts, "min_columns="+strconv.Itoa(s.MinColumns))
	}
	if lo, hi, ok := s.IdealRange(); ok {
		parts = append(parts, fmt.Sprintf("ideal_columns=%d-%d", lo, hi))
	}
	if s.Severity != "" {
		parts = append(parts, "severity="+string(s.Severity))
	}
	return strings.Join(parts, " ")
}
