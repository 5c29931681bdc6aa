package main

import (
	"context"
	"degreetrack/internal/course"
	"degreetrack/internal/engine"
	"degreetrack/internal/tracker"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show requirement progress and the GPA ledger",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var infoCmd = &cobra.Command{
	Use:   "info [code]",
	Short: "Show a catalog entry",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	sectionStyle  = lipgloss.NewStyle().Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9aa5b1"))
	failingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e57373"))
	badgeStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#64b5f6"))
	summaryBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func runStatus(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		s := tr.State()
		rep, err := tr.Status()
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		fmt.Println(renderStatus(s, rep))
		return nil
	})
}

// renderStatus draws the ledger summary followed by every section.
func renderStatus(s *engine.State, rep engine.Report) string {
	imported := make(map[string]bool, len(rep.ImportedSlots))
	for _, id := range rep.ImportedSlots {
		imported[id] = true
	}

	var b strings.Builder
	summary := fmt.Sprintf("%s\nGPA %s   Units %s   GPA units %s   Courses %d",
		titleStyle.Render("Major: "+rep.Major),
		rep.GPA, rep.Totals.Units, rep.Totals.GPAUnits, rep.Totals.Courses)
	b.WriteString(summaryBorder.Render(summary))
	b.WriteString("\n")

	for _, sec := range rep.Sections {
		head := sec.Label
		if sec.UnitBased {
			head = fmt.Sprintf("%s (%s/%s units)", sec.Label, sec.Current, sec.Required)
		}
		if sec.Complete {
			head = doneStyle.Render("✓ ") + sectionStyle.Render(head)
		} else {
			head = pendingStyle.Render("· ") + sectionStyle.Render(head)
		}
		b.WriteString("\n" + head + "\n")

		for _, child := range sec.Children {
			sl := s.Slots[child.SlotID]
			box := pendingStyle.Render("[ ]")
			if child.Checked {
				box = doneStyle.Render("[x]")
			}
			line := fmt.Sprintf("  %s %s", box, child.SlotID)
			if sl.Source != nil {
				label := sl.Source.Label
				if !sl.Satisfied {
					label = failingStyle.Render(label)
				}
				line += "  " + label
			}
			if imported[child.SlotID] {
				line += " " + badgeStyle.Render("(transcript)")
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func runInfo(cmd *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		raw := strings.Join(args, " ")
		entry, ok := tr.Engine().Catalog().Find(raw)
		if !ok {
			return fmt.Errorf("%w: %s", engine.ErrCourseNotFound, raw)
		}
		md := courseMarkdown(entry, tr.State())

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			fmt.Print(md)
			return nil
		}
		out, err := renderer.Render(md)
		if err != nil {
			fmt.Print(md)
			return nil
		}
		fmt.Print(out)
		return nil
	})
}

// courseMarkdown describes a catalog entry and where the session uses it.
func courseMarkdown(e *course.Entry, s *engine.State) string {
	var b strings.Builder
	title := e.FullName
	if title == "" {
		title = e.ShortName()
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "**Units:** %s\n\n", e.Units)
	if areas := e.Areas(); len(areas) > 0 {
		fmt.Fprintf(&b, "**GE areas:** %s\n\n", strings.Join(areas, ", "))
	}
	if len(e.UnivReqs) > 0 {
		fmt.Fprintf(&b, "**University requirements:** %s\n\n", strings.Join(e.UnivReqs, ", "))
	}
	if e.Prerequisites != "" {
		fmt.Fprintf(&b, "**Prerequisites:** %s\n\n", e.Prerequisites)
	}
	if e.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", e.Description)
	}
	if e.AdvisorComments != "" {
		fmt.Fprintf(&b, "> %s\n\n", e.AdvisorComments)
	}
	if slots := s.SlotsOf(e.Code); len(slots) > 0 {
		fmt.Fprintf(&b, "## Counting toward\n\n")
		for _, id := range slots {
			fmt.Fprintf(&b, "- %s\n", id)
		}
	}
	return b.String()
}
