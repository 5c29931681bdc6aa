package main

import (
	"context"
	"degreetrack/internal/course"
	"degreetrack/internal/tracker"
	"degreetrack/internal/transcript"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var majorCmd = &cobra.Command{
	Use:   "major [key]",
	Short: "Show or change the major",
	Long: `Without arguments, lists the available majors and marks the current one.
With a key, switches major: major slots are cleared and every input is
reconciled again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMajor,
}

var addCmd = &cobra.Command{
	Use:   "add \"CODE (GRADE)[, CODE (GRADE)...]\"",
	Short: "Add courses by hand",
	Long: `Adds one course or a comma separated list. A missing grade means
in progress. Entries with an unknown grade are skipped; an unknown course
rejects the whole input.

Example:
  degree add "MATH 3A (A-), CMPSC 16 (B+)" --persist`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove [code]",
	Short: "Forget a course in every input channel",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemove,
}

var importCmd = &cobra.Command{
	Use:   "import [file|url]",
	Short: "Import a transcript export",
	Long: `Imports a .json, .csv or .xlsx transcript export, or a JSON row feed
over HTTP. Without an argument the configured transcript url is used.
Transcript rows replace manual entries for the same course.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

var examCmd = &cobra.Command{
	Use:   "exam [label]",
	Short: "Check or uncheck an equivalency exam",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExam,
}

var examsCmd = &cobra.Command{
	Use:   "exams",
	Short: "List equivalency exams",
	Args:  cobra.NoArgs,
	RunE:  runExams,
}

var moveCmd = &cobra.Command{
	Use:   "move [slot] [area]",
	Short: "Move a course to another core GE area",
	Long: `Reassigns the course in a core GE sub-slot to the first open sub-slot of
another core area it is tagged for. The move is kept on later changes.

Example:
  degree move "Area D: Social Science-D-1" "Area E: Culture and Thought"`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last change",
	Args:  cobra.NoArgs,
	RunE:  runUndo,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the session (equivalency exams are kept)",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runMajor(cmd *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		if len(args) == 1 {
			return printOutcome(tr.SetMajor(args[0]))
		}
		current := tr.State().Inputs.Major
		for _, m := range tr.Engine().Registry().Majors() {
			marker := " "
			if m.Key == current {
				marker = "*"
			}
			fmt.Printf("%s %-8s %s\n", marker, m.Key, m.Name)
		}
		return nil
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	persist, _ := cmd.Flags().GetBool("persist")
	units, _ := cmd.Flags().GetFloat64("units")
	input := strings.Join(args, " ")
	logger.Debug("add", zap.String("input", input), zap.Bool("persist", persist))

	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		return printOutcome(tr.AddCourse(input, persist, course.AmountOf(units)))
	})
}

func runRemove(cmd *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		return printOutcome(tr.RemoveCourse(strings.Join(args, " ")))
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	target := cfg.Transcript.URL
	if len(args) == 1 {
		target = args[0]
	}
	if target == "" {
		return fmt.Errorf("no transcript given and transcript.url is not configured")
	}
	src := transcript.Open(target, cfg.GetTranscriptTimeout())
	logger.Info("importing transcript", zap.String("source", target))

	return withSession(func(ctx context.Context, tr *tracker.Tracker) error {
		return printOutcome(tr.Import(ctx, src))
	})
}

func runExam(cmd *cobra.Command, args []string) error {
	uncheck, _ := cmd.Flags().GetBool("uncheck")
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		return printOutcome(tr.ToggleExam(strings.Join(args, " "), !uncheck))
	})
}

func runExams(cmd *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		s := tr.State()
		for _, sys := range tr.Engine().Equivalency().Systems {
			fmt.Println(sys.Label)
			for _, ex := range sys.Exams {
				box := "[ ]"
				if s.ExamChecked(ex.Name) {
					box = "[x]"
				}
				fmt.Printf("  %s %s\n", box, ex.Name)
			}
		}
		return nil
	})
}

func runMove(cmd *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		return printOutcome(tr.MoveGE(args[0], args[1]))
	})
}

func runUndo(cmd *cobra.Command, args []string) error {
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		return printOutcome(tr.Undo())
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	inputsOnly, _ := cmd.Flags().GetBool("inputs")
	return withSession(func(_ context.Context, tr *tracker.Tracker) error {
		if inputsOnly {
			return printOutcome(tr.ResetInputs())
		}
		return printOutcome(tr.Reset())
	})
}
