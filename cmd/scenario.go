package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dynbook/internal/progress"
	"github.com/ziadkadry99/dynbook/internal/scenario"
)

// previewLen is how much chapter text the interactive reader prints.
const previewLen = 1200

const (
	actionNext     = "Next chapter"
	actionPrevious = "Previous chapter"
	actionRead     = "Read full chapter"
	actionGenerate = "Generate story"
	actionExport   = "Export PDF"
	actionQuit     = "Quit"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [bookId]",
	Short: "Interactively read a book and generate what-if stories",
	Long: `Opens a book chapter by chapter. For each chapter you can describe a
what-if scenario and read the generated storyline next to the original, then
export it as PDF. Without a book id the active book is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		bookID, err := a.bookIDArg(ctx, args)
		if err != nil {
			return err
		}

		s := a.session(bookID)
		if err := s.Open(ctx); err != nil {
			return err
		}
		s.SetReporter(progress.NewReporter())

		for {
			st := s.State()
			printChapter(st, false)

			sel := promptui.Select{
				Label: fmt.Sprintf("%s · chapter %d of %d", st.Book.DisplayTitle(), st.Index+1, len(st.Book.Chapters)),
				Items: menuItems(st),
			}
			_, choice, err := sel.Run()
			if err != nil {
				if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
					return nil
				}
				return err
			}

			switch choice {
			case actionNext:
				err = s.Navigate(ctx, scenario.Next)
			case actionPrevious:
				err = s.Navigate(ctx, scenario.Previous)
			case actionRead:
				printChapter(st, true)
			case actionGenerate:
				err = promptAndGenerate(cmd, s)
			case actionExport:
				var path string
				path, err = s.Export(ctx, a.cfg.OutputDir)
				if err == nil {
					fmt.Printf("Saved %s\n", path)
				}
			case actionQuit:
				return nil
			}
			if err != nil && verbose {
				fmt.Printf("  (%v)\n", err)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	},
}

func menuItems(st scenario.State) []string {
	var items []string
	if st.CanGoNext {
		items = append(items, actionNext)
	}
	if st.CanGoPrevious {
		items = append(items, actionPrevious)
	}
	if st.HasChapter {
		items = append(items, actionRead, actionGenerate)
	}
	return append(items, actionExport, actionQuit)
}

func promptAndGenerate(cmd *cobra.Command, s *scenario.Session) error {
	prompt := promptui.Prompt{
		Label:   "What if",
		Default: s.State().Scenario,
	}
	text, err := prompt.Run()
	if err != nil {
		return err
	}

	fmt.Println("Generating...")
	story, err := s.Generate(cmd.Context(), text)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("=== Generated ===")
	fmt.Println()
	fmt.Println(story.GeneratedText)
	fmt.Println()
	return nil
}

func printChapter(st scenario.State, full bool) {
	if !st.HasChapter {
		fmt.Println("\nThis book has no chapters.")
		return
	}
	fmt.Printf("\n=== Chapter %d: %s ===\n\n", st.Chapter.Number, st.Chapter.Title)

	text := st.OriginalText
	if !full && len([]rune(text)) > previewLen {
		text = string([]rune(text)[:previewLen]) + "\n[...]"
	}
	fmt.Println(strings.TrimSpace(text))

	if st.GeneratedText != "" {
		fmt.Println("\n=== Generated ===")
		fmt.Println()
		fmt.Println(strings.TrimSpace(st.GeneratedText))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}
