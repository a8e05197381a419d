package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var showOriginal bool

var generateCmd = &cobra.Command{
	Use:   "generate <bookId> <chapter> <scenario...>",
	Short: "Generate an alternate storyline for a chapter",
	Long: `Sends a what-if scenario for one chapter to the backend and prints the
generated storyline. The result is saved to the local history.

Example:
  dynbook generate 42 3 "What if the antagonist secretly helped the hero?"`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid chapter number %q", args[1])
		}
		text := strings.Join(args[2:], " ")

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		s := a.session(args[0])
		if err := s.Resolve(ctx); err != nil {
			return err
		}
		index, ok := s.IndexOf(number)
		if !ok {
			return fmt.Errorf("book %s has no chapter %d", args[0], number)
		}
		if err := s.LoadChapter(ctx, index); err != nil {
			return err
		}

		if _, err := s.Generate(ctx, text); err != nil {
			return err
		}

		st := s.State()
		if showOriginal {
			fmt.Printf("=== Original: Chapter %d: %s ===\n\n%s\n\n", st.Chapter.Number, st.Chapter.Title, st.OriginalText)
			fmt.Println("=== Generated ===")
			fmt.Println()
		}
		fmt.Println(st.GeneratedText)
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&showOriginal, "show-original", false, "print the original chapter before the generated text")
	rootCmd.AddCommand(generateCmd)
}
