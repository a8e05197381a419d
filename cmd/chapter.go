package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var chapterCmd = &cobra.Command{
	Use:   "chapter <bookId> <number>",
	Short: "Print the text of a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[1])
		if err != nil || number < 0 {
			return fmt.Errorf("invalid chapter number %q", args[1])
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		ch, err := a.client.GetChapter(ctx, args[0], number)
		if err != nil {
			return fmt.Errorf("loading chapter %d: %w", number, err)
		}

		fmt.Printf("Chapter %d: %s\n\n%s\n", ch.Number, ch.Title, ch.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chapterCmd)
}
