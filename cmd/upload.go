package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dynbook/internal/progress"
	"github.com/ziadkadry99/dynbook/internal/upload"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a book manuscript",
	Long:  `Uploads a PDF manuscript to the backend, which splits it into chapters. The uploaded book becomes the active book.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		path := ""
		if len(args) > 0 {
			path = args[0]
		}

		flow := upload.NewFlow(a.client, a.notices)
		flow.SetReporter(progress.NewReporter())

		res, err := flow.Upload(ctx, path)
		if err != nil {
			return err
		}

		book := res.Book
		fmt.Printf("\n%s\n", book.DisplayTitle())
		if book.Author != "" {
			fmt.Printf("  by %s\n", book.Author)
		}
		fmt.Printf("  ID:       %s\n", book.ID)
		if res.Pages > 0 {
			fmt.Printf("  Pages:    %d\n", res.Pages)
		}
		fmt.Printf("  Chapters: %d\n", len(book.Chapters))
		for _, ch := range book.Chapters {
			fmt.Printf("    %3d. %s\n", ch.Number, ch.Title)
		}
		fmt.Printf("\nNext: dynbook scenario %s\n", book.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
