package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List the books known to the backend",
	Long:  `Lists every uploaded book. The active book is marked with an asterisk.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		books, err := a.client.ListBooks(ctx)
		if err != nil {
			return fmt.Errorf("listing books: %w", err)
		}
		if len(books) == 0 {
			fmt.Println("No books uploaded yet. Run `dynbook upload <file.pdf>`.")
			return nil
		}

		active, _ := a.prefs.ActiveBookID(ctx)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tTITLE\tAUTHOR\tCHAPTERS")
		for _, b := range books {
			marker := ""
			if b.ID == active {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", marker, b.ID, b.DisplayTitle(), b.Author, len(b.Chapters))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(booksCmd)
}
