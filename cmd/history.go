package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dynbook/internal/history"
)

var (
	historyBook  string
	historyLimit int
	historyShow  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously generated stories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if historyShow != "" {
			e, err := a.history.GetByID(ctx, historyShow)
			if err != nil {
				return err
			}
			fmt.Printf("%s · Chapter %d: %s\n", e.BookTitle, e.ChapterNumber, e.ChapterTitle)
			fmt.Printf("Scenario: %s\n\n%s\n", e.ScenarioText, e.GeneratedText)
			return nil
		}

		entries, err := a.history.Query(ctx, history.QueryFilter{BookID: historyBook, Limit: historyLimit})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No stories generated yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tBOOK\tCHAPTER\tSCENARIO")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.BookTitle, e.ChapterNumber, truncate(e.ScenarioText, 60))
		}
		return w.Flush()
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	historyCmd.Flags().StringVar(&historyBook, "book", "", "only show stories for this book id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of entries")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "print the full story with this id")
	rootCmd.AddCommand(historyCmd)
}
