package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dynbook/internal/progress"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export [bookId]",
	Short: "Export a book's generated story as PDF",
	Long:  `Downloads the exported PDF of a book into the output directory. Without a book id the active book is exported.`,
	Args:  cobra.MaximumNArgs(1),
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
		if err := s.Resolve(ctx); err != nil {
			return err
		}
		s.SetReporter(progress.NewReporter())

		dir := exportDir
		if dir == "" {
			dir = a.cfg.OutputDir
		}
		path, err := s.Export(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "", "directory to save the PDF in (default: output_dir from config)")
	rootCmd.AddCommand(exportCmd)
}
