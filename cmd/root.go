package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dynbook/internal/config"
)

var (
	cfgFile string
	envFile string
	apiURL  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dynbook",
	Short: "Rewrite books with AI-generated what-if scenarios",
	Long: `Dynbook is the client for the dynamic-book service. Upload a book as a
PDF, read it chapter by chapter, describe a "what if" scenario and get an
alternate storyline generated next to the original. Stories can be exported
as PDF. Run it from the terminal or start the web UI with ` + "`dynbook serve`" + `.`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with DYNBOOK_* overrides")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend API URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
