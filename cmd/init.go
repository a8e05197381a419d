package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ziadkadry99/dynbook/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize dynbook configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that points dynbook at your dynamic-book backend and writes a .dynbook.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
