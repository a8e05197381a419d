package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dynbook/internal/preferences"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|toggle]",
	Short:     "Show or change the web UI theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dark", "light", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if len(args) == 0 {
			theme, err := a.prefs.Theme(ctx)
			if err != nil {
				return err
			}
			fmt.Println(theme)
			return nil
		}

		var theme preferences.Theme
		if args[0] == "toggle" {
			theme, err = a.prefs.ToggleTheme(ctx)
		} else {
			theme, err = preferences.ParseTheme(args[0])
			if err == nil {
				err = a.prefs.SetTheme(ctx, theme)
			}
		}
		if err != nil {
			return err
		}
		fmt.Printf("Theme set to %s\n", theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
