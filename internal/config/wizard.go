package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to dynbook! Let's connect to your dynamic-book backend.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. Backend URL.
	urlPrompt := promptui.Prompt{
		Label:   "Backend API URL",
		Default: defaults.APIURL,
		Validate: func(s string) error {
			probe := *defaults
			probe.APIURL = s
			return probe.Validate()
		},
	}
	apiURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api url: %w", err)
	}

	// 2. Theme.
	themePrompt := promptui.Select{
		Label: "Select theme",
		Items: []string{"light", "dark"},
	}
	_, theme, err := themePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("theme selection: %w", err)
	}

	// 3. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Directory for exported stories",
		Default: defaults.OutputDir,
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// 4. Web UI port.
	portPrompt := promptui.Prompt{
		Label:   "Port for `dynbook serve`",
		Default: strconv.Itoa(defaults.Server.Port),
		Validate: func(s string) error {
			p, err := strconv.Atoi(s)
			if err != nil || p < 1 || p > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	cfg := defaults
	cfg.APIURL = apiURL
	cfg.Theme = theme
	cfg.OutputDir = outputDir
	cfg.Server.Port = port

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
