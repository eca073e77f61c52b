package cli

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
)

// askOne is survey.AskOne; tests replace it.
var askOne = survey.AskOne

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// PromptForTemplates lets the user pick one or more of available.
func PromptForTemplates(available []string) ([]string, error) {
	if len(available) == 0 {
		return nil, fmt.Errorf("no templates available")
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Select templates to include:",
		Options: available,
		Help:    "Several templates are combined into one archive, each in its own folder.",
	}
	if err := askOne(prompt, &selected, survey.WithValidator(survey.Required)); err != nil {
		return nil, fmt.Errorf("failed to prompt for templates: %w", err)
	}
	return selected, nil
}

// promptOverwrite asks whether an existing output file may be replaced.
func promptOverwrite(path string) (bool, error) {
	var result bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("%s already exists. Overwrite?", path),
		Default: false,
	}
	if err := askOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}
