package commands

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dphaener/golisp/internal/cli/config"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Interactively write a golisp.yml for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigWizard()
		},
	}
}

type configAnswers struct {
	Scoping   string `survey:"scoping"`
	Precision int    `survey:"precision"`
}

// runConfigWizard prompts for the settings that have no safe one-size-fits
// all default (scoping mode changes ufunc semantics; precision changes
// arithmetic results) and writes golisp.yml.
func runConfigWizard() error {
	if config.InProject() {
		overwrite := false
		if err := survey.AskOne(&survey.Confirm{
			Message: "this directory already has a golisp.yml or *.lisp files, write golisp.yml anyway?",
			Default: false,
		}, &overwrite); err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	questions := []*survey.Question{
		{
			Name: "scoping",
			Prompt: &survey.Select{
				Message: "Variable scoping mode:",
				Options: []string{"lexical", "dynamic"},
				Default: "lexical",
			},
		},
		{
			Name: "precision",
			Prompt: &survey.Input{
				Message: "Decimal precision (significant digits):",
				Default: "11",
			},
			Validate: survey.Required,
		},
	}

	var answers configAnswers
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	doc := map[string]interface{}{
		"scoping": map[string]string{"mode": answers.Scoping},
		"numeric": map[string]int{"precision": answers.Precision},
		"watch": map[string]interface{}{
			"patterns":    []string{"*.lisp", "*.lsp"},
			"debounce_ms": 200,
		},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile("golisp.yml", out, 0644); err != nil {
		return err
	}

	fmt.Println("wrote golisp.yml")
	return nil
}
