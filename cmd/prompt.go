package cmd

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
)

// prompter asks the user questions. Tests replace it with a scripted one.
type prompter interface {
	Select(message string, options []string, defaultOption string) (string, error)
	MultiSelect(message string, options []string) ([]string, error)
	Input(message string, validate func(string) error) (string, error)
}

// For mocking in tests
var newPrompter = func() prompter { return surveyPrompter{} }

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string, defaultOption string) (string, error) {
	prompt := &survey.Select{Message: message, Options: options}
	if defaultOption != "" {
		prompt.Default = defaultOption
	}
	var answer string
	err := survey.AskOne(prompt, &answer)
	return answer, err
}

func (surveyPrompter) MultiSelect(message string, options []string) ([]string, error) {
	var answer []string
	err := survey.AskOne(&survey.MultiSelect{Message: message, Options: options}, &answer)
	return answer, err
}

func (surveyPrompter) Input(message string, validate func(string) error) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, ok := ans.(string)
			if !ok {
				return errors.New("expected text")
			}
			return validate(s)
		}))
	}
	err := survey.AskOne(&survey.Input{Message: message}, &answer, opts...)
	return answer, err
}
