package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// PromptPassword asks for a password with echo disabled. With confirm set
// the password is asked twice and must match.
func PromptPassword(title string, confirm bool) (string, error) {
	var password, again string
	fields := []huh.Field{
		huh.NewInput().
			Title(title).
			EchoMode(huh.EchoModePassword).
			Value(&password),
	}
	if confirm {
		fields = append(fields, huh.NewInput().
			Title("Confirm password").
			EchoMode(huh.EchoModePassword).
			Value(&again).
			Validate(func(s string) error {
				if s != password {
					return fmt.Errorf("passwords do not match")
				}
				return nil
			}))
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return "", err
	}
	return password, nil
}

// PromptText asks for a single line of input
func PromptText(title string) (string, error) {
	var value string
	err := huh.NewInput().Title(title).Value(&value).Run()
	return strings.TrimSpace(value), err
}

// Confirm asks a yes/no question, defaulting to no
func Confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
