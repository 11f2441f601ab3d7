package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errCancelled = errors.New("cancelled")

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errCancelled
		}
		return fmt.Errorf("form error: %w", err)
	}
	return nil
}

func requireNonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// readLine reads one line of piped input
func readLine(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type credentialFlags struct {
	email         string
	passwordStdin bool
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "account email")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "read the password from stdin")
}

// collect fills in whatever the flags left out, prompting when attached to a terminal
func (f *credentialFlags) collect(cmd *cobra.Command, confirm bool) (string, string, error) {
	email := strings.TrimSpace(f.email)
	var password string
	if f.passwordStdin {
		line, err := readLine(cmd)
		if err != nil {
			return "", "", err
		}
		password = line
	}
	if email != "" && password != "" {
		return email, password, nil
	}
	if !interactive() {
		return "", "", errors.New("--email and --password-stdin are required when not running in a terminal")
	}

	var fields []huh.Field
	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(requireNonEmpty("email")))
	}
	if password == "" {
		fields = append(fields, passwordInput("Password", &password))
	}
	var again string
	if confirm && !f.passwordStdin {
		fields = append(fields, passwordInput("Confirm password", &again))
	}
	if err := runForm(huh.NewForm(huh.NewGroup(fields...))); err != nil {
		return "", "", err
	}
	if confirm && !f.passwordStdin && again != password {
		return "", "", errors.New("passwords do not match")
	}
	return strings.TrimSpace(email), password, nil
}

func passwordInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(value).
		Validate(requireNonEmpty(strings.ToLower(title)))
}

// confirmAction asks a yes/no question; assumeYes skips it
func confirmAction(title string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !interactive() {
		return false, errors.New("refusing to continue without a terminal; pass --yes")
	}
	ok := false
	err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok),
	)))
	return ok, err
}
