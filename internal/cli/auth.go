package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pageza/recipebox/internal/ui"
)

func newSignUpCommand(e *env) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password, err := creds.collect(cmd, true)
			if err != nil {
				return err
			}
			if err := e.app.SignUp(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Account created, signed in as "+email))
			return nil
		},
	}
	creds.register(cmd)
	return cmd
}

func newLoginCommand(e *env) *cobra.Command {
	var creds credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password, err := creds.collect(cmd, false)
			if err != nil {
				return err
			}
			if err := e.app.SignIn(cmd.Context(), email, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Signed in as "+email))
			return nil
		},
	}
	creds.register(cmd)
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget local data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Signed out"))
			return nil
		},
	}
}

func newRecoverCommand(e *env) *cobra.Command {
	var token, redirectTo string
	cmd := &cobra.Command{
		Use:   "recover [email]",
		Short: "Send a password reset link, or open one with --token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token != "" {
				if err := e.app.OpenRecoveryLink(cmd.Context(), token); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Recovery link accepted. Choose a new password with `recipebox change-password`.")
				return nil
			}
			if len(args) == 0 {
				return errors.New("an email address or --token is required")
			}
			if err := e.app.RequestPasswordReset(cmd.Context(), strings.TrimSpace(args[0]), redirectTo); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("If that account exists, a reset link is on its way"))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "recovery token from the reset email")
	cmd.Flags().StringVar(&redirectTo, "redirect-to", "", "URL the reset link should open")
	return cmd
}

func newChangePasswordCommand(e *env) *cobra.Command {
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Set a new password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.requireUser(); err != nil {
				return err
			}

			var password string
			switch {
			case passwordStdin:
				line, err := readLine(cmd)
				if err != nil {
					return err
				}
				password = line
			case interactive():
				var again string
				err := runForm(huh.NewForm(huh.NewGroup(
					passwordInput("New password", &password),
					passwordInput("Confirm password", &again),
				)))
				if err != nil {
					return err
				}
				if again != password {
					return errors.New("passwords do not match")
				}
			default:
				return errors.New("--password-stdin is required when not running in a terminal")
			}

			if err := e.app.ChangePassword(cmd.Context(), password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Password updated"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the new password from stdin")
	return cmd
}
