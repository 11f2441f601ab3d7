package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageza/recipebox/internal/types"
	"github.com/pageza/recipebox/internal/ui"
)

func newSettingsCommand(e *env) *cobra.Command {
	var displayName, theme, avatar string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display name, theme and avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.requireUser(); err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var update types.UpdatePreferencesRequest
			if cmd.Flags().Changed("display-name") {
				name := strings.TrimSpace(displayName)
				update.DisplayName = &name
			}
			if cmd.Flags().Changed("theme") {
				t := types.Theme(strings.ToLower(theme))
				if !t.Valid() {
					return fmt.Errorf("theme must be light, dark or system")
				}
				update.Theme = &t
			}
			if update.DisplayName != nil || update.Theme != nil {
				if _, err := e.app.Session.UpdatePreferences(ctx, update); err != nil {
					return err
				}
				fmt.Fprintln(out, ui.RenderSuccess("Settings saved"))
			}

			if avatar != "" {
				data, err := os.ReadFile(avatar)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", avatar, err)
				}
				url, err := e.app.Session.UploadAvatar(ctx, filepath.Base(avatar), detectContentType(avatar, data), data)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.RenderSuccess("Avatar updated: "+url))
			}

			e.printSettings(cmd)
			return nil
		},
	}
	cmd.Flags().StringVar(&displayName, "display-name", "", "name shown in the app")
	cmd.Flags().StringVar(&theme, "theme", "", "light, dark or system")
	cmd.Flags().StringVar(&avatar, "avatar", "", "image file to use as avatar")
	return cmd
}

func (e *env) printSettings(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	prefs := e.app.Session.Preferences()
	user := e.app.Session.User()

	fmt.Fprintln(out, ui.TitleStyle.Render("Settings"))
	if user != nil {
		fmt.Fprintf(out, "  Email:        %s\n", user.Email)
	}
	fmt.Fprintf(out, "  Display name: %s\n", valueOr(prefs.DisplayName, "(not set)"))
	theme := string(prefs.Theme)
	if prefs.Theme == types.ThemeSystem {
		theme += " (" + string(e.app.Session.Theme()) + ")"
	}
	fmt.Fprintf(out, "  Theme:        %s\n", theme)
	fmt.Fprintf(out, "  Avatar:       %s\n", valueOr(prefs.AvatarURL, "(none)"))
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func newUsageCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show extraction token usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.requireUser(); err != nil {
				return err
			}
			usage, err := e.app.API.GetUsage(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.TitleStyle.Render("Import usage"))
			fmt.Fprintf(out, "  Imports:           %d\n", usage.TotalCalls)
			fmt.Fprintf(out, "  Prompt tokens:     %d\n", usage.PromptTokens)
			fmt.Fprintf(out, "  Completion tokens: %d\n", usage.CompletionTokens)
			fmt.Fprintf(out, "  Total tokens:      %d\n", usage.TotalTokens)
			return nil
		},
	}
}

func newBetaCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "beta <email>",
		Short: "Request early access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.API.RequestBetaAccess(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Thanks! We'll be in touch."))
			return nil
		},
	}
}
