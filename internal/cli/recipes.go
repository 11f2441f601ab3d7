package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/recipebox/internal/nav"
	"github.com/pageza/recipebox/internal/ui"
)

func newListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your recipes, most recently changed first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.requireUser(); err != nil {
				return err
			}
			if err := e.app.List.Refresh(cmd.Context()); err != nil {
				return errors.New("Failed to load recipes")
			}
			selected, _ := e.app.Nav.Current().RecipeID()
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderRecipeList(e.app.List.Recipes(), selected, e.now()))
			return nil
		},
	}
}

func newShowCommand(e *env) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a recipe (defaults to the last one opened)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.requireUser(); err != nil {
				return err
			}
			id, err := e.recipeArg(args)
			if err != nil {
				return err
			}
			detail, err := e.app.OpenRecipe(cmd.Context(), id)
			if err != nil {
				return err
			}
			recipe := detail.Recipe()
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderMarkdown(recipe.RecipeMarkdown, e.app.Session.Theme(), ui.TerminalWidth(), e.styled && !raw))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown without styling")
	return cmd
}

func newEditCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a recipe's markdown in your editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.requireUser(); err != nil {
				return err
			}
			id, err := e.recipeArg(args)
			if err != nil {
				return err
			}
			detail, err := e.app.OpenRecipe(cmd.Context(), id)
			if err != nil {
				return err
			}

			detail.BeginEdit()
			edited, err := e.editMarkdown(cmd, detail.Draft())
			if err != nil {
				detail.Cancel()
				return err
			}
			if edited == detail.Recipe().RecipeMarkdown {
				detail.Cancel()
				fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMuted("No changes"))
				return nil
			}
			if err := detail.SetDraft(edited); err != nil {
				return err
			}
			if err := detail.Save(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Saved "+detail.Recipe().Title()))
			return nil
		},
	}
}

func newDeleteCommand(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a recipe",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := e.requireUser(); err != nil {
				return err
			}
			ok, err := confirmAction("Delete this recipe? This cannot be undone.", yes)
			if err != nil || !ok {
				return err
			}
			if err := e.app.DeleteRecipe(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccess("Recipe deleted"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// recipeArg falls back to the recipe shown last
func (e *env) recipeArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if id, ok := e.app.Nav.Current().RecipeID(); ok {
		return id, nil
	}
	return "", fmt.Errorf("no recipe id given and no recipe open (current screen: %s)", orNone(e.app.Nav.Current()))
}

func orNone(r nav.Route) string {
	if r == "" {
		return "none"
	}
	return string(r)
}
