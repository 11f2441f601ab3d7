package cli

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pageza/recipebox/internal/client"
	"github.com/pageza/recipebox/internal/importflow"
	"github.com/pageza/recipebox/internal/ui"
)

type importFlags struct {
	files    []string
	text     string
	textFile string
	yes      bool
}

func newImportCommand(e *env) *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a recipe from photos or pasted text",
		Long: `Import a recipe from one or more photos (PNG, JPG, GIF, up to 10MB each)
or from text. The extracted markdown is shown for review; it can be edited
before it is saved. Text from an interrupted import is offered again next time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runImport(cmd, f)
		},
	}
	cmd.Flags().StringSliceVarP(&f.files, "file", "f", nil, "image file to import (repeatable)")
	cmd.Flags().StringVarP(&f.text, "text", "t", "", "recipe text to import")
	cmd.Flags().StringVar(&f.textFile, "text-file", "", "read recipe text from a file, - for stdin")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "save without reviewing")
	return cmd
}

func (e *env) runImport(cmd *cobra.Command, f importFlags) error {
	if _, err := e.requireUser(); err != nil {
		return err
	}
	flow := e.app.Import
	out := cmd.OutOrStdout()

	if err := e.chooseInput(cmd, f); err != nil {
		return err
	}

	fmt.Fprintln(out, ui.RenderMuted("Extracting recipe..."))
	if err := flow.Submit(cmd.Context()); err != nil {
		e.app.SuspendImport()
		if msg := flow.Error(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	if err := e.app.Local.SetImportDraft(""); err != nil {
		return err
	}

	for {
		fmt.Fprint(out, ui.RenderMarkdown(flow.Markdown(), e.app.Session.Theme(), ui.TerminalWidth(), e.styled))

		action := "save"
		if !f.yes {
			if !interactive() {
				flow.Reset()
				fmt.Fprintln(out, ui.RenderMuted("Not saved. Pass --yes to save without reviewing."))
				return nil
			}
			err := runForm(huh.NewForm(huh.NewGroup(
				huh.NewSelect[string]().
					Title("What next?").
					Options(
						huh.NewOption("Save recipe", "save"),
						huh.NewOption("Edit markdown", "edit"),
						huh.NewOption("Discard", "discard"),
					).
					Value(&action),
			)))
			if err != nil {
				flow.Reset()
				return err
			}
		}

		switch action {
		case "save":
			recipe, err := e.app.SaveImport(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.RenderError(flow.Error()))
				if f.yes {
					return err
				}
				continue
			}
			fmt.Fprintln(out, ui.RenderSuccess(fmt.Sprintf("Saved %s (%s)", recipe.Title(), recipe.ID)))
			return nil
		case "edit":
			if err := e.editImport(cmd); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.RenderError(err.Error()))
			}
		default:
			flow.Reset()
			fmt.Fprintln(out, ui.RenderMuted("Discarded"))
			return nil
		}
	}
}

// editImport round-trips the preview through the editor; any failure leaves
// the preview untouched.
func (e *env) editImport(cmd *cobra.Command) error {
	flow := e.app.Import
	if err := flow.BeginEdit(); err != nil {
		return err
	}
	edited, err := e.editMarkdown(cmd, flow.View().Draft)
	if err != nil {
		_ = flow.CancelEdit()
		return err
	}
	if strings.TrimSpace(edited) == "" {
		_ = flow.CancelEdit()
		return errors.New("empty recipe, edit discarded")
	}
	if err := flow.SetDraft(edited); err != nil {
		return err
	}
	return flow.CommitEdit()
}

func (e *env) chooseInput(cmd *cobra.Command, f importFlags) error {
	flow := e.app.Import
	text := f.text
	if f.textFile != "" {
		data, err := readTextFile(cmd, f.textFile)
		if err != nil {
			return err
		}
		text = data
	}

	switch {
	case len(f.files) > 0 && text != "":
		return errors.New("use either --file or --text, not both")
	case len(f.files) > 0:
		images, err := loadImages(f.files)
		if err != nil {
			return err
		}
		if err := flow.ChooseMethod(importflow.MethodFile); err != nil {
			return err
		}
		return flow.AddFiles(images)
	case text != "":
		if err := flow.ChooseMethod(importflow.MethodText); err != nil {
			return err
		}
		return flow.SetText(text)
	}

	draft, _ := e.app.Local.ImportDraft()
	if !interactive() {
		if draft != "" {
			if err := flow.ChooseMethod(importflow.MethodText); err != nil {
				return err
			}
			return flow.SetText(draft)
		}
		return importflow.ErrNoMethod
	}
	return e.promptInput(draft)
}

func (e *env) promptInput(draft string) error {
	flow := e.app.Import
	method := string(importflow.MethodText)
	if err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Import from").
			Options(
				huh.NewOption("Pasted text", string(importflow.MethodText)),
				huh.NewOption("Photos", string(importflow.MethodFile)),
			).
			Value(&method),
	))); err != nil {
		return err
	}
	if err := flow.ChooseMethod(importflow.Method(method)); err != nil {
		return err
	}

	if importflow.Method(method) == importflow.MethodText {
		text := draft
		if err := runForm(huh.NewForm(huh.NewGroup(
			huh.NewText().
				Title("Recipe text").
				CharLimit(20000).
				Value(&text),
		))); err != nil {
			return err
		}
		return flow.SetText(text)
	}

	var paths string
	if err := runForm(huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Image files").
			Description("Comma-separated paths").
			Value(&paths).
			Validate(requireNonEmpty("at least one path")),
	))); err != nil {
		return err
	}
	images, err := loadImages(splitPaths(paths))
	if err != nil {
		return err
	}
	return flow.AddFiles(images)
}

func splitPaths(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readTextFile(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func loadImages(paths []string) ([]client.ImageFile, error) {
	images := make([]client.ImageFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		images = append(images, client.ImageFile{
			Name:        filepath.Base(p),
			ContentType: detectContentType(p, data),
			Data:        data,
		})
	}
	return images, nil
}

// detectContentType trusts the extension first, then sniffs the bytes
func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
