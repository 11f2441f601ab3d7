package cli

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

// editMarkdown opens markdown in the configured editor and returns the result
func (e *env) editMarkdown(cmd *cobra.Command, markdown string) (string, error) {
	f, err := os.CreateTemp("", "recipebox-*.md")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(markdown); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	parts := strings.Fields(e.v.GetString(keyEditor))
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	editor := exec.CommandContext(cmd.Context(), parts[0], append(parts[1:], path)...)
	editor.Stdin = os.Stdin
	editor.Stdout = cmd.OutOrStdout()
	editor.Stderr = cmd.ErrOrStderr()
	if err := editor.Run(); err != nil {
		return "", fmt.Errorf("editor exited with error: %w", err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(edited), nil
}
