package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pageza/recipebox/internal/types"
)

var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	PassStyle     = lipgloss.NewStyle().Foreground(ColorPass)
	FailStyle     = lipgloss.NewStyle().Foreground(ColorFail)
	SelectedStyle = lipgloss.NewStyle().Bold(true)
)

const (
	IconPass = "✓"
	IconFail = "✗"
	IconEdit = "✎"
)

func RenderSuccess(msg string) string {
	return PassStyle.Render(IconPass + " " + msg)
}

func RenderError(msg string) string {
	return FailStyle.Render(IconFail + " " + msg)
}

func RenderMuted(msg string) string {
	return MutedStyle.Render(msg)
}

// RenderRecipeList draws the sidebar list; selectedID is marked
func RenderRecipeList(recipes []types.Recipe, selectedID string, now time.Time) string {
	if len(recipes) == 0 {
		return MutedStyle.Render("No recipes yet. Import one to get started.")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Your recipes"))
	b.WriteString("\n")
	for _, r := range recipes {
		marker := "  "
		title := r.Title()
		if r.ID == selectedID {
			marker = "> "
			title = SelectedStyle.Render(title)
		}
		when := "created " + Ago(now, r.CreatedAt)
		if r.Edited() {
			when = IconEdit + " edited " + Ago(now, r.EffectiveChangeTime())
		}
		fmt.Fprintf(&b, "%s%s  %s  %s\n", marker, title, MutedStyle.Render(r.ID), MutedStyle.Render(when))
	}
	return b.String()
}

// Ago is a short relative time such as "5m ago"
func Ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
