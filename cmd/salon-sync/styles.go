package main

import (
	"fmt"
	"io"
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
	"github.com/ruminaider/salon-sync/internal/editor"
	"github.com/ruminaider/salon-sync/internal/profile"
)

// Catppuccin Mocha palette.
var flavor = catppuccin.Mocha

var (
	colorText     = lipgloss.Color(flavor.Text().Hex)
	colorSubtext0 = lipgloss.Color(flavor.Subtext0().Hex)
	colorGreen    = lipgloss.Color(flavor.Green().Hex)
	colorRed      = lipgloss.Color(flavor.Red().Hex)
	colorBlue     = lipgloss.Color(flavor.Blue().Hex)
	colorMauve    = lipgloss.Color(flavor.Mauve().Hex)
	colorOverlay0 = lipgloss.Color(flavor.Overlay0().Hex)
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorMauve).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Width(20)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0).
			Italic(true)

	addedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	removedStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	toastDestructiveStyle = toastStyle.
				BorderForeground(colorRed)

	toastTitleStyle = lipgloss.NewStyle().
			Bold(true)
)

// toastNotifier renders editor notifications as bordered boxes.
type toastNotifier struct {
	w io.Writer
}

func (t toastNotifier) Notify(n editor.Notification) {
	fmt.Fprintln(t.w, renderToast(n))
}

func renderToast(n editor.Notification) string {
	style := toastStyle
	if n.Variant == editor.VariantDestructive {
		style = toastDestructiveStyle
	}
	return style.Render(toastTitleStyle.Render(n.Title) + "\n" + n.Description)
}

func none(s string) string {
	if s == "" {
		return mutedStyle.Render("(not set)")
	}
	return valueStyle.Render(s)
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

// renderProfile formats p for display.
func renderProfile(title string, p profile.Profile) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(row("Date of Birth", none(p.DateOfBirthString())) + "\n")
	b.WriteString(row("Skin Type", none(string(p.SkinType))) + "\n")
	for _, f := range profile.ListFields {
		items := p.List(f)
		if len(items) == 0 {
			b.WriteString(row(f.Label(), mutedStyle.Render("(none)")) + "\n")
			continue
		}
		b.WriteString(row(f.Label(), valueStyle.Render(strings.Join(items, ", "))) + "\n")
	}
	photo := ""
	if p.ConcernPhoto != nil {
		photo = p.ConcernPhoto.URL
	}
	b.WriteString(row("Concern Photo", none(photo)) + "\n")
	b.WriteString(row("Notes", none(p.Notes)))
	return b.String()
}

var scalarLabels = map[profile.ScalarField]string{
	profile.DateOfBirth:   "Date of Birth",
	profile.SkinTypeField: "Skin Type",
	profile.Notes:         "Notes",
}

// renderChanges lists what an edit changed, one line per change.
func renderChanges(c profile.Changes) string {
	if c.Empty() {
		return mutedStyle.Render("No changes.")
	}
	var lines []string
	for _, f := range c.SortedFields() {
		ch := c.Fields[f]
		lines = append(lines, fmt.Sprintf("~ %s: %s → %s", scalarLabels[f], orDash(ch.Base), orDash(ch.Current)))
	}
	for _, f := range profile.ListFields {
		d, ok := c.Lists[f]
		if !ok {
			continue
		}
		for _, item := range d.Added {
			lines = append(lines, addedStyle.Render(fmt.Sprintf("+ %s: %s", f.Label(), item)))
		}
		for _, item := range d.Removed {
			lines = append(lines, removedStyle.Render(fmt.Sprintf("- %s: %s", f.Label(), item)))
		}
	}
	if c.Photo != nil {
		lines = append(lines, fmt.Sprintf("~ Concern Photo: %s → %s", orDash(c.Photo.Base), orDash(c.Photo.Current)))
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
