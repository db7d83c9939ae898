package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the color palette of the checkout screen. Colors are ANSI
// 256-color codes for broad terminal compatibility.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	Accent      lipgloss.Color // titles and the focused field
	BorderColor lipgloss.Color

	Countdown        lipgloss.Color
	CountdownWarning lipgloss.Color // last minute of the hold

	ErrorText   lipgloss.Color
	SuccessText lipgloss.Color

	ButtonForeground lipgloss.Color
	ButtonBackground lipgloss.Color
	ButtonDisabled   lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText:       lipgloss.Color("252"),
	FaintText:        lipgloss.Color("243"),
	Accent:           lipgloss.Color("212"),
	BorderColor:      lipgloss.Color("238"),
	Countdown:        lipgloss.Color("81"),
	CountdownWarning: lipgloss.Color("208"),
	ErrorText:        lipgloss.Color("203"),
	SuccessText:      lipgloss.Color("114"),
	ButtonForeground: lipgloss.Color("230"),
	ButtonBackground: lipgloss.Color("125"),
	ButtonDisabled:   lipgloss.Color("240"),
}

// styles are the lipgloss styles derived from a Theme.
type styles struct {
	title     lipgloss.Style
	label     lipgloss.Style
	faint     lipgloss.Style
	text      lipgloss.Style
	countdown lipgloss.Style
	warning   lipgloss.Style
	err       lipgloss.Style
	success   lipgloss.Style
	button    lipgloss.Style
	disabled  lipgloss.Style
	panel     lipgloss.Style
	overlay   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		label:     lipgloss.NewStyle().Foreground(t.FaintText).Width(10),
		faint:     lipgloss.NewStyle().Foreground(t.FaintText).Italic(true),
		text:      lipgloss.NewStyle().Foreground(t.NormalText),
		countdown: lipgloss.NewStyle().Bold(true).Foreground(t.Countdown),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(t.CountdownWarning),
		err:       lipgloss.NewStyle().Foreground(t.ErrorText),
		success:   lipgloss.NewStyle().Foreground(t.SuccessText),
		button: lipgloss.NewStyle().Bold(true).Padding(0, 2).
			Foreground(t.ButtonForeground).Background(t.ButtonBackground),
		disabled: lipgloss.NewStyle().Padding(0, 2).
			Foreground(t.NormalText).Background(t.ButtonDisabled),
		panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderColor).Padding(0, 1),
		overlay: lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).
			BorderForeground(t.CountdownWarning).Padding(1, 3).Align(lipgloss.Center),
	}
}
