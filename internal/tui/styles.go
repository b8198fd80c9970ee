package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// banner is the startup ASCII art.
const banner = `
 ██████╗ ██████╗  █████╗ ██╗   ██╗███╗   ██╗██╗██╗  ██╗
 ██╔══██╗██╔══██╗██╔══██╗██║   ██║████╗  ██║██║██║ ██╔╝
 ██████╔╝██████╔╝███████║██║   ██║██╔██╗ ██║██║█████╔╝
 ██╔═══╝ ██╔══██╗██╔══██║╚██╗ ██╔╝██║╚██╗██║██║██╔═██╗
 ██║     ██║  ██║██║  ██║ ╚████╔╝ ██║ ╚████║██║██║  ██╗
 ╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝  ╚═══╝  ╚═╝  ╚═══╝╚═╝╚═╝  ╚═╝`

// Styles holds the lipgloss styles for the chat interface.
type Styles struct {
	Banner    lipgloss.Style
	Tagline   lipgloss.Style
	Tips      lipgloss.Style
	Prompt    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Error     lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns the standard color scheme.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Tagline:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		System:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

// RenderBanner returns the styled startup banner with tagline.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	b.WriteString(s.Banner.Render(banner))
	b.WriteString("\n\n")
	b.WriteString(s.Tagline.Render("  Your assistant for labor law questions"))
	b.WriteString("\n")
	return b.String()
}

// RenderWelcomeTips returns the styled usage hints shown at startup.
func (s Styles) RenderWelcomeTips() string {
	tips := []string{
		"  Ask any question about annual leave, contracts, or working hours.",
		"  Enter sends, Shift+Enter adds a line, /help lists commands.",
	}
	return s.Tips.Render(strings.Join(tips, "\n")) + "\n"
}
