// Package render formats search results as text, JSON or HTML. Renderers are
// pure: they depend only on their arguments.
package render

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorFailure = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
)

// Styles are the ANSI styles used by Text. A nil *Styles renders plain text.
type Styles struct {
	File    lipgloss.Style
	Term    lipgloss.Style
	Header  lipgloss.Style
	Match   lipgloss.Style
	Marker  lipgloss.Style
	Muted   lipgloss.Style
	Failure lipgloss.Style
	Warning lipgloss.Style
}

// NewStyles builds the default palette for a renderer, which decides the
// color profile of the output it is bound to.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		File:    r.NewStyle().Bold(true).Foreground(colorPrimary),
		Term:    r.NewStyle().Bold(true).Foreground(colorInfo),
		Header:  r.NewStyle().Foreground(colorMuted),
		Match:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FCD34D")).Background(lipgloss.Color("#78350F")),
		Marker:  r.NewStyle().Bold(true).Foreground(colorWarning),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Failure: r.NewStyle().Foreground(colorFailure),
		Warning: r.NewStyle().Foreground(colorWarning),
	}
}

// paint renders s with the style picked from st, or returns s unchanged when
// st is nil.
func paint(st *Styles, pick func(*Styles) lipgloss.Style, s string) string {
	if st == nil || s == "" {
		return s
	}
	return pick(st).Render(s)
}

func fileStyle(s *Styles) lipgloss.Style    { return s.File }
func termStyle(s *Styles) lipgloss.Style    { return s.Term }
func headerStyle(s *Styles) lipgloss.Style  { return s.Header }
func matchStyle(s *Styles) lipgloss.Style   { return s.Match }
func markerStyle(s *Styles) lipgloss.Style  { return s.Marker }
func mutedStyle(s *Styles) lipgloss.Style   { return s.Muted }
func failureStyle(s *Styles) lipgloss.Style { return s.Failure }
func warningStyle(s *Styles) lipgloss.Style { return s.Warning }
