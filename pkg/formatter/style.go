package formatter

import (
	"github.com/Katzler/shapeshifter/pkg/coverage"
	"github.com/Katzler/shapeshifter/pkg/models"
	"github.com/charmbracelet/lipgloss"
)

// Style colors text output. The zero value renders plain text.
type Style struct {
	enabled bool
	header  lipgloss.Style
	covered lipgloss.Style
	tight   lipgloss.Style
	gap     lipgloss.Style
	under   lipgloss.Style
	over    lipgloss.Style
}

// Plain renders without escape codes.
var Plain = Style{}

// Color returns the terminal palette.
func Color() Style {
	return Style{
		enabled: true,
		header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		covered: lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950")),
		tight:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D29922")),
		gap:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F85149")),
		under:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D29922")),
		over:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F85149")),
	}
}

func (s Style) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

func (s Style) Header(text string) string {
	return s.render(s.header, text)
}

func (s Style) Status(status coverage.Status, text string) string {
	switch status {
	case coverage.StatusCovered:
		return s.render(s.covered, text)
	case coverage.StatusTight:
		return s.render(s.tight, text)
	case coverage.StatusGap:
		return s.render(s.gap, text)
	}
	return text
}

func (s Style) Hours(status models.HourStatus, text string) string {
	switch status {
	case models.HourStatusUnder:
		return s.render(s.under, text)
	case models.HourStatusOver:
		return s.render(s.over, text)
	}
	return text
}
