package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	// Glass panel effect with subtle border
	GlassPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

// Row is one labelled value in a report.
type Row struct {
	Label string
	Value string
}

// KeyValues renders rows as aligned label/value lines.
func KeyValues(rows []Row) string {
	var s strings.Builder
	for _, r := range rows {
		s.WriteString(labelStyle.Render(r.Label) + valueStyle.Render(r.Value) + "\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}

// BoxWithTitle wraps content in a rounded panel with a header line.
func BoxWithTitle(title, content string) string {
	return GlassPanel.Render(headerStyle.Render(title) + "\n" + content)
}

// Sci formats v for display, switching to exponent form for very large or
// small magnitudes.
func Sci(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
