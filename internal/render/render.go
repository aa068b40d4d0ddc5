// Package render draws display rows as a terminal list.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/quake-report-service/internal/domain"
)

const (
	badgeWidth    = 6
	locationWidth = 40
	dateWidth     = 14
)

var (
	offsetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	primaryStyle  = lipgloss.NewStyle().Bold(true)
	dateStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Align(lipgloss.Right)
	separatorRule = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Row renders one list entry: a magnitude badge in the palette color, the
// offset above the primary location, and the date above the time.
func Row(f domain.DisplayFields) string {
	badge := lipgloss.NewStyle().
		Width(badgeWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(f.Color)).
		Render(f.Magnitude)

	location := lipgloss.NewStyle().Width(locationWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			offsetStyle.Render(strings.ToUpper(strings.TrimSpace(f.LocationOffset))),
			primaryStyle.Render(f.PrimaryLocation),
		),
	)

	when := dateStyle.Width(dateWidth).Render(
		lipgloss.JoinVertical(lipgloss.Right, f.Date, f.Time),
	)

	return lipgloss.JoinHorizontal(lipgloss.Center, badge, "  ", location, when)
}

// List renders rows separated by a thin rule.
func List(rows []domain.DisplayFields) string {
	if len(rows) == 0 {
		return ""
	}
	rule := separatorRule.Render(strings.Repeat("─", badgeWidth+2+locationWidth+dateWidth))

	var b strings.Builder
	for i, f := range rows {
		if i > 0 {
			b.WriteString(rule)
			b.WriteByte('\n')
		}
		b.WriteString(Row(f))
		b.WriteByte('\n')
	}
	return b.String()
}
