package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("0")).
			Bold(true)

	metaOnlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	metaOfflineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	statusOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Bold(true).
			Underline(true)

	tagLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	keysStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func paintLayout(layout string) string {
	if layout == "" {
		return layout
	}

	lines := strings.Split(layout, "\n")
	for i, line := range lines {
		switch {
		case line == title:
			lines[i] = headerStyle.Render(line)
		case strings.HasPrefix(line, "Reader ONLINE"):
			lines[i] = metaOnlineStyle.Render(line)
		case strings.HasPrefix(line, "Reader OFFLINE"):
			lines[i] = metaOfflineStyle.Render(line)
		case strings.HasPrefix(line, "[OK]"):
			lines[i] = statusOKStyle.Render(line)
		case strings.HasPrefix(line, "[WARN]"):
			lines[i] = statusWarnStyle.Render(line)
		case strings.HasPrefix(line, "[ERR]"):
			lines[i] = statusErrStyle.Render(line)
		case line == "Main Menu", line == "Output",
			line == "Inventory statistics:", line == "Reader settings:":
			lines[i] = sectionStyle.Render(line)
		case strings.HasPrefix(line, "Tag "), strings.HasPrefix(line, "-- round"):
			lines[i] = tagLineStyle.Render(line)
		case strings.HasPrefix(line, "Keys:"):
			lines[i] = keysStyle.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}
