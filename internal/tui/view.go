package tui

import (
	"fmt"
	"strings"
)

const title = "STUHFL Reader"

func (m Model) View() string {
	if m.quitting {
		return "Disconnecting...\n"
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(m.metaLine())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	b.WriteString("Main Menu\n")
	for _, item := range mainMenu {
		b.WriteString(fmt.Sprintf("  [%s] %-12s %s\n", item.Key, item.Label, item.Desc))
	}

	if m.inputMode == inputModeSelectEPC {
		b.WriteString("\nEPC: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\nOutput\n")
	for _, line := range m.visibleOutput() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footerLine())
	return paintLayout(b.String())
}

func (m Model) metaLine() string {
	connection := "OFFLINE"
	port := "-"
	tuned := false
	if m.reader != nil {
		connection = "ONLINE"
		port = m.reader.Conn().PortName()
		tuned = m.reader.Tuned()
	}
	setup := m.opts.Setup
	selected := "-"
	if len(m.selected) > 0 {
		selected = strings.ReplaceAll(firstEPCHex([][]byte{m.selected}), " ", "")
	}
	return fmt.Sprintf("Reader %s | Port %s | Ant %d | Hop %s | Tuned %s | Rounds %d | Tags %d | Sel %s",
		connection, port, setup.Antenna, onOff(setup.FreqHopping), onOff(tuned), m.rounds, m.tagTotal, selected)
}

func (m Model) statusLine() string {
	prefix := statusTag(m.status)
	if m.connecting || m.busy {
		prefix = m.spinner.View()
	}
	return prefix + " " + m.status
}

func (m Model) footerLine() string {
	if m.inputMode == inputModeSelectEPC {
		return "Keys: [Enter] Select  [Esc] Cancel"
	}
	return "Keys: [1] Inventory  [2] Select  [3] TID  [4] Info  [c] Clear  [q] Quit"
}

// visibleOutput keeps the newest lines that fit under the menu.
func (m Model) visibleOutput() []string {
	if len(m.output) == 0 {
		return []string{"  (empty)"}
	}
	limit := len(m.output)
	if m.height > 0 {
		limit = max(m.height-len(mainMenu)-12, 5)
	}
	if len(m.output) <= limit {
		return m.output
	}
	return m.output[len(m.output)-limit:]
}
