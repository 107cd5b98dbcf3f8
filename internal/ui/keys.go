package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(hasPlayback bool) string {
	s := "space pause  v view  w waterfall scale"
	if hasPlayback {
		s += "  ←/→ seek  +/- volume"
	}
	return s + "  q quit"
}
