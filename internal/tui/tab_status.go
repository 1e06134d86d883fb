package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/pointertile/internal/ipc"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	contentStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// renderStatusTab renders the main status panel.
func renderStatusTab(connected bool, status ipc.StatusData, cursor ipc.CursorData, width, height int) string {
	if !connected {
		return contentStyle.Width(width).Height(height).Render(
			"Daemon is not running.\n\nStart it with: pointertile daemon")
	}

	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
	}

	cursorLine := "no mouse cursor"
	if cursor.Valid {
		cursorLine = fmt.Sprintf("(%.0f, %.0f)", cursor.X, cursor.Y)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		row("Uptime", formatUptime(status.UptimeSeconds)),
		row("Default display", displayLabel(status.DefaultDisplayName, status.DefaultDisplay)),
		row("Cursor position", cursorLine),
		row("Show touches", onOff(status.ShowTouches)),
		row("Stylus pointer icon", onOff(status.StylusPointerIcon)),
		row("Input devices", fmt.Sprintf("%d", status.DeviceCount)),
	)
	return contentStyle.Width(width).Height(height).Render(body)
}

// renderDumpTab renders the raw routing dump, clipped to the content area.
func renderDumpTab(dump string, width, height int) string {
	if dump == "" {
		dump = "no dump available"
	}
	return contentStyle.Width(width).Height(height).
		MaxHeight(height).Render(dump)
}
