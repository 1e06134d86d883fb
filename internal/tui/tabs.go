package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/pointertile/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabStatus Tab = iota
	TabDisplays
	TabDump
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabStatus:
		return "Status"
	case TabDisplays:
		return "Displays"
	case TabDump:
		return "Dump"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	statusBarConnected = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("22")).
				Padding(0, 1)

	statusBarDisconnected = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("88")).
				Padding(0, 1)

	statusBarError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(0, 1)

	helpBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Padding(0, 1)
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d:%s", int(i)+1, i.String())
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// renderStatusBar renders the daemon connection line at the top.
func renderStatusBar(connected bool, status ipc.StatusData, lastError string, width int) string {
	var bar string
	if connected {
		bar = statusBarConnected.Render(fmt.Sprintf("daemon up %s · default display %s · touches %s · stylus icon %s",
			formatUptime(status.UptimeSeconds),
			displayLabel(status.DefaultDisplayName, status.DefaultDisplay),
			onOff(status.ShowTouches),
			onOff(status.StylusPointerIcon)))
	} else {
		bar = statusBarDisconnected.Render("daemon not running")
	}
	if lastError != "" {
		bar = lipgloss.JoinHorizontal(lipgloss.Top, bar, statusBarError.Render(lastError))
	}
	return lipgloss.NewStyle().Width(width).Render(bar)
}

// renderHelpBar renders the key hints at the bottom.
func renderHelpBar(active Tab, width int) string {
	hints := []string{"tab: switch", "t: touches", "s: stylus icon", "r: refresh", "q: quit"}
	if active == TabDisplays {
		hints = append([]string{"enter: set default"}, hints...)
	}
	return helpBarStyle.Width(width).Render(strings.Join(hints, "  ·  "))
}

func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	out := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, item)
	}
	return out
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func displayLabel(name string, id int32) string {
	if name != "" {
		return name
	}
	if id < 0 {
		return "none"
	}
	return fmt.Sprintf("%d", id)
}

func formatUptime(seconds int64) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	return fmt.Sprintf("%dh%dm", seconds/3600, (seconds%3600)/60)
}
