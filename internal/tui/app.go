package tui

import (
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/pointertile/internal/ipc"
)

const refreshInterval = 2 * time.Second

// statusClient is the slice of the IPC client the TUI uses. Tests swap in a
// fake.
type statusClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetViewports() (*ipc.ViewportsData, error)
	GetCursor(displayID int32) (*ipc.CursorData, error)
	SetDefaultDisplay(name string) error
	SetShowTouches(enabled bool) error
	SetStylusIcon(enabled bool) error
	Dump() (string, error)
}

// refreshMsg carries one polled snapshot of daemon state.
type refreshMsg struct {
	connected bool
	status    ipc.StatusData
	cursor    ipc.CursorData
	dump      string
	viewports []ipc.ViewportInfo
}

// actionErrMsg reports a failed daemon command.
type actionErrMsg struct{ err error }

// model is the root bubbletea model for the TUI.
type model struct {
	client statusClient

	activeTab Tab

	connected bool
	status    ipc.StatusData
	cursor    ipc.CursorData
	dump      string
	lastError string

	displaysTab DisplaysTab

	width  int
	height int
}

func newModel(client statusClient) model {
	return model{
		client:      client,
		activeTab:   TabStatus,
		displaysTab: NewDisplaysTab(),
	}
}

func (m model) refresh() tea.Msg {
	status, err := m.client.GetStatus()
	if err != nil {
		return refreshMsg{connected: false}
	}

	msg := refreshMsg{connected: true, status: *status}
	if viewports, err := m.client.GetViewports(); err == nil {
		msg.viewports = viewports.Viewports
	}
	if cursor, err := m.client.GetCursor(-1); err == nil {
		msg.cursor = *cursor
	}
	if dump, err := m.client.Dump(); err == nil {
		msg.dump = dump
	}
	return msg
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

type tickMsg struct{}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh, scheduleRefresh())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabStatus
			return m, nil
		case "2":
			m.activeTab = TabDisplays
			return m, nil
		case "3":
			m.activeTab = TabDump
			return m, nil

		case "t":
			return m, m.toggleShowTouches()
		case "s":
			return m, m.toggleStylusIcon()
		case "r":
			return m, m.refresh

		case "enter":
			if m.activeTab == TabDisplays {
				return m, m.setDefaultDisplay()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.displaysTab, _ = m.displaysTab.Update(tea.WindowSizeMsg{
			Width:  m.width,
			Height: m.contentHeight(),
		})
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh, scheduleRefresh())

	case refreshMsg:
		m.connected = msg.connected
		if msg.connected {
			m.status = msg.status
			m.cursor = msg.cursor
			m.dump = msg.dump
			m.displaysTab.SetDisplays(msg.viewports, msg.status.DefaultDisplay)
			m.lastError = ""
		}
		return m, nil

	case actionErrMsg:
		m.lastError = msg.err.Error()
		return m, nil
	}

	if m.activeTab == TabDisplays {
		var cmd tea.Cmd
		m.displaysTab, cmd = m.displaysTab.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) toggleShowTouches() tea.Cmd {
	client := m.client
	enabled := !m.status.ShowTouches
	return func() tea.Msg {
		if err := client.SetShowTouches(enabled); err != nil {
			return actionErrMsg{err}
		}
		return m.refresh()
	}
}

func (m model) toggleStylusIcon() tea.Cmd {
	client := m.client
	enabled := !m.status.StylusPointerIcon
	return func() tea.Msg {
		if err := client.SetStylusIcon(enabled); err != nil {
			return actionErrMsg{err}
		}
		return m.refresh()
	}
}

func (m model) setDefaultDisplay() tea.Cmd {
	name, ok := m.displaysTab.SelectedName()
	if !ok {
		return nil
	}
	client := m.client
	return func() tea.Msg {
		if err := client.SetDefaultDisplay(name); err != nil {
			return actionErrMsg{err}
		}
		return m.refresh()
	}
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.status, m.lastError, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch m.activeTab {
	case TabStatus:
		content = renderStatusTab(m.connected, m.status, m.cursor, m.width, contentHeight)
	case TabDisplays:
		content = m.displaysTab.View()
	case TabDump:
		content = renderDumpTab(m.dump, m.width, contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
