package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/pointertile/internal/ipc"
)

// displayItem implements list.Item for the display picker.
type displayItem struct {
	info      ipc.ViewportInfo
	isDefault bool
}

func (i displayItem) Title() string {
	title := fmt.Sprintf("%s  %dx%d+%d+%d", i.info.Name, i.info.Width, i.info.Height, i.info.X, i.info.Y)
	if i.isDefault {
		title += "  [default]"
	}
	return title
}

func (i displayItem) Description() string { return "" }
func (i displayItem) FilterValue() string { return i.info.Name }

// DisplaysTab is the sub-model for the display picker tab.
type DisplaysTab struct {
	list list.Model
}

// NewDisplaysTab creates an empty displays tab; content arrives with the
// first refresh.
func NewDisplaysTab() DisplaysTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Displays"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return DisplaysTab{list: l}
}

// SetDisplays replaces the display list, preserving the cursor position.
func (dt *DisplaysTab) SetDisplays(viewports []ipc.ViewportInfo, defaultDisplay int32) {
	items := make([]list.Item, 0, len(viewports))
	for _, vp := range viewports {
		items = append(items, displayItem{
			info:      vp,
			isDefault: vp.ID == defaultDisplay,
		})
	}
	selected := dt.list.Index()
	dt.list.SetItems(items)
	if selected < len(items) {
		dt.list.Select(selected)
	}
}

// SelectedName returns the output name under the cursor.
func (dt DisplaysTab) SelectedName() (string, bool) {
	item, ok := dt.list.SelectedItem().(displayItem)
	if !ok {
		return "", false
	}
	return item.info.Name, true
}

// Update implements the sub-model update contract.
func (dt DisplaysTab) Update(msg tea.Msg) (DisplaysTab, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		dt.list.SetSize(size.Width, size.Height)
		return dt, nil
	}
	var cmd tea.Cmd
	dt.list, cmd = dt.list.Update(msg)
	return dt, cmd
}

// View renders the display list.
func (dt DisplaysTab) View() string {
	return dt.list.View()
}
