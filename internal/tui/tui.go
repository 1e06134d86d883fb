// Package tui is an interactive status viewer for the pointertile daemon:
// live toggles, display topology, and the raw pointer routing dump.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/pointertile/internal/ipc"
)

// Run starts the TUI main loop.
func Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(ipc.NewClient()), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
