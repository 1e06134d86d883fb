package platform

import "github.com/1broseidon/pointertile/internal/input"

// Window contains the metadata for one top-level window, already resolved to
// the display holding its center.
type Window struct {
	ID        uint32
	Class     string
	Title     string
	Hidden    bool
	DisplayID int32
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// Viewports returns the active display topology.
	Viewports() ([]input.DisplayViewport, error)
	// Windows returns all managed windows with display resolution.
	Windows() ([]Window, error)
	// FocusedDisplay returns the display holding the focused window, or
	// input.InvalidDisplayID when nothing is focused.
	FocusedDisplay() (int32, error)
	// CursorPosition reads the hardware cursor in root coordinates.
	CursorPosition() (x, y int, err error)
	// WarpCursor moves the hardware cursor in root coordinates.
	WarpCursor(x, y int) error
	// EventLoop runs the window-system event loop (blocking).
	EventLoop()
	// StopEventLoop asks a running event loop to quit.
	StopEventLoop()
	Disconnect()
}
