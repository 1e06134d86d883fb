//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/pointertile/internal/input"
	"github.com/1broseidon/pointertile/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh
// X11 connection. display overrides $DISPLAY when non-empty.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop asks the running X11 event loop to quit.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.StopEventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Viewports returns the active display topology.
func (b *LinuxBackend) Viewports() ([]input.DisplayViewport, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	return conn.Viewports()
}

// Windows returns all managed windows, each resolved to the display holding
// its center.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	viewports, err := conn.Viewports()
	if err != nil {
		return nil, err
	}
	wins, err := conn.ListWindows()
	if err != nil {
		return nil, err
	}

	out := make([]Window, 0, len(wins))
	for _, w := range wins {
		displayID := input.InvalidDisplayID
		if vp, ok := x11.ViewportContaining(viewports, w.X+w.Width/2, w.Y+w.Height/2); ok {
			displayID = vp.DisplayID
		}
		out = append(out, Window{
			ID:        w.ID,
			Class:     w.Class,
			Title:     w.Title,
			Hidden:    w.Hidden,
			DisplayID: displayID,
		})
	}
	return out, nil
}

// FocusedDisplay returns the display holding the focused window.
func (b *LinuxBackend) FocusedDisplay() (int32, error) {
	conn, err := b.connection()
	if err != nil {
		return input.InvalidDisplayID, err
	}

	active, err := conn.ActiveWindow()
	if err != nil || active == 0 {
		return input.InvalidDisplayID, err
	}

	wins, err := conn.ListWindows()
	if err != nil {
		return input.InvalidDisplayID, err
	}
	viewports, err := conn.Viewports()
	if err != nil {
		return input.InvalidDisplayID, err
	}
	for _, w := range wins {
		if w.ID != active {
			continue
		}
		if vp, ok := x11.ViewportContaining(viewports, w.X+w.Width/2, w.Y+w.Height/2); ok {
			return vp.DisplayID, nil
		}
	}
	return input.InvalidDisplayID, nil
}

// CursorPosition reads the hardware cursor in root coordinates.
func (b *LinuxBackend) CursorPosition() (x, y int, err error) {
	conn, err := b.connection()
	if err != nil {
		return 0, 0, err
	}
	return conn.PointerLocation()
}

// WarpCursor moves the hardware cursor in root coordinates.
func (b *LinuxBackend) WarpCursor(x, y int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.WarpPointer(x, y)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
