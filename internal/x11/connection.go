// Package x11 wraps the X server primitives the daemon needs: display
// topology via RandR, window metadata via EWMH, and hardware cursor control.
package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to the X11 server. display overrides
// $DISPLAY when non-empty.
func NewConnection(display string) (*Connection, error) {
	var xu *xgbutil.XUtil
	var err error
	if display != "" {
		xu, err = xgbutil.NewConnDisplay(display)
	} else {
		xu, err = xgbutil.NewConn()
	}
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// StopEventLoop asks the running event loop to quit.
func (c *Connection) StopEventLoop() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// PointerLocation returns the hardware cursor position in root coordinates.
func (c *Connection) PointerLocation() (x, y int, err error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// WarpPointer moves the hardware cursor to root coordinates.
func (c *Connection) WarpPointer(x, y int) error {
	return xproto.WarpPointerChecked(c.XUtil.Conn(), xproto.WindowNone, c.Root,
		0, 0, 0, 0, int16(x), int16(y)).Check()
}
