package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Window is the metadata snapshot of one managed window.
type Window struct {
	ID     uint32
	Class  string
	Title  string
	Hidden bool
	X      int
	Y      int
	Width  int
	Height int
}

// ListWindows enumerates managed windows with the metadata needed to score
// display privacy: class, visibility, and root-relative geometry.
func (c *Connection) ListWindows() ([]Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		w := Window{
			ID:     uint32(windowID),
			Class:  c.windowClass(windowID),
			Title:  c.windowTitle(windowID),
			Hidden: c.windowHidden(windowID),
		}
		if x, y, width, height, ok := c.windowRect(windowID); ok {
			w.X, w.Y, w.Width, w.Height = x, y, width, height
		} else {
			// Without geometry the window cannot be mapped to a
			// display.
			continue
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// ActiveWindow returns the focused window id, 0 when none.
func (c *Connection) ActiveWindow() (uint32, error) {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return 0, err
	}
	return uint32(win), nil
}

func (c *Connection) windowHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

func (c *Connection) windowRect(windowID xproto.Window) (x, y, width, height int, ok bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), true
}

func (c *Connection) windowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	return ""
}
