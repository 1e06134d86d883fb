// Package pointer routes motion events to on-screen pointer presentations.
// The Choreographer owns one presentation handle per (kind, display-or-device)
// key and rewrites events so downstream stages see display-resolved
// coordinates.
package pointer

import (
	"time"

	"github.com/1broseidon/pointertile/internal/input"
)

// ControllerKind selects the presentation a controller renders.
type ControllerKind int

const (
	KindMouse ControllerKind = iota
	KindTouch
	KindStylus
)

func (k ControllerKind) String() string {
	switch k {
	case KindMouse:
		return "mouse"
	case KindTouch:
		return "touch"
	case KindStylus:
		return "stylus"
	default:
		return "unknown"
	}
}

// Transition selects how a fade or unfade is animated.
type Transition int

const (
	TransitionImmediate Transition = iota
	TransitionGradual
)

// IconStyle names a system pointer icon. The zero value means no style was
// specified; controllers fall back to their default presentation.
type IconStyle int32

const (
	IconStyleNotSpecified IconStyle = iota
	IconStyleArrow
	IconStyleHand
	IconStyleCrosshair
	IconStyleText
	IconStyleWait
)

// SpriteIcon is a caller-supplied bitmap icon with its hotspot.
type SpriteIcon struct {
	Width    int
	Height   int
	HotSpotX float64
	HotSpotY float64
	Data     []byte
}

// PointerIcon is either a system style or a custom sprite. When Sprite is
// non-nil it takes precedence over Style.
type PointerIcon struct {
	Style  IconStyle
	Sprite *SpriteIcon
}

// Spot is one touch indicator placed on a display.
type Spot struct {
	ID int32
	X  float64
	Y  float64
}

// Controller is a live pointer presentation handle. The Choreographer calls
// Release exactly once when it drops its routing reference; the renderer
// frees the presentation once no other owner remains.
type Controller interface {
	// Position returns the current cursor location in display coordinates.
	Position() (x, y float64)
	// SetPosition warps the cursor to an absolute location.
	SetPosition(x, y float64)
	// Move shifts the cursor by a relative delta, clamped to the viewport.
	Move(dx, dy float64)

	Fade(Transition)
	Unfade(Transition)

	// SetDisplayViewport binds the controller to a display's bounds.
	SetDisplayViewport(input.DisplayViewport)
	// DisplayID returns the bound display, or input.InvalidDisplayID.
	DisplayID() int32

	SetIcon(IconStyle)
	SetCustomIcon(SpriteIcon)

	// SetSkipScreenshotFlag marks the given display so this controller's
	// presentation is excluded from its captures.
	SetSkipScreenshotFlag(displayID int32)
	ClearSkipScreenshotFlags()

	// SetSpots replaces the touch indicators shown on a display. An empty
	// slice clears them.
	SetSpots(displayID int32, spots []Spot)
	ClearSpots()

	Release()
	Dump() string
}

// Policy is the embedder-supplied side of the choreographer: it constructs
// controllers and receives display-change notifications. Notifications are
// always delivered without choreographer locks held, so implementations may
// call back freely.
type Policy interface {
	CreateController(kind ControllerKind) Controller
	// NotifyPointerDisplayChanged reports the display the mouse cursor
	// lives on, with its current position. InvalidDisplayID means no
	// mouse cursor exists anywhere.
	NotifyPointerDisplayChanged(displayID int32, x, y float64)
	// IsTextInputActive reports whether key events currently reach a text
	// editor, which gates fade-on-typing.
	IsTextInputActive() bool
}

// WindowInfo is the subset of per-window state the choreographer needs to
// score display privacy.
type WindowInfo struct {
	DisplayID int32
	Title     string
	Hidden    bool
	Sensitive bool
}

// WindowDisplayInfo is the display metadata carried alongside a window
// batch.
type WindowDisplayInfo struct {
	DisplayID int32
	Width     int
	Height    int
}

// WindowInfoUpdate is one window-metadata batch. Seq increases with every
// push from the same feed.
type WindowInfoUpdate struct {
	Windows   []WindowInfo
	Displays  []WindowDisplayInfo
	Seq       uint64
	Timestamp time.Time
}

// WindowInfoListener receives window-metadata batches from a WindowInfoFeed.
type WindowInfoListener interface {
	OnWindowInfosChanged(update WindowInfoUpdate)
}

// WindowInfoFeed publishes window-metadata batches. Register returns the
// current batch so the subscriber starts from a consistent state.
type WindowInfoFeed interface {
	Register(WindowInfoListener) WindowInfoUpdate
	Unregister(WindowInfoListener)
}

// PrivacySensitiveDisplays returns the set of displays showing at least one
// visible privacy-sensitive window.
func PrivacySensitiveDisplays(windows []WindowInfo) map[int32]struct{} {
	out := make(map[int32]struct{})
	for _, w := range windows {
		if !w.Hidden && w.Sensitive {
			out[w.DisplayID] = struct{}{}
		}
	}
	return out
}
