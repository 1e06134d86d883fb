// Package input defines the device, display, and event types shared by the
// event pipeline, plus the listener interface stages implement.
package input

import (
	"math"
	"time"
)

// DisplayID sentinels. Display ids are assigned by the window system and are
// process-unique while the display is connected.
const (
	InvalidDisplayID int32 = -1
	DefaultDisplayID int32 = 0
)

// Source is a bitmask of input source capabilities reported by a device.
type Source uint32

const (
	SourceMouse Source = 1 << iota
	SourceMouseRelative
	SourceTouchscreen
	SourceStylus
)

// Has reports whether s contains every bit of want.
func (s Source) Has(want Source) bool {
	return s&want == want
}

// ToolType identifies the physical tool behind one pointer of a motion event.
type ToolType int

const (
	ToolTypeUnknown ToolType = iota
	ToolTypeMouse
	ToolTypeFinger
	ToolTypeStylus
	ToolTypeEraser
)

func (t ToolType) String() string {
	switch t {
	case ToolTypeMouse:
		return "mouse"
	case ToolTypeFinger:
		return "finger"
	case ToolTypeStylus:
		return "stylus"
	case ToolTypeEraser:
		return "eraser"
	default:
		return "unknown"
	}
}

// MotionAction describes what a motion event reports. Pointer-indexed actions
// (ActionPointerDown/ActionPointerUp) carry the affected pointer in
// MotionEvent.ActionIndex.
type MotionAction int

const (
	ActionDown MotionAction = iota
	ActionUp
	ActionMove
	ActionCancel
	ActionPointerDown
	ActionPointerUp
	ActionHoverEnter
	ActionHoverMove
	ActionHoverExit
	ActionScroll
)

// Classification is the gesture classification attached to touchpad events.
type Classification int

const (
	ClassificationNone Classification = iota
	ClassificationTwoFingerSwipe
	ClassificationMultiFingerSwipe
	ClassificationPinch
)

// Pointer is one contact or tool within a motion event. X/Y are absolute
// display coordinates where the source reports them; RelX/RelY carry relative
// motion for mouse-style sources.
type Pointer struct {
	ID   int32
	Tool ToolType
	X    float64
	Y    float64
	RelX float64
	RelY float64
}

// MotionEvent is a single motion report from one device. The event is
// replaced, never mutated in place, when a pipeline stage rewrites it.
type MotionEvent struct {
	DeviceID       int32
	Source         Source
	Action         MotionAction
	ActionIndex    int
	Classification Classification
	DisplayID      int32
	Pointers       []Pointer
	CursorX        float64
	CursorY        float64
}

// NewMotionEvent returns a motion event with no cursor position attached.
func NewMotionEvent(deviceID int32, source Source, action MotionAction) *MotionEvent {
	return &MotionEvent{
		DeviceID:  deviceID,
		Source:    source,
		Action:    action,
		DisplayID: InvalidDisplayID,
		CursorX:   math.NaN(),
		CursorY:   math.NaN(),
	}
}

// HasCursorPosition reports whether the event carries a valid absolute
// cursor position (absolute mice populate it, relative mice do not).
func (e *MotionEvent) HasCursorPosition() bool {
	return !math.IsNaN(e.CursorX) && !math.IsNaN(e.CursorY)
}

// Clone returns a deep copy of the event, suitable for rewriting.
func (e *MotionEvent) Clone() *MotionEvent {
	out := *e
	out.Pointers = make([]Pointer, len(e.Pointers))
	copy(out.Pointers, e.Pointers)
	return &out
}

// KeyAction distinguishes key press from key release.
type KeyAction int

const (
	KeyActionDown KeyAction = iota
	KeyActionUp
)

// MetaState is the held-modifier bitmask attached to key events.
type MetaState uint32

const (
	MetaCapsLockOn MetaState = 1 << iota
	MetaNumLockOn
	MetaScrollLockOn
	MetaShiftLeftOn
	MetaShiftRightOn
	MetaShiftOn
	MetaAltOn
	MetaCtrlOn
	MetaMetaOn
)

// Keycodes for modifier keys. Key events for these never count as typing.
const (
	KeyCodeShiftLeft int32 = 0xE0 + iota
	KeyCodeShiftRight
	KeyCodeCtrlLeft
	KeyCodeCtrlRight
	KeyCodeAltLeft
	KeyCodeAltRight
	KeyCodeMetaLeft
	KeyCodeMetaRight
	KeyCodeCapsLock
	KeyCodeNumLock
	KeyCodeScrollLock
	KeyCodeFunction
)

// IsModifierKey reports whether keyCode is a modifier key on its own.
func IsModifierKey(keyCode int32) bool {
	return keyCode >= KeyCodeShiftLeft && keyCode <= KeyCodeFunction
}

// KeyEvent is a single key report from one device.
type KeyEvent struct {
	DeviceID  int32
	Action    KeyAction
	KeyCode   int32
	MetaState MetaState
	DisplayID int32
}

// DeviceInfo is a snapshot of one connected input device. The device list is
// replaced wholesale on every devices-changed notification.
type DeviceInfo struct {
	ID                  int32
	Name                string
	Sources             Source
	AssociatedDisplayID int32
	Enabled             bool
}

// DisplayViewport describes the logical bounds of one display.
type DisplayViewport struct {
	DisplayID int32
	Name      string
	X         int
	Y         int
	Width     int
	Height    int
}

// DevicesChangedEvent carries the full replacement device list.
type DevicesChangedEvent struct {
	Devices []DeviceInfo
}

// ConfigurationChangedEvent signals a global input configuration change.
type ConfigurationChangedEvent struct {
	When time.Time
}

// SwitchEvent reports a hardware switch (lid, tablet mode) state change.
type SwitchEvent struct {
	When   time.Time
	Values uint32
	Mask   uint32
}

// SensorEvent reports a sensor sample from an input device.
type SensorEvent struct {
	DeviceID int32
	When     time.Time
	Values   []float64
}

// VibratorStateEvent reports whether a device's vibrator is running.
type VibratorStateEvent struct {
	DeviceID int32
	On       bool
}

// DeviceResetEvent signals that a device's state must be discarded.
type DeviceResetEvent struct {
	DeviceID int32
}

// PointerCaptureChangedEvent signals a pointer-capture request toggling.
type PointerCaptureChangedEvent struct {
	Enabled bool
}

// Listener receives the event stream. Pipeline stages implement Listener and
// forward (possibly rewritten) events to the next stage.
type Listener interface {
	NotifyDevicesChanged(*DevicesChangedEvent)
	NotifyConfigurationChanged(*ConfigurationChangedEvent)
	NotifyKey(*KeyEvent)
	NotifyMotion(*MotionEvent)
	NotifySwitch(*SwitchEvent)
	NotifySensor(*SensorEvent)
	NotifyVibratorState(*VibratorStateEvent)
	NotifyDeviceReset(*DeviceResetEvent)
	NotifyPointerCaptureChanged(*PointerCaptureChangedEvent)
}
