package pointer

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/1broseidon/pointertile/internal/input"
)

const dumpIndent = "  "

// metaStateAllowingFade: key events carrying only lock or shift modifiers
// still count as typing for fade purposes.
const metaStateAllowingFade = input.MetaCapsLockOn | input.MetaNumLockOn |
	input.MetaScrollLockOn | input.MetaShiftLeftOn | input.MetaShiftRightOn | input.MetaShiftOn

// pointerDisplayChange is a pending notification for the policy. It is
// computed under the choreographer lock and delivered after the lock is
// released.
type pointerDisplayChange struct {
	displayID int32
	x, y      float64
}

// Choreographer sits in the event pipeline between the device readers and
// the dispatcher. It owns the pointer presentation handles, rewrites mouse
// and touchpad events into display coordinates, and forwards everything to
// the next listener.
//
// Locking: the choreographer lock is the outermost lock. The choreographer
// may call controllers, the policy's constructor, and the window feed while
// holding it. Policy notifications are delivered unlocked.
type Choreographer struct {
	mu     sync.Mutex
	next   input.Listener
	policy Policy
	feed   WindowInfoFeed
	log    *slog.Logger

	mouseByDisplay map[int32]Controller
	touchByDevice  map[int32]Controller
	stylusByDevice map[int32]Controller
	tabletByDevice map[int32]Controller

	devices   []input.DeviceInfo
	knownMice map[int32]struct{}
	viewports []input.DisplayViewport

	defaultMouseDisplay int32
	notifiedDisplay     int32
	focusedDisplay      int32

	showTouches       bool
	stylusIconEnabled bool

	hiddenCursorDisplays map[int32]struct{}

	windowListener *displayInfoListener
	closed         bool
}

// New builds a choreographer forwarding to next. The feed supplies window
// snapshots for privacy scoring; it is subscribed to lazily, only while at
// least one controller exists.
func New(next input.Listener, policy Policy, feed WindowInfoFeed, log *slog.Logger) *Choreographer {
	if log == nil {
		log = slog.Default()
	}
	return &Choreographer{
		next:                 next,
		policy:               policy,
		feed:                 feed,
		log:                  log,
		mouseByDisplay:       make(map[int32]Controller),
		touchByDevice:        make(map[int32]Controller),
		stylusByDevice:       make(map[int32]Controller),
		tabletByDevice:       make(map[int32]Controller),
		knownMice:            make(map[int32]struct{}),
		hiddenCursorDisplays: make(map[int32]struct{}),
		defaultMouseDisplay:  input.DefaultDisplayID,
		notifiedDisplay:      input.InvalidDisplayID,
		focusedDisplay:       input.DefaultDisplayID,
	}
}

// Close releases every controller and detaches from the window feed. The
// choreographer must not be used afterwards; late feed callbacks are dropped.
func (c *Choreographer) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	listener := c.windowListener
	c.windowListener = nil
	for _, m := range []map[int32]Controller{c.mouseByDisplay, c.touchByDevice, c.stylusByDevice, c.tabletByDevice} {
		for k, pc := range m {
			pc.Release()
			delete(m, k)
		}
	}
	c.mu.Unlock()

	if listener != nil {
		listener.detach()
		c.feed.Unregister(listener)
	}
}

// NotifyDevicesChanged replaces the device list and reconciles the
// controller maps against it.
func (c *Choreographer) NotifyDevicesChanged(ev *input.DevicesChangedEvent) {
	c.mu.Lock()
	c.devices = append([]input.DeviceInfo(nil), ev.Devices...)
	change := c.updateControllersLocked()
	c.mu.Unlock()

	c.notifyPointerDisplayChange(change)
	c.next.NotifyDevicesChanged(ev)
}

// updateControllersLocked reconciles the controller maps with the current
// device list and settings: it ensures a mouse controller exists on every
// display a mouse resolves to and drops every controller whose key is no
// longer backed by an enabled device. Returns the display change to notify,
// if any.
func (c *Choreographer) updateControllersLocked() *pointerDisplayChange {
	mouseDisplaysToKeep := make(map[int32]struct{})
	touchDevicesToKeep := make(map[int32]struct{})
	stylusDevicesToKeep := make(map[int32]struct{})
	presentDevices := make(map[int32]struct{}, len(c.devices))

	for _, info := range c.devices {
		presentDevices[info.ID] = struct{}{}
		if !info.Enabled {
			continue
		}
		_, knownMouse := c.knownMice[info.ID]
		if input.IsMouseOrTouchpadSource(info.Sources) || knownMouse {
			displayID := c.targetMouseDisplayLocked(info.AssociatedDisplayID)
			mouseDisplaysToKeep[displayID] = struct{}{}
			// Show the cursor when the device is first seen or when it
			// lands on a new display.
			pc, exists := c.mouseByDisplay[displayID]
			if !exists {
				pc = c.makeMouseControllerLocked(displayID)
				c.mouseByDisplay[displayID] = pc
			}
			c.knownMice[info.ID] = struct{}{}
			if (!knownMouse || !exists) && c.canUnfadeOnDisplayLocked(displayID) {
				pc.Unfade(TransitionImmediate)
			}
		}
		if info.Sources.Has(input.SourceTouchscreen) && c.showTouches &&
			info.AssociatedDisplayID != input.InvalidDisplayID {
			touchDevicesToKeep[info.ID] = struct{}{}
		}
		if info.Sources.Has(input.SourceStylus) && c.stylusIconEnabled &&
			info.AssociatedDisplayID != input.InvalidDisplayID {
			stylusDevicesToKeep[info.ID] = struct{}{}
		}
	}

	for displayID, pc := range c.mouseByDisplay {
		if _, keep := mouseDisplaysToKeep[displayID]; !keep {
			pc.Release()
			delete(c.mouseByDisplay, displayID)
		}
	}
	for deviceID, pc := range c.touchByDevice {
		if _, keep := touchDevicesToKeep[deviceID]; !keep {
			pc.Release()
			delete(c.touchByDevice, deviceID)
		}
	}
	for deviceID, pc := range c.stylusByDevice {
		if _, keep := stylusDevicesToKeep[deviceID]; !keep {
			pc.Release()
			delete(c.stylusByDevice, deviceID)
		}
	}
	for deviceID, pc := range c.tabletByDevice {
		if !c.deviceIsDrawingTabletLocked(deviceID) {
			pc.Release()
			delete(c.tabletByDevice, deviceID)
		}
	}
	for deviceID := range c.knownMice {
		if _, present := presentDevices[deviceID]; !present {
			delete(c.knownMice, deviceID)
		}
	}

	c.onControllerAddedOrRemovedLocked()

	return c.calculateDisplayChangeLocked()
}

func (c *Choreographer) deviceIsDrawingTabletLocked(deviceID int32) bool {
	for _, info := range c.devices {
		if info.ID != deviceID {
			continue
		}
		return info.Enabled &&
			info.Sources.Has(input.SourceMouse|input.SourceStylus) &&
			info.AssociatedDisplayID != input.InvalidDisplayID
	}
	return false
}

// onControllerAddedOrRemovedLocked keeps the window feed subscription in
// step with controller existence: subscribed while any controller lives,
// unsubscribed once the last one is released. While subscribed, privacy
// flags are reapplied so a controller created mid-stream picks them up.
func (c *Choreographer) onControllerAddedOrRemovedLocked() {
	requireListener := len(c.mouseByDisplay) > 0 || len(c.touchByDevice) > 0 ||
		len(c.stylusByDevice) > 0 || len(c.tabletByDevice) > 0

	switch {
	case requireListener && c.windowListener == nil:
		l := newDisplayInfoListener(c)
		c.windowListener = l
		l.setInitialWindowInfos(c.feed.Register(l))
		c.applyPrivacySensitiveDisplaysLocked(l.privacySensitiveDisplays())
	case !requireListener && c.windowListener != nil:
		l := c.windowListener
		c.windowListener = nil
		l.detach()
		c.feed.Unregister(l)
	case requireListener:
		c.applyPrivacySensitiveDisplaysLocked(c.windowListener.privacySensitiveDisplays())
	}
}

// onPrivacySensitiveDisplaysChanged is called by the window listener, never
// while the listener's own lock is held.
func (c *Choreographer) onPrivacySensitiveDisplaysChanged(sensitive map[int32]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.applyPrivacySensitiveDisplaysLocked(sensitive)
}

func (c *Choreographer) applyPrivacySensitiveDisplaysLocked(sensitive map[int32]struct{}) {
	// Touch spot controllers can draw on any display, so they carry the
	// flag for every sensitive display.
	for _, pc := range c.touchByDevice {
		pc.ClearSkipScreenshotFlags()
		for displayID := range sensitive {
			pc.SetSkipScreenshotFlag(displayID)
		}
	}
	for displayID, pc := range c.mouseByDisplay {
		if _, ok := sensitive[displayID]; ok {
			pc.SetSkipScreenshotFlag(displayID)
		} else {
			pc.ClearSkipScreenshotFlags()
		}
	}
	for _, pc := range c.stylusByDevice {
		if _, ok := sensitive[pc.DisplayID()]; ok {
			pc.SetSkipScreenshotFlag(pc.DisplayID())
		} else {
			pc.ClearSkipScreenshotFlags()
		}
	}
	for _, pc := range c.tabletByDevice {
		if _, ok := sensitive[pc.DisplayID()]; ok {
			pc.SetSkipScreenshotFlag(pc.DisplayID())
		} else {
			pc.ClearSkipScreenshotFlags()
		}
	}
}

// NotifyMotion routes the event through the matching pointer presentation
// and forwards the (possibly rewritten) event downstream.
func (c *Choreographer) NotifyMotion(ev *input.MotionEvent) {
	out := c.processMotion(ev)
	c.next.NotifyMotion(out)
}

func (c *Choreographer) processMotion(ev *input.MotionEvent) *input.MotionEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case input.IsMouseEvent(ev):
		return c.processMouseLocked(ev)
	case input.IsTouchpadEvent(ev):
		return c.processTouchpadLocked(ev)
	case input.IsDrawingTabletEvent(ev):
		c.processDrawingTabletLocked(ev)
	case c.stylusIconEnabled && input.IsStylusHoverEvent(ev):
		c.processStylusHoverLocked(ev)
	case input.IsTouchscreenEvent(ev):
		c.processTouchscreenLocked(ev)
	}
	return ev
}

func (c *Choreographer) processMouseLocked(ev *input.MotionEvent) *input.MotionEvent {
	if len(ev.Pointers) != 1 {
		panic(fmt.Sprintf("only mouse events with a single pointer are supported: device %d has %d pointers",
			ev.DeviceID, len(ev.Pointers)))
	}
	c.knownMice[ev.DeviceID] = struct{}{}

	displayID := c.targetMouseDisplayLocked(ev.DisplayID)
	pc := c.ensureMouseControllerLocked(displayID)

	out := ev.Clone()
	out.DisplayID = displayID

	if ev.HasCursorPosition() {
		// Absolute mouse. Rewrite the absolute position as a delta
		// against the last known cursor position.
		x, y := pc.Position()
		out.Pointers[0].RelX = ev.CursorX - x
		out.Pointers[0].RelY = ev.CursorY - y
		pc.SetPosition(ev.CursorX, ev.CursorY)
	} else {
		pc.Move(ev.Pointers[0].RelX, ev.Pointers[0].RelY)
		x, y := pc.Position()
		out.Pointers[0].X = x
		out.Pointers[0].Y = y
		out.CursorX, out.CursorY = x, y
	}
	if c.canUnfadeOnDisplayLocked(displayID) {
		pc.Unfade(TransitionImmediate)
	}
	return out
}

func (c *Choreographer) processTouchpadLocked(ev *input.MotionEvent) *input.MotionEvent {
	c.knownMice[ev.DeviceID] = struct{}{}

	displayID := c.targetMouseDisplayLocked(ev.DisplayID)
	pc := c.ensureMouseControllerLocked(displayID)

	out := ev.Clone()
	out.DisplayID = displayID

	if len(ev.Pointers) == 1 && ev.Classification == input.ClassificationNone {
		// Single finger in pointer mode moves the cursor.
		pc.Move(ev.Pointers[0].RelX, ev.Pointers[0].RelY)
		if c.canUnfadeOnDisplayLocked(displayID) {
			pc.Unfade(TransitionImmediate)
		}
		x, y := pc.Position()
		out.Pointers[0].X = x
		out.Pointers[0].Y = y
		out.CursorX, out.CursorY = x, y
	} else {
		// Gesture: anchor every pointer at the cursor without moving it.
		if c.canUnfadeOnDisplayLocked(displayID) {
			pc.Unfade(TransitionImmediate)
		}
		x, y := pc.Position()
		for i := range out.Pointers {
			out.Pointers[i].X = ev.Pointers[i].X + x
			out.Pointers[i].Y = ev.Pointers[i].Y + y
		}
		out.CursorX, out.CursorY = x, y
	}
	return out
}

func (c *Choreographer) processDrawingTabletLocked(ev *input.MotionEvent) {
	if ev.DisplayID == input.InvalidDisplayID {
		return
	}
	if len(ev.Pointers) == 0 {
		panic(fmt.Sprintf("drawing tablet event without pointers: device %d", ev.DeviceID))
	}
	if len(ev.Pointers) != 1 {
		c.log.Warn("drawing tablet event with more than one pointer",
			"device", ev.DeviceID, "pointers", len(ev.Pointers))
	}

	// Drawing tablets reuse the mouse presentation, one per device.
	pc, ok := c.tabletByDevice[ev.DeviceID]
	if !ok {
		pc = c.makeMouseControllerLocked(ev.DisplayID)
		c.tabletByDevice[ev.DeviceID] = pc
		c.onControllerAddedOrRemovedLocked()
	}

	pc.SetPosition(ev.Pointers[0].X, ev.Pointers[0].Y)
	if ev.Action == input.ActionHoverExit {
		pc.Fade(TransitionImmediate)
		pc.SetIcon(IconStyleNotSpecified)
	} else if c.canUnfadeOnDisplayLocked(ev.DisplayID) {
		pc.Unfade(TransitionImmediate)
	}
}

func (c *Choreographer) processStylusHoverLocked(ev *input.MotionEvent) {
	if ev.DisplayID == input.InvalidDisplayID {
		return
	}
	if len(ev.Pointers) != 1 {
		panic(fmt.Sprintf("only stylus hover events with a single pointer are supported: device %d has %d pointers",
			ev.DeviceID, len(ev.Pointers)))
	}

	pc, ok := c.stylusByDevice[ev.DeviceID]
	if !ok {
		pc = c.makeStylusControllerLocked(ev.DisplayID)
		c.stylusByDevice[ev.DeviceID] = pc
		c.onControllerAddedOrRemovedLocked()
	}

	pc.SetPosition(ev.Pointers[0].X, ev.Pointers[0].Y)
	if ev.Action == input.ActionHoverExit {
		pc.Fade(TransitionImmediate)
		pc.SetIcon(IconStyleNotSpecified)
	} else if c.canUnfadeOnDisplayLocked(ev.DisplayID) {
		pc.Unfade(TransitionImmediate)
	}
}

func (c *Choreographer) processTouchscreenLocked(ev *input.MotionEvent) {
	if ev.DisplayID == input.InvalidDisplayID {
		return
	}

	// Direct touch dismisses the mouse cursor on the same display.
	if pc, ok := c.mouseByDisplay[ev.DisplayID]; ok && ev.Action == input.ActionDown {
		pc.Fade(TransitionGradual)
	}

	if !c.showTouches {
		return
	}

	pc, ok := c.touchByDevice[ev.DeviceID]
	if !ok {
		pc = c.policy.CreateController(KindTouch)
		c.touchByDevice[ev.DeviceID] = pc
		c.onControllerAddedOrRemovedLocked()
	}

	var spots []Spot
	if ev.Action != input.ActionUp && ev.Action != input.ActionCancel {
		for i, p := range ev.Pointers {
			if ev.Action == input.ActionPointerUp && ev.ActionIndex == i {
				continue
			}
			spots = append(spots, Spot{ID: p.ID, X: p.X, Y: p.Y})
		}
	}
	pc.SetSpots(ev.DisplayID, spots)
}

// NotifyKey fades the mouse cursor while the user is typing, then forwards.
func (c *Choreographer) NotifyKey(ev *input.KeyEvent) {
	c.fadeMouseCursorOnKeyPress(ev)
	c.next.NotifyKey(ev)
}

func (c *Choreographer) fadeMouseCursorOnKeyPress(ev *input.KeyEvent) {
	if ev.Action == input.KeyActionUp || input.IsModifierKey(ev.KeyCode) {
		return
	}
	if ev.MetaState&^metaStateAllowingFade != 0 {
		return
	}
	if !c.policy.IsTextInputActive() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	targetDisplay := ev.DisplayID
	if targetDisplay == input.InvalidDisplayID {
		targetDisplay = c.focusedDisplay
	}
	if pc, ok := c.mouseByDisplay[targetDisplay]; ok {
		pc.Fade(TransitionGradual)
	}
}

// NotifyDeviceReset drops the per-device presentations for the reset device
// and forwards. Mouse cursors are shared per display and survive the reset.
func (c *Choreographer) NotifyDeviceReset(ev *input.DeviceResetEvent) {
	c.mu.Lock()
	for _, m := range []map[int32]Controller{c.touchByDevice, c.stylusByDevice, c.tabletByDevice} {
		if pc, ok := m[ev.DeviceID]; ok {
			pc.Release()
			delete(m, ev.DeviceID)
		}
	}
	c.onControllerAddedOrRemovedLocked()
	c.mu.Unlock()

	c.next.NotifyDeviceReset(ev)
}

// NotifyPointerCaptureChanged hides every mouse cursor while capture is
// enabled, then forwards.
func (c *Choreographer) NotifyPointerCaptureChanged(ev *input.PointerCaptureChangedEvent) {
	if ev.Enabled {
		c.mu.Lock()
		for _, pc := range c.mouseByDisplay {
			pc.Fade(TransitionImmediate)
		}
		c.mu.Unlock()
	}
	c.next.NotifyPointerCaptureChanged(ev)
}

func (c *Choreographer) NotifyConfigurationChanged(ev *input.ConfigurationChangedEvent) {
	c.next.NotifyConfigurationChanged(ev)
}

func (c *Choreographer) NotifySwitch(ev *input.SwitchEvent) {
	c.next.NotifySwitch(ev)
}

func (c *Choreographer) NotifySensor(ev *input.SensorEvent) {
	c.next.NotifySensor(ev)
}

func (c *Choreographer) NotifyVibratorState(ev *input.VibratorStateEvent) {
	c.next.NotifyVibratorState(ev)
}

// SetDisplayViewports replaces the viewport list and rebinds live
// controllers to their display's new bounds.
func (c *Choreographer) SetDisplayViewports(viewports []input.DisplayViewport) {
	c.mu.Lock()
	for _, vp := range viewports {
		if pc, ok := c.mouseByDisplay[vp.DisplayID]; ok {
			pc.SetDisplayViewport(vp)
		}
		for deviceID, pc := range c.stylusByDevice {
			if info := c.findDeviceLocked(deviceID); info != nil && info.AssociatedDisplayID == vp.DisplayID {
				pc.SetDisplayViewport(vp)
			}
		}
		for deviceID, pc := range c.tabletByDevice {
			if info := c.findDeviceLocked(deviceID); info != nil && info.AssociatedDisplayID == vp.DisplayID {
				pc.SetDisplayViewport(vp)
			}
		}
	}
	c.viewports = append([]input.DisplayViewport(nil), viewports...)
	change := c.calculateDisplayChangeLocked()
	c.mu.Unlock()

	c.notifyPointerDisplayChange(change)
}

// ViewportForPointerDevice resolves the viewport a pointer device with the
// given display association would draw on.
func (c *Choreographer) ViewportForPointerDevice(associatedDisplayID int32) (input.DisplayViewport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewportLocked(c.targetMouseDisplayLocked(associatedDisplayID))
}

// MouseCursorPosition returns the cursor position on the resolved display,
// or NaNs when no cursor exists there.
func (c *Choreographer) MouseCursorPosition(displayID int32) (x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pc, ok := c.mouseByDisplay[c.targetMouseDisplayLocked(displayID)]; ok {
		return pc.Position()
	}
	return math.NaN(), math.NaN()
}

// SetDefaultMouseDisplay changes where unassociated mice draw their cursor.
func (c *Choreographer) SetDefaultMouseDisplay(displayID int32) {
	c.mu.Lock()
	c.defaultMouseDisplay = displayID
	change := c.updateControllersLocked()
	c.mu.Unlock()

	c.notifyPointerDisplayChange(change)
}

// SetShowTouchesEnabled toggles touch spot presentation.
func (c *Choreographer) SetShowTouchesEnabled(enabled bool) {
	c.mu.Lock()
	if c.showTouches == enabled {
		c.mu.Unlock()
		return
	}
	c.showTouches = enabled
	change := c.updateControllersLocked()
	c.mu.Unlock()

	c.notifyPointerDisplayChange(change)
}

// SetStylusIconEnabled toggles the hovering stylus icon.
func (c *Choreographer) SetStylusIconEnabled(enabled bool) {
	c.mu.Lock()
	if c.stylusIconEnabled == enabled {
		c.mu.Unlock()
		return
	}
	c.stylusIconEnabled = enabled
	change := c.updateControllersLocked()
	c.mu.Unlock()

	c.notifyPointerDisplayChange(change)
}

// SetPointerIcon applies an icon to the presentation owned by deviceID,
// resolving drawing tablet before stylus before mouse. The mouse case also
// requires a live cursor on displayID. Returns false when no presentation
// matched.
func (c *Choreographer) SetPointerIcon(icon PointerIcon, displayID, deviceID int32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deviceID < 0 {
		c.log.Warn("invalid device id for pointer icon", "device", deviceID)
		return false
	}
	info := c.findDeviceLocked(deviceID)
	if info == nil {
		c.log.Warn("no device info found for pointer icon", "device", deviceID)
		return false
	}
	if info.Sources.Has(input.SourceMouse | input.SourceStylus) {
		if pc, ok := c.tabletByDevice[deviceID]; ok {
			setIconForController(icon, pc)
			return true
		}
	}
	if info.Sources.Has(input.SourceStylus) {
		if pc, ok := c.stylusByDevice[deviceID]; ok {
			setIconForController(icon, pc)
			return true
		}
	}
	if info.Sources.Has(input.SourceMouse) {
		if pc, ok := c.mouseByDisplay[displayID]; ok {
			setIconForController(icon, pc)
			return true
		}
	}
	c.log.Warn("no pointer presentation found for icon",
		"device", deviceID, "display", displayID)
	return false
}

func setIconForController(icon PointerIcon, pc Controller) {
	if icon.Sprite != nil {
		pc.SetCustomIcon(*icon.Sprite)
	} else {
		pc.SetIcon(icon.Style)
	}
}

// SetPointerIconVisibility hides or allows pointer presentations on one
// display. Hiding fades live mouse and stylus presentations immediately;
// re-showing is not retroactive, the next event unfades.
func (c *Choreographer) SetPointerIconVisibility(displayID int32, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if visible {
		delete(c.hiddenCursorDisplays, displayID)
		return
	}
	c.hiddenCursorDisplays[displayID] = struct{}{}
	if pc, ok := c.mouseByDisplay[displayID]; ok {
		pc.Fade(TransitionImmediate)
	}
	for _, pc := range c.stylusByDevice {
		if pc.DisplayID() == displayID {
			pc.Fade(TransitionImmediate)
		}
	}
}

// SetFocusedDisplay records the display receiving key events, the fallback
// target for fade-on-typing.
func (c *Choreographer) SetFocusedDisplay(displayID int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focusedDisplay = displayID
}

// Dump returns a human-readable snapshot of choreographer state.
func (c *Choreographer) Dump() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.WriteString("pointer choreographer:\n")
	fmt.Fprintf(&b, dumpIndent+"show touches: %t\n", c.showTouches)
	fmt.Fprintf(&b, dumpIndent+"stylus icon enabled: %t\n", c.stylusIconEnabled)
	fmt.Fprintf(&b, dumpIndent+"default mouse display: %d\n", c.defaultMouseDisplay)
	fmt.Fprintf(&b, dumpIndent+"notified pointer display: %d\n", c.notifiedDisplay)
	fmt.Fprintf(&b, dumpIndent+"focused display: %d\n", c.focusedDisplay)

	b.WriteString(dumpIndent + "mouse controllers:\n")
	for _, displayID := range sortedKeys(c.mouseByDisplay) {
		fmt.Fprintf(&b, dumpIndent+dumpIndent+"display %d: %s\n", displayID, c.mouseByDisplay[displayID].Dump())
	}
	b.WriteString(dumpIndent + "touch controllers:\n")
	for _, deviceID := range sortedKeys(c.touchByDevice) {
		fmt.Fprintf(&b, dumpIndent+dumpIndent+"device %d: %s\n", deviceID, c.touchByDevice[deviceID].Dump())
	}
	b.WriteString(dumpIndent + "stylus controllers:\n")
	for _, deviceID := range sortedKeys(c.stylusByDevice) {
		fmt.Fprintf(&b, dumpIndent+dumpIndent+"device %d: %s\n", deviceID, c.stylusByDevice[deviceID].Dump())
	}
	b.WriteString(dumpIndent + "drawing tablet controllers:\n")
	for _, deviceID := range sortedKeys(c.tabletByDevice) {
		fmt.Fprintf(&b, dumpIndent+dumpIndent+"device %d: %s\n", deviceID, c.tabletByDevice[deviceID].Dump())
	}
	return b.String()
}

func sortedKeys(m map[int32]Controller) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (c *Choreographer) targetMouseDisplayLocked(associatedDisplayID int32) int32 {
	if associatedDisplayID != input.InvalidDisplayID {
		return associatedDisplayID
	}
	return c.defaultMouseDisplay
}

func (c *Choreographer) canUnfadeOnDisplayLocked(displayID int32) bool {
	_, hidden := c.hiddenCursorDisplays[displayID]
	return !hidden
}

func (c *Choreographer) viewportLocked(displayID int32) (input.DisplayViewport, bool) {
	for _, vp := range c.viewports {
		if vp.DisplayID == displayID {
			return vp, true
		}
	}
	return input.DisplayViewport{}, false
}

func (c *Choreographer) findDeviceLocked(deviceID int32) *input.DeviceInfo {
	for i := range c.devices {
		if c.devices[i].ID == deviceID {
			return &c.devices[i]
		}
	}
	return nil
}

func (c *Choreographer) ensureMouseControllerLocked(displayID int32) Controller {
	if pc, ok := c.mouseByDisplay[displayID]; ok {
		return pc
	}
	pc := c.makeMouseControllerLocked(displayID)
	c.mouseByDisplay[displayID] = pc
	c.onControllerAddedOrRemovedLocked()
	return pc
}

func (c *Choreographer) makeMouseControllerLocked(displayID int32) Controller {
	pc := c.policy.CreateController(KindMouse)
	if vp, ok := c.viewportLocked(displayID); ok {
		pc.SetDisplayViewport(vp)
	} else {
		c.log.Warn("no viewport found for display", "display", displayID)
	}
	return pc
}

func (c *Choreographer) makeStylusControllerLocked(displayID int32) Controller {
	pc := c.policy.CreateController(KindStylus)
	if vp, ok := c.viewportLocked(displayID); ok {
		pc.SetDisplayViewport(vp)
	} else {
		c.log.Warn("no viewport found for display", "display", displayID)
	}
	return pc
}

// calculateDisplayChangeLocked decides whether the policy must hear about
// the mouse cursor's display. Only the display identity is compared; the
// recipient queries the position it needs.
func (c *Choreographer) calculateDisplayChangeLocked() *pointerDisplayChange {
	displayID := input.InvalidDisplayID
	x, y := math.NaN(), math.NaN()
	if pc, ok := c.mouseByDisplay[c.defaultMouseDisplay]; ok {
		// The controller's bound display, not the configured one: it is
		// invalid while no viewport exists for the default display.
		displayID = pc.DisplayID()
		x, y = pc.Position()
	}
	if displayID == c.notifiedDisplay {
		return nil
	}
	c.notifiedDisplay = displayID
	return &pointerDisplayChange{displayID: displayID, x: x, y: y}
}

// notifyPointerDisplayChange runs with no choreographer locks held so the
// policy may call back in.
func (c *Choreographer) notifyPointerDisplayChange(change *pointerDisplayChange) {
	if change == nil {
		return
	}
	c.policy.NotifyPointerDisplayChanged(change.displayID, change.x, change.y)
}
