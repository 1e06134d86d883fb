package pointer

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/1broseidon/pointertile/internal/input"
)

// fakeController records every call the choreographer makes and simulates
// cursor movement clamped to the bound viewport.
type fakeController struct {
	mu   sync.Mutex
	kind ControllerKind

	x, y      float64
	viewport  input.DisplayViewport
	hasBounds bool

	visible        bool
	fades, unfades int
	lastTransition Transition

	icon       IconStyle
	iconSet    bool
	customIcon *SpriteIcon

	spotsByDisplay map[int32][]Spot
	skipDisplays   map[int32]struct{}

	released bool
}

func newFakeController(kind ControllerKind) *fakeController {
	return &fakeController{
		kind:           kind,
		spotsByDisplay: make(map[int32][]Spot),
		skipDisplays:   make(map[int32]struct{}),
	}
}

func (f *fakeController) Position() (float64, float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.x, f.y
}

func (f *fakeController) SetPosition(x, y float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x, f.y = x, y
}

func (f *fakeController) Move(dx, dy float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.x += dx
	f.y += dy
	if f.hasBounds {
		f.x = math.Max(float64(f.viewport.X), math.Min(f.x, float64(f.viewport.X+f.viewport.Width-1)))
		f.y = math.Max(float64(f.viewport.Y), math.Min(f.y, float64(f.viewport.Y+f.viewport.Height-1)))
	}
}

func (f *fakeController) Fade(t Transition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = false
	f.fades++
	f.lastTransition = t
}

func (f *fakeController) Unfade(t Transition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = true
	f.unfades++
	f.lastTransition = t
}

func (f *fakeController) SetDisplayViewport(vp input.DisplayViewport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewport = vp
	f.hasBounds = vp.Width > 0 && vp.Height > 0
}

func (f *fakeController) DisplayID() int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasBounds {
		return input.InvalidDisplayID
	}
	return f.viewport.DisplayID
}

func (f *fakeController) SetIcon(style IconStyle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.icon = style
	f.iconSet = true
	f.customIcon = nil
}

func (f *fakeController) SetCustomIcon(icon SpriteIcon) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customIcon = &icon
	f.iconSet = true
}

func (f *fakeController) SetSkipScreenshotFlag(displayID int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skipDisplays[displayID] = struct{}{}
}

func (f *fakeController) ClearSkipScreenshotFlags() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skipDisplays = make(map[int32]struct{})
}

func (f *fakeController) SetSpots(displayID int32, spots []Spot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spotsByDisplay[displayID] = append([]Spot(nil), spots...)
}

func (f *fakeController) ClearSpots() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spotsByDisplay = make(map[int32][]Spot)
}

func (f *fakeController) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
}

func (f *fakeController) Dump() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fmt.Sprintf("%s at (%.1f, %.1f) visible=%t", f.kind, f.x, f.y, f.visible)
}

func (f *fakeController) isVisible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

func (f *fakeController) isReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func (f *fakeController) spots(displayID int32) []Spot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Spot(nil), f.spotsByDisplay[displayID]...)
}

func (f *fakeController) skipsScreenshot(displayID int32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.skipDisplays[displayID]
	return ok
}

type displayNotification struct {
	displayID int32
	x, y      float64
}

// fakePolicy hands out fake controllers and records display notifications.
type fakePolicy struct {
	mu              sync.Mutex
	created         []*fakeController
	notifications   []displayNotification
	textInputActive bool
}

func (p *fakePolicy) CreateController(kind ControllerKind) Controller {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := newFakeController(kind)
	p.created = append(p.created, f)
	return f
}

func (p *fakePolicy) NotifyPointerDisplayChanged(displayID int32, x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, displayNotification{displayID, x, y})
}

func (p *fakePolicy) IsTextInputActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textInputActive
}

func (p *fakePolicy) setTextInputActive(active bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textInputActive = active
}

func (p *fakePolicy) controllers() []*fakeController {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*fakeController(nil), p.created...)
}

func (p *fakePolicy) lastController() *fakeController {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.created) == 0 {
		return nil
	}
	return p.created[len(p.created)-1]
}

func (p *fakePolicy) notified() []displayNotification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]displayNotification(nil), p.notifications...)
}

// recordingListener captures whatever the choreographer forwards.
type recordingListener struct {
	mu       sync.Mutex
	motions  []*input.MotionEvent
	keys     []*input.KeyEvent
	resets   []*input.DeviceResetEvent
	captures []*input.PointerCaptureChangedEvent
	devices  int
}

func (r *recordingListener) NotifyDevicesChanged(*input.DevicesChangedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices++
}
func (r *recordingListener) NotifyConfigurationChanged(*input.ConfigurationChangedEvent) {}
func (r *recordingListener) NotifyKey(ev *input.KeyEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, ev)
}
func (r *recordingListener) NotifyMotion(ev *input.MotionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.motions = append(r.motions, ev)
}
func (r *recordingListener) NotifySwitch(*input.SwitchEvent)               {}
func (r *recordingListener) NotifySensor(*input.SensorEvent)               {}
func (r *recordingListener) NotifyVibratorState(*input.VibratorStateEvent) {}
func (r *recordingListener) NotifyDeviceReset(ev *input.DeviceResetEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, ev)
}
func (r *recordingListener) NotifyPointerCaptureChanged(ev *input.PointerCaptureChangedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures = append(r.captures, ev)
}

func (r *recordingListener) lastMotion() *input.MotionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.motions) == 0 {
		return nil
	}
	return r.motions[len(r.motions)-1]
}

// fakeWindowFeed is a single-subscriber window snapshot publisher.
type fakeWindowFeed struct {
	mu           sync.Mutex
	listener     WindowInfoListener
	windows      []WindowInfo
	seq          uint64
	registered   int
	unregistered int
}

func (f *fakeWindowFeed) Register(l WindowInfoListener) WindowInfoUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = l
	f.registered++
	return WindowInfoUpdate{
		Windows:   append([]WindowInfo(nil), f.windows...),
		Seq:       f.seq,
		Timestamp: time.Now(),
	}
}

func (f *fakeWindowFeed) Unregister(WindowInfoListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = nil
	f.unregistered++
}

func (f *fakeWindowFeed) push(windows []WindowInfo) {
	f.mu.Lock()
	f.windows = append([]WindowInfo(nil), windows...)
	f.seq++
	update := WindowInfoUpdate{
		Windows:   append([]WindowInfo(nil), windows...),
		Seq:       f.seq,
		Timestamp: time.Now(),
	}
	l := f.listener
	f.mu.Unlock()
	if l != nil {
		l.OnWindowInfosChanged(update)
	}
}

func (f *fakeWindowFeed) hasListener() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listener != nil
}
