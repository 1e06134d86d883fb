// Package daemon wires the pointer choreographer to a live window system:
// it polls display topology and window metadata, renders pointer
// presentations through the platform backend, and serves the IPC surface.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/1broseidon/pointertile/internal/config"
	"github.com/1broseidon/pointertile/internal/input"
	"github.com/1broseidon/pointertile/internal/ipc"
	"github.com/1broseidon/pointertile/internal/platform"
	"github.com/1broseidon/pointertile/internal/pointer"
)

// virtualPointerID identifies the synthetic relative mouse device the daemon
// registers at startup. X11 multiplexes all physical pointers into one core
// pointer, so one virtual device stands in for all of them.
const virtualPointerID int32 = 2

// Daemon owns the running state of pointertile. It implements pointer.Policy
// for the choreographer and ipc.Daemon for the control socket.
type Daemon struct {
	backend  platform.Backend
	renderer *Renderer
	feed     *WindowFeed
	ch       *pointer.Choreographer
	poller   *Poller
	logger   *slog.Logger

	mu                 sync.Mutex
	cfg                *config.Config
	devices            []input.DeviceInfo
	defaultDisplayID   int32
	defaultDisplayName string
	showTouches        bool
	stylusIcon         bool
	mouseDisplay       int32
}

func New(cfg *config.Config, backend platform.Backend, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{
		backend:          backend,
		renderer:         NewRenderer(backend, logger),
		feed:             NewWindowFeed(cfg.SensitiveWindowClasses),
		logger:           logger,
		cfg:              cfg,
		defaultDisplayID: input.InvalidDisplayID,
		showTouches:      cfg.ShowTouches,
		stylusIcon:       cfg.StylusPointerIcon,
		mouseDisplay:     input.InvalidDisplayID,
	}
	d.ch = pointer.New(newEventSink(logger), d, d.feed, logger)
	d.poller = NewPoller(PollerConfig{
		Backend:  backend,
		Ch:       d.ch,
		Feed:     d.feed,
		Interval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		Logger:   logger,
	})
	return d
}

// Choreographer exposes the event pipeline for hotkey handlers and tests.
func (d *Daemon) Choreographer() *pointer.Choreographer {
	return d.ch
}

// Run performs the initial synchronization and then polls until the context
// is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.poller.PollNow()

	d.mu.Lock()
	cfg := d.cfg
	d.mu.Unlock()

	if err := d.SetDefaultDisplay(cfg.DefaultMouseDisplay); err != nil {
		d.logger.Warn("default display unavailable", "display", cfg.DefaultMouseDisplay, "error", err)
	}
	d.ch.SetShowTouchesEnabled(cfg.ShowTouches)
	d.ch.SetStylusIconEnabled(cfg.StylusPointerIcon)
	d.registerVirtualPointer()

	err := d.poller.Run(ctx)
	d.ch.Close()
	if err == context.Canceled {
		return nil
	}
	return err
}

func (d *Daemon) registerVirtualPointer() {
	devices := []input.DeviceInfo{{
		ID:                  virtualPointerID,
		Name:                "virtual core pointer",
		Sources:             input.SourceMouse | input.SourceMouseRelative,
		AssociatedDisplayID: input.InvalidDisplayID,
		Enabled:             true,
	}}
	d.mu.Lock()
	d.devices = devices
	d.mu.Unlock()
	d.ch.NotifyDevicesChanged(&input.DevicesChangedEvent{Devices: devices})
}

// Reload applies a freshly loaded configuration to the running daemon.
func (d *Daemon) Reload(cfg *config.Config) {
	d.mu.Lock()
	d.cfg = cfg
	d.showTouches = cfg.ShowTouches
	d.stylusIcon = cfg.StylusPointerIcon
	d.mu.Unlock()

	d.feed.SetSensitiveClasses(cfg.SensitiveWindowClasses)
	d.ch.SetShowTouchesEnabled(cfg.ShowTouches)
	d.ch.SetStylusIconEnabled(cfg.StylusPointerIcon)
	if err := d.SetDefaultDisplay(cfg.DefaultMouseDisplay); err != nil {
		d.logger.Warn("default display unavailable", "display", cfg.DefaultMouseDisplay, "error", err)
	}
	d.logger.Info("configuration reloaded")
}

// CreateController builds a presentation for the choreographer.
func (d *Daemon) CreateController(kind pointer.ControllerKind) pointer.Controller {
	return d.renderer.NewController(kind)
}

// NotifyPointerDisplayChanged records which display hosts the mouse cursor.
func (d *Daemon) NotifyPointerDisplayChanged(displayID int32, x, y float64) {
	d.mu.Lock()
	d.mouseDisplay = displayID
	d.mu.Unlock()
	d.logger.Debug("pointer display changed", "display", displayID, "x", x, "y", y)
}

// IsTextInputActive gates fade-on-typing. X11 offers no reliable signal for
// an active text field, so this follows the configuration switch.
func (d *Daemon) IsTextInputActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.FadeOnTypingEnabled()
}

func (d *Daemon) Status() ipc.StatusData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ipc.StatusData{
		ShowTouches:        d.showTouches,
		StylusPointerIcon:  d.stylusIcon,
		DefaultDisplay:     d.defaultDisplayID,
		DefaultDisplayName: d.defaultDisplayName,
		DeviceCount:        len(d.devices),
	}
}

func (d *Daemon) Viewports() []ipc.ViewportInfo {
	viewports, err := d.backend.Viewports()
	if err != nil {
		d.logger.Warn("failed to query viewports", "error", err)
		return nil
	}
	infos := make([]ipc.ViewportInfo, 0, len(viewports))
	for _, vp := range viewports {
		infos = append(infos, ipc.ViewportInfo{
			ID:     vp.DisplayID,
			Name:   vp.Name,
			X:      vp.X,
			Y:      vp.Y,
			Width:  vp.Width,
			Height: vp.Height,
		})
	}
	return infos
}

func (d *Daemon) CursorPosition(displayID int32) (x, y float64, valid bool) {
	if displayID == input.InvalidDisplayID {
		d.mu.Lock()
		displayID = d.defaultDisplayID
		d.mu.Unlock()
	}
	x, y = d.ch.MouseCursorPosition(displayID)
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, 0, false
	}
	return x, y, true
}

// SetDefaultDisplay resolves an output name to a display and makes it the
// home of unassociated mice. Empty picks the first output.
func (d *Daemon) SetDefaultDisplay(name string) error {
	viewports, err := d.backend.Viewports()
	if err != nil {
		return fmt.Errorf("failed to query viewports: %w", err)
	}
	if len(viewports) == 0 {
		return fmt.Errorf("no displays available")
	}
	target := viewports[0]
	if name != "" {
		found := false
		for _, vp := range viewports {
			if vp.Name == name {
				target = vp
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no display named %q", name)
		}
	}

	d.mu.Lock()
	d.defaultDisplayID = target.DisplayID
	d.defaultDisplayName = target.Name
	d.mu.Unlock()

	d.ch.SetDefaultMouseDisplay(target.DisplayID)
	return nil
}

func (d *Daemon) SetShowTouches(enabled bool) {
	d.mu.Lock()
	d.showTouches = enabled
	d.mu.Unlock()
	d.ch.SetShowTouchesEnabled(enabled)
}

func (d *Daemon) SetStylusIcon(enabled bool) {
	d.mu.Lock()
	d.stylusIcon = enabled
	d.mu.Unlock()
	d.ch.SetStylusIconEnabled(enabled)
}

func (d *Daemon) SetIconVisibility(displayID int32, visible bool) {
	d.ch.SetPointerIconVisibility(displayID, visible)
}

func (d *Daemon) SetPointerIcon(style, displayID, deviceID int32) bool {
	return d.ch.SetPointerIcon(pointer.PointerIcon{Style: pointer.IconStyle(style)}, displayID, deviceID)
}

func (d *Daemon) SetFocusedDisplay(displayID int32) {
	d.ch.SetFocusedDisplay(displayID)
}

// InjectMotion feeds a synthetic relative mouse motion through the pipeline.
func (d *Daemon) InjectMotion(deviceID int32, dx, dy float64, displayID int32) {
	if deviceID <= 0 {
		deviceID = virtualPointerID
	}
	ev := input.NewMotionEvent(deviceID, input.SourceMouse|input.SourceMouseRelative, input.ActionMove)
	ev.DisplayID = displayID
	ev.Pointers = []input.Pointer{{Tool: input.ToolTypeMouse, RelX: dx, RelY: dy}}
	d.ch.NotifyMotion(ev)
}

// InjectKey feeds a synthetic key press through the pipeline, exercising
// fade-on-typing.
func (d *Daemon) InjectKey(deviceID, keyCode int32, metaState uint32, displayID int32) {
	if deviceID <= 0 {
		deviceID = virtualPointerID
	}
	d.ch.NotifyKey(&input.KeyEvent{
		DeviceID:  deviceID,
		Action:    input.KeyActionDown,
		KeyCode:   keyCode,
		MetaState: input.MetaState(metaState),
		DisplayID: displayID,
	})
}

func (d *Daemon) Dump() string {
	return d.ch.Dump()
}

// ToggleShowTouches flips touch spot rendering, for hotkey bindings.
func (d *Daemon) ToggleShowTouches() {
	d.mu.Lock()
	next := !d.showTouches
	d.mu.Unlock()
	d.SetShowTouches(next)
	d.logger.Info("show touches toggled", "enabled", next)
}

// ToggleStylusIcon flips the hovering stylus icon, for hotkey bindings.
func (d *Daemon) ToggleStylusIcon() {
	d.mu.Lock()
	next := !d.stylusIcon
	d.mu.Unlock()
	d.SetStylusIcon(next)
	d.logger.Info("stylus icon toggled", "enabled", next)
}
