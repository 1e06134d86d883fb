package daemon

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/pointertile/internal/config"
	"github.com/1broseidon/pointertile/internal/input"
	"github.com/1broseidon/pointertile/internal/platform"
	"github.com/1broseidon/pointertile/internal/pointer"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBackend struct {
	mu        sync.Mutex
	viewports []input.DisplayViewport
	windows   []platform.Window
	focused   int32
	warps     [][2]int
	panicNext bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		viewports: []input.DisplayViewport{
			{DisplayID: 0, Name: "eDP-1", X: 0, Y: 0, Width: 1920, Height: 1080},
			{DisplayID: 1, Name: "HDMI-1", X: 1920, Y: 0, Width: 1920, Height: 1080},
		},
		focused: input.InvalidDisplayID,
	}
}

func (b *fakeBackend) Viewports() ([]input.DisplayViewport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]input.DisplayViewport(nil), b.viewports...), nil
}

func (b *fakeBackend) Windows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.panicNext {
		b.panicNext = false
		panic("window query blew up")
	}
	return append([]platform.Window(nil), b.windows...), nil
}

func (b *fakeBackend) FocusedDisplay() (int32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focused, nil
}

func (b *fakeBackend) CursorPosition() (int, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.warps) == 0 {
		return 0, 0, nil
	}
	last := b.warps[len(b.warps)-1]
	return last[0], last[1], nil
}

func (b *fakeBackend) WarpCursor(x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.warps = append(b.warps, [2]int{x, y})
	return nil
}

func (b *fakeBackend) EventLoop()     {}
func (b *fakeBackend) StopEventLoop() {}
func (b *fakeBackend) Disconnect()    {}

func (b *fakeBackend) lastWarp() (int, int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.warps) == 0 {
		return 0, 0, false
	}
	last := b.warps[len(b.warps)-1]
	return last[0], last[1], true
}

// startDaemon runs the initial synchronization steps without entering the
// polling loop.
func startDaemon(t *testing.T, cfg *config.Config, backend *fakeBackend) *Daemon {
	t.Helper()
	d := New(cfg, backend, testLogger())
	d.poller.PollNow()
	if err := d.SetDefaultDisplay(cfg.DefaultMouseDisplay); err != nil {
		t.Fatalf("SetDefaultDisplay failed: %v", err)
	}
	d.ch.SetShowTouchesEnabled(cfg.ShowTouches)
	d.ch.SetStylusIconEnabled(cfg.StylusPointerIcon)
	d.registerVirtualPointer()
	return d
}

func TestDaemonRegistersVirtualPointer(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	status := d.Status()
	if status.DeviceCount != 1 {
		t.Fatalf("expected 1 device, got %d", status.DeviceCount)
	}
	if status.DefaultDisplay != 0 || status.DefaultDisplayName != "eDP-1" {
		t.Fatalf("expected default display eDP-1 (0), got %q (%d)",
			status.DefaultDisplayName, status.DefaultDisplay)
	}

	x, y, valid := d.CursorPosition(input.InvalidDisplayID)
	if !valid {
		t.Fatal("expected a mouse cursor on the default display")
	}
	if x != 0 || y != 0 {
		t.Fatalf("expected cursor at origin, got (%v, %v)", x, y)
	}
	if !strings.Contains(d.Dump(), "display 0: mouse at") {
		t.Fatalf("virtual pointer not presented as a mouse:\n%s", d.Dump())
	}
}

func TestInjectMotionMovesHardwareCursor(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	d.InjectMotion(0, 50, 40, input.InvalidDisplayID)

	x, y, valid := d.CursorPosition(input.InvalidDisplayID)
	if !valid || x != 50 || y != 40 {
		t.Fatalf("expected cursor at (50, 40), got (%v, %v) valid=%t", x, y, valid)
	}
	wx, wy, ok := backend.lastWarp()
	if !ok || wx != 50 || wy != 40 {
		t.Fatalf("expected hardware warp to (50, 40), got (%d, %d) ok=%t", wx, wy, ok)
	}
}

func TestInjectMotionClampsToViewport(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	d.InjectMotion(0, 5000, 5000, input.InvalidDisplayID)

	x, y, valid := d.CursorPosition(input.InvalidDisplayID)
	if !valid || x != 1919 || y != 1079 {
		t.Fatalf("expected cursor clamped to (1919, 1079), got (%v, %v)", x, y)
	}
}

func TestSetDefaultDisplayByName(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	if err := d.SetDefaultDisplay("HDMI-1"); err != nil {
		t.Fatalf("SetDefaultDisplay failed: %v", err)
	}
	status := d.Status()
	if status.DefaultDisplay != 1 || status.DefaultDisplayName != "HDMI-1" {
		t.Fatalf("expected HDMI-1 (1), got %q (%d)", status.DefaultDisplayName, status.DefaultDisplay)
	}

	if err := d.SetDefaultDisplay("DP-9"); err == nil {
		t.Fatal("expected error for unknown output name")
	}
}

func TestInjectKeyFadesCursorWhileTyping(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	d.InjectMotion(0, 50, 40, input.InvalidDisplayID)
	if !strings.Contains(d.Dump(), "visible=true") {
		t.Fatal("expected cursor visible after motion")
	}

	d.InjectKey(0, 30, 0, 0)
	if !strings.Contains(d.Dump(), "visible=false") {
		t.Fatal("expected cursor faded after typing")
	}
}

func TestInjectKeyIgnoredWhenFadeDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	off := false
	cfg.FadeOnTyping = &off
	backend := newFakeBackend()
	d := startDaemon(t, cfg, backend)

	d.InjectMotion(0, 50, 40, input.InvalidDisplayID)
	d.InjectKey(0, 30, 0, 0)
	if !strings.Contains(d.Dump(), "visible=true") {
		t.Fatal("expected cursor to stay visible with fade-on-typing off")
	}
}

func TestReloadAppliesToggles(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	next := config.DefaultConfig()
	next.ShowTouches = true
	next.StylusPointerIcon = true
	d.Reload(next)

	status := d.Status()
	if !status.ShowTouches || !status.StylusPointerIcon {
		t.Fatalf("expected toggles applied after reload, got %+v", status)
	}
}

func TestViewportsReportOutputs(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	infos := d.Viewports()
	if len(infos) != 2 {
		t.Fatalf("expected 2 viewports, got %d", len(infos))
	}
	if infos[1].Name != "HDMI-1" || infos[1].X != 1920 {
		t.Fatalf("unexpected second viewport: %+v", infos[1])
	}
}

func TestPollerPropagatesFocusChange(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	backend.mu.Lock()
	backend.focused = 1
	backend.mu.Unlock()
	d.poller.PollNow()

	if !strings.Contains(d.Dump(), "focused display: 1") {
		t.Fatal("expected focused display to follow the backend")
	}
}

func TestPollerSurvivesBackendPanic(t *testing.T) {
	backend := newFakeBackend()
	d := startDaemon(t, config.DefaultConfig(), backend)

	backend.mu.Lock()
	backend.panicNext = true
	backend.mu.Unlock()
	d.poller.PollNow()

	d.poller.PollNow()
	if len(d.Viewports()) != 2 {
		t.Fatal("expected polling to continue after a panic")
	}
}

type recordingWindowListener struct {
	mu      sync.Mutex
	updates []pointer.WindowInfoUpdate
}

func (l *recordingWindowListener) OnWindowInfosChanged(update pointer.WindowInfoUpdate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, update)
}

func (l *recordingWindowListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.updates)
}

func (l *recordingWindowListener) last() []pointer.WindowInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.updates) == 0 {
		return nil
	}
	return l.updates[len(l.updates)-1].Windows
}

func (l *recordingWindowListener) lastUpdate() pointer.WindowInfoUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.updates) == 0 {
		return pointer.WindowInfoUpdate{}
	}
	return l.updates[len(l.updates)-1]
}

func TestWindowFeedDecoratesSensitiveClasses(t *testing.T) {
	feed := NewWindowFeed([]string{"keepassxc"})
	listener := &recordingWindowListener{}
	if got := feed.Register(listener); len(got.Windows) != 0 {
		t.Fatalf("expected empty initial snapshot, got %d windows", len(got.Windows))
	}

	feed.Update([]platform.Window{
		{ID: 1, Class: "keepassxc", Title: "Passwords", DisplayID: 0},
		{ID: 2, Class: "firefox", Title: "Browser", DisplayID: 1},
	})

	if listener.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", listener.count())
	}
	snapshot := listener.last()
	if !snapshot[0].Sensitive || snapshot[1].Sensitive {
		t.Fatalf("expected only the password manager marked sensitive: %+v", snapshot)
	}
}

func TestWindowFeedDedupesIdenticalSnapshots(t *testing.T) {
	feed := NewWindowFeed(nil)
	listener := &recordingWindowListener{}
	feed.Register(listener)

	windows := []platform.Window{{ID: 1, Class: "firefox", Title: "Browser", DisplayID: 0}}
	feed.Update(windows)
	feed.Update(windows)
	if listener.count() != 1 {
		t.Fatalf("expected identical snapshot to be deduped, got %d notifications", listener.count())
	}

	windows[0].Title = "Browser - page"
	feed.Update(windows)
	if listener.count() != 2 {
		t.Fatalf("expected changed snapshot to notify, got %d notifications", listener.count())
	}
}

func TestWindowFeedSensitiveClassReloadRescores(t *testing.T) {
	feed := NewWindowFeed(nil)
	listener := &recordingWindowListener{}
	feed.Register(listener)

	feed.Update([]platform.Window{{ID: 1, Class: "bitwarden", DisplayID: 0}})
	if listener.last()[0].Sensitive {
		t.Fatal("expected no sensitive windows before reload")
	}

	feed.SetSensitiveClasses([]string{"bitwarden"})
	if !listener.last()[0].Sensitive {
		t.Fatal("expected window re-scored sensitive after reload")
	}
}

func TestWindowFeedBatchesCarrySequenceAndDisplays(t *testing.T) {
	feed := NewWindowFeed(nil)
	listener := &recordingWindowListener{}
	feed.Register(listener)

	displays := []pointer.WindowDisplayInfo{{DisplayID: 0, Width: 1920, Height: 1080}}
	feed.SetDisplays(displays)
	feed.Update([]platform.Window{{ID: 1, Class: "firefox", DisplayID: 0}})

	update := listener.lastUpdate()
	if update.Seq != 2 {
		t.Fatalf("expected sequence 2 after two pushes, got %d", update.Seq)
	}
	if len(update.Displays) != 1 || update.Displays[0].Width != 1920 {
		t.Fatalf("expected display metadata in batch, got %+v", update.Displays)
	}
	if update.Timestamp.IsZero() {
		t.Fatal("expected a capture timestamp on the batch")
	}

	feed.SetDisplays(displays)
	if listener.count() != 2 {
		t.Fatalf("expected identical display set to be deduped, got %d notifications", listener.count())
	}
}

func TestWindowFeedUnregisterStopsCallbacks(t *testing.T) {
	feed := NewWindowFeed(nil)
	listener := &recordingWindowListener{}
	feed.Register(listener)
	feed.Unregister(listener)

	feed.Update([]platform.Window{{ID: 1, Class: "firefox", DisplayID: 0}})
	if listener.count() != 0 {
		t.Fatalf("expected no notifications after unregister, got %d", listener.count())
	}
}

func TestRendererMouseControllerWarpsOnlyMouseKind(t *testing.T) {
	backend := newFakeBackend()
	r := NewRenderer(backend, testLogger())

	touch := r.NewController(pointer.KindTouch)
	touch.SetPosition(10, 10)
	if _, _, ok := backend.lastWarp(); ok {
		t.Fatal("touch presentation must not warp the hardware cursor")
	}

	mouse := r.NewController(pointer.KindMouse)
	mouse.SetDisplayViewport(input.DisplayViewport{DisplayID: 0, Width: 1920, Height: 1080})
	mouse.SetPosition(10, 10)
	if wx, wy, ok := backend.lastWarp(); !ok || wx != 10 || wy != 10 {
		t.Fatalf("expected mouse warp to (10, 10), got (%d, %d) ok=%t", wx, wy, ok)
	}
}

func TestRendererReleaseStopsWarping(t *testing.T) {
	backend := newFakeBackend()
	r := NewRenderer(backend, testLogger())

	mouse := r.NewController(pointer.KindMouse)
	mouse.SetDisplayViewport(input.DisplayViewport{DisplayID: 0, Width: 1920, Height: 1080})
	mouse.SetPosition(10, 10)
	mouse.Release()

	before := len(backend.warps)
	mouse.SetPosition(20, 20)
	if len(backend.warps) != before {
		t.Fatal("expected no warps after release")
	}
}
