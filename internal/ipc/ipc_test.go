package ipc

import (
	"sync"
	"testing"
)

type fakeDaemon struct {
	mu             sync.Mutex
	showTouches    bool
	stylusIcon     bool
	defaultDisplay string
	focusedDisplay int32
	motions        int
	keys           int
}

func (d *fakeDaemon) Status() StatusData {
	d.mu.Lock()
	defer d.mu.Unlock()
	return StatusData{ShowTouches: d.showTouches, StylusPointerIcon: d.stylusIcon, DeviceCount: 2}
}

func (d *fakeDaemon) Viewports() []ViewportInfo {
	return []ViewportInfo{{ID: 0, Name: "eDP-1", Width: 1920, Height: 1080}}
}

func (d *fakeDaemon) CursorPosition(displayID int32) (float64, float64, bool) {
	return 12, 34, true
}

func (d *fakeDaemon) SetDefaultDisplay(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defaultDisplay = name
	return nil
}

func (d *fakeDaemon) SetShowTouches(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.showTouches = enabled
}

func (d *fakeDaemon) SetStylusIcon(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stylusIcon = enabled
}

func (d *fakeDaemon) SetIconVisibility(displayID int32, visible bool) {}

func (d *fakeDaemon) SetPointerIcon(style, displayID, deviceID int32) bool {
	return deviceID >= 0
}

func (d *fakeDaemon) SetFocusedDisplay(displayID int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focusedDisplay = displayID
}

func (d *fakeDaemon) InjectMotion(deviceID int32, dx, dy float64, displayID int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.motions++
}

func (d *fakeDaemon) InjectKey(deviceID, keyCode int32, metaState uint32, displayID int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys++
}

func (d *fakeDaemon) Dump() string { return "pointer choreographer:\n" }

func startServer(t *testing.T) (*fakeDaemon, chan struct{}) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	daemon := &fakeDaemon{}
	reloadChan := make(chan struct{}, 1)
	srv, err := NewServer(daemon, reloadChan)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return daemon, reloadChan
}

func TestClientServerRoundTrip(t *testing.T) {
	daemon, reloadChan := startServer(t)
	client := NewClient()

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || status.DeviceCount != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}

	viewports, err := client.GetViewports()
	if err != nil {
		t.Fatalf("GetViewports: %v", err)
	}
	if len(viewports.Viewports) != 1 || viewports.Viewports[0].Name != "eDP-1" {
		t.Fatalf("unexpected viewports: %+v", viewports)
	}

	cursor, err := client.GetCursor(-1)
	if err != nil {
		t.Fatalf("GetCursor: %v", err)
	}
	if !cursor.Valid || cursor.X != 12 || cursor.Y != 34 {
		t.Fatalf("unexpected cursor: %+v", cursor)
	}

	if err := client.SetShowTouches(true); err != nil {
		t.Fatalf("SetShowTouches: %v", err)
	}
	if err := client.SetDefaultDisplay("HDMI-1"); err != nil {
		t.Fatalf("SetDefaultDisplay: %v", err)
	}
	if err := client.SetFocusedDisplay(3); err != nil {
		t.Fatalf("SetFocusedDisplay: %v", err)
	}
	if err := client.InjectMotion(1, 5, 6, -1); err != nil {
		t.Fatalf("InjectMotion: %v", err)
	}
	if err := client.InjectKey(1, 0x41, 0, -1); err != nil {
		t.Fatalf("InjectKey: %v", err)
	}

	daemon.mu.Lock()
	defer daemon.mu.Unlock()
	if !daemon.showTouches || daemon.defaultDisplay != "HDMI-1" || daemon.focusedDisplay != 3 {
		t.Fatalf("commands not applied: %+v", daemon)
	}
	if daemon.motions != 1 || daemon.keys != 1 {
		t.Fatalf("injections not applied: motions=%d keys=%d", daemon.motions, daemon.keys)
	}

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	select {
	case <-reloadChan:
	default:
		t.Fatalf("reload not signaled")
	}
}

func TestSetPointerIconErrorsSurfaceToClient(t *testing.T) {
	startServer(t)
	client := NewClient()

	if err := client.SetPointerIcon(1, 0, -1); err == nil {
		t.Fatalf("expected error for unmatched pointer")
	}
	if err := client.SetPointerIcon(1, 0, 4); err != nil {
		t.Fatalf("SetPointerIcon: %v", err)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	startServer(t)
	client := NewClient()

	dump, err := client.Dump()
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if dump == "" {
		t.Fatalf("empty dump")
	}
}
