package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/1broseidon/pointertile/internal/input"
	"github.com/1broseidon/pointertile/internal/ipc"
)

type fakeClient struct {
	status    ipc.StatusData
	viewports []ipc.ViewportInfo
	cursorX   float64
	cursorY   float64
	valid     bool
	dump      string

	defaultDisplay string
	showTouches    *bool
	stylusIcon     *bool
	motions        [][2]float64
	hidden         map[int32]bool

	err error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		status: ipc.StatusData{
			DaemonRunning:      true,
			ShowTouches:        false,
			DefaultDisplay:     0,
			DefaultDisplayName: "eDP-1",
			DeviceCount:        1,
		},
		viewports: []ipc.ViewportInfo{
			{ID: 0, Name: "eDP-1", Width: 1920, Height: 1080},
		},
		valid:  true,
		dump:   "pointer choreographer:\n",
		hidden: make(map[int32]bool),
	}
}

func (c *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if c.err != nil {
		return nil, c.err
	}
	status := c.status
	return &status, nil
}

func (c *fakeClient) GetViewports() (*ipc.ViewportsData, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &ipc.ViewportsData{Viewports: c.viewports}, nil
}

func (c *fakeClient) GetCursor(displayID int32) (*ipc.CursorData, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &ipc.CursorData{DisplayID: displayID, X: c.cursorX, Y: c.cursorY, Valid: c.valid}, nil
}

func (c *fakeClient) SetDefaultDisplay(name string) error {
	if c.err != nil {
		return c.err
	}
	c.defaultDisplay = name
	return nil
}

func (c *fakeClient) SetShowTouches(enabled bool) error {
	c.showTouches = &enabled
	return nil
}

func (c *fakeClient) SetStylusIcon(enabled bool) error {
	c.stylusIcon = &enabled
	return nil
}

func (c *fakeClient) SetIconVisibility(displayID int32, visible bool) error {
	c.hidden[displayID] = !visible
	return nil
}

func (c *fakeClient) InjectMotion(deviceID int32, dx, dy float64, displayID int32) error {
	if c.err != nil {
		return c.err
	}
	c.motions = append(c.motions, [2]float64{dx, dy})
	c.cursorX += dx
	c.cursorY += dy
	return nil
}

func (c *fakeClient) Dump() (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.dump, nil
}

func TestGetStatusTool(t *testing.T) {
	client := newFakeClient()
	s := newServerWithClient(client)

	_, out, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("get_status failed: %v", err)
	}
	if !out.DaemonRunning || out.DefaultDisplayName != "eDP-1" || out.DeviceCount != 1 {
		t.Fatalf("unexpected status: %+v", out)
	}
}

func TestGetStatusToolReportsDaemonDown(t *testing.T) {
	client := newFakeClient()
	client.err = &connError{}
	s := newServerWithClient(client)

	_, _, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err == nil || !strings.Contains(err.Error(), "daemon not reachable") {
		t.Fatalf("expected reachability error, got %v", err)
	}
}

type connError struct{}

func (*connError) Error() string { return "connection refused" }

func TestListDisplaysTool(t *testing.T) {
	client := newFakeClient()
	s := newServerWithClient(client)

	_, out, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{})
	if err != nil {
		t.Fatalf("list_displays failed: %v", err)
	}
	if len(out.Displays) != 1 || out.Displays[0].Name != "eDP-1" {
		t.Fatalf("unexpected displays: %+v", out.Displays)
	}
}

func TestGetCursorToolDefaultsToDefaultDisplay(t *testing.T) {
	client := newFakeClient()
	client.cursorX, client.cursorY = 42, 17
	s := newServerWithClient(client)

	_, out, err := s.handleGetCursor(context.Background(), nil, GetCursorInput{})
	if err != nil {
		t.Fatalf("get_cursor failed: %v", err)
	}
	if out.DisplayID != input.InvalidDisplayID || out.X != 42 || out.Y != 17 {
		t.Fatalf("unexpected cursor: %+v", out)
	}
}

func TestMoveCursorToolReturnsNewPosition(t *testing.T) {
	client := newFakeClient()
	client.cursorX, client.cursorY = 10, 10
	s := newServerWithClient(client)

	_, out, err := s.handleMoveCursor(context.Background(), nil, MoveCursorInput{DX: 5, DY: -3})
	if err != nil {
		t.Fatalf("move_cursor failed: %v", err)
	}
	if out.X != 15 || out.Y != 7 {
		t.Fatalf("expected cursor at (15, 7), got (%v, %v)", out.X, out.Y)
	}
	if len(client.motions) != 1 || client.motions[0] != [2]float64{5, -3} {
		t.Fatalf("unexpected injected motions: %v", client.motions)
	}
}

func TestMoveCursorToolErrorsWithoutCursor(t *testing.T) {
	client := newFakeClient()
	client.valid = false
	s := newServerWithClient(client)

	_, _, err := s.handleMoveCursor(context.Background(), nil, MoveCursorInput{DX: 1, DY: 1})
	if err == nil {
		t.Fatal("expected an error when no mouse cursor exists")
	}
}

func TestToggleTools(t *testing.T) {
	client := newFakeClient()
	s := newServerWithClient(client)

	if _, _, err := s.handleSetShowTouches(context.Background(), nil, ToggleInput{Enabled: true}); err != nil {
		t.Fatalf("set_show_touches failed: %v", err)
	}
	if client.showTouches == nil || !*client.showTouches {
		t.Fatal("expected show touches enabled on the daemon")
	}

	if _, _, err := s.handleSetIconVisibility(context.Background(), nil, SetIconVisibilityInput{DisplayID: 1, Visible: false}); err != nil {
		t.Fatalf("set_icon_visibility failed: %v", err)
	}
	if !client.hidden[1] {
		t.Fatal("expected display 1 icons hidden")
	}
}
