package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/pointertile/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) sendPayload(command CommandType, payload interface{}) (*Response, error) {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(&Request{Command: CommandReload})
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// GetViewports retrieves the display topology
func (c *Client) GetViewports() (*ViewportsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetViewports})
	if err != nil {
		return nil, err
	}

	var data ViewportsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse viewports data: %w", err)
	}
	return &data, nil
}

// GetCursor retrieves the mouse cursor position on a display. Pass -1 for
// the default mouse display.
func (c *Client) GetCursor(displayID int32) (*CursorData, error) {
	resp, err := c.sendPayload(CommandGetCursor, CursorPayload{DisplayID: displayID})
	if err != nil {
		return nil, err
	}

	var data CursorData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse cursor data: %w", err)
	}
	return &data, nil
}

// SetDefaultDisplay changes the output owning unassociated mice.
func (c *Client) SetDefaultDisplay(name string) error {
	_, err := c.sendPayload(CommandSetDefaultDisplay, SetDefaultDisplayPayload{Display: name})
	return err
}

// SetShowTouches toggles touch spot rendering.
func (c *Client) SetShowTouches(enabled bool) error {
	_, err := c.sendPayload(CommandSetShowTouches, TogglePayload{Enabled: enabled})
	return err
}

// SetStylusIcon toggles the hovering stylus icon.
func (c *Client) SetStylusIcon(enabled bool) error {
	_, err := c.sendPayload(CommandSetStylusIcon, TogglePayload{Enabled: enabled})
	return err
}

// SetIconVisibility hides or shows pointer icons on a display.
func (c *Client) SetIconVisibility(displayID int32, visible bool) error {
	_, err := c.sendPayload(CommandSetIconVisibility, IconVisibilityPayload{DisplayID: displayID, Visible: visible})
	return err
}

// SetPointerIcon applies a system icon style to a device's pointer.
func (c *Client) SetPointerIcon(style, displayID, deviceID int32) error {
	_, err := c.sendPayload(CommandSetPointerIcon, PointerIconPayload{Style: style, DisplayID: displayID, DeviceID: deviceID})
	return err
}

// SetFocusedDisplay records the display receiving key events.
func (c *Client) SetFocusedDisplay(displayID int32) error {
	_, err := c.sendPayload(CommandSetFocusedDisplay, FocusPayload{DisplayID: displayID})
	return err
}

// InjectMotion feeds a synthetic relative mouse motion into the pipeline.
func (c *Client) InjectMotion(deviceID int32, dx, dy float64, displayID int32) error {
	_, err := c.sendPayload(CommandInjectMotion, MotionPayload{DeviceID: deviceID, DX: dx, DY: dy, DisplayID: displayID})
	return err
}

// InjectKey feeds a synthetic key press into the pipeline.
func (c *Client) InjectKey(deviceID, keyCode int32, metaState uint32, displayID int32) error {
	_, err := c.sendPayload(CommandInjectKey, KeyPayload{DeviceID: deviceID, KeyCode: keyCode, MetaState: metaState, DisplayID: displayID})
	return err
}

// Dump retrieves the daemon's internal state dump.
func (c *Client) Dump() (string, error) {
	resp, err := c.sendRequest(&Request{Command: CommandDump})
	if err != nil {
		return "", err
	}

	var data DumpData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse dump data: %w", err)
	}
	return data.Dump, nil
}
