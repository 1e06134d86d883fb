// Package ipc implements the unix-socket control protocol between the
// pointertile daemon and its clients. Requests and responses are single JSON
// lines.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload            CommandType = "RELOAD"
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandGetViewports      CommandType = "GET_VIEWPORTS"
	CommandGetCursor         CommandType = "GET_CURSOR"
	CommandSetDefaultDisplay CommandType = "SET_DEFAULT_DISPLAY"
	CommandSetShowTouches    CommandType = "SET_SHOW_TOUCHES"
	CommandSetStylusIcon     CommandType = "SET_STYLUS_ICON"
	CommandSetIconVisibility CommandType = "SET_ICON_VISIBILITY"
	CommandSetPointerIcon    CommandType = "SET_POINTER_ICON"
	CommandSetFocusedDisplay CommandType = "SET_FOCUSED_DISPLAY"
	CommandInjectMotion      CommandType = "INJECT_MOTION"
	CommandInjectKey         CommandType = "INJECT_KEY"
	CommandDump              CommandType = "DUMP"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning     bool   `json:"daemon_running"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	ShowTouches       bool   `json:"show_touches"`
	StylusPointerIcon bool   `json:"stylus_pointer_icon"`
	DefaultDisplay    int32  `json:"default_display"`
	DefaultDisplayName string `json:"default_display_name,omitempty"`
	DeviceCount       int    `json:"device_count"`
}

// ViewportInfo represents one display output
type ViewportInfo struct {
	ID     int32  `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ViewportsData represents the data returned by GET_VIEWPORTS
type ViewportsData struct {
	Viewports []ViewportInfo `json:"viewports"`
}

// CursorPayload selects the display for GET_CURSOR. -1 resolves to the
// default mouse display.
type CursorPayload struct {
	DisplayID int32 `json:"display_id"`
}

// CursorData represents the data returned by GET_CURSOR
type CursorData struct {
	DisplayID int32   `json:"display_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Valid     bool    `json:"valid"`
}

// SetDefaultDisplayPayload names the output that owns unassociated mice,
// e.g. "HDMI-1". Empty picks the first output.
type SetDefaultDisplayPayload struct {
	Display string `json:"display"`
}

// TogglePayload carries a boolean switch.
type TogglePayload struct {
	Enabled bool `json:"enabled"`
}

// IconVisibilityPayload hides or shows pointer icons on one display.
type IconVisibilityPayload struct {
	DisplayID int32 `json:"display_id"`
	Visible   bool  `json:"visible"`
}

// PointerIconPayload applies a system icon style to a device's pointer.
type PointerIconPayload struct {
	Style     int32 `json:"style"`
	DisplayID int32 `json:"display_id"`
	DeviceID  int32 `json:"device_id"`
}

// FocusPayload records the focused display.
type FocusPayload struct {
	DisplayID int32 `json:"display_id"`
}

// MotionPayload injects a synthetic relative mouse motion.
type MotionPayload struct {
	DeviceID  int32   `json:"device_id"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	DisplayID int32   `json:"display_id"`
}

// KeyPayload injects a synthetic key press.
type KeyPayload struct {
	DeviceID  int32  `json:"device_id"`
	KeyCode   int32  `json:"key_code"`
	MetaState uint32 `json:"meta_state"`
	DisplayID int32  `json:"display_id"`
}

// DumpData represents the data returned by DUMP
type DumpData struct {
	Dump string `json:"dump"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
