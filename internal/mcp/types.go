package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	DaemonRunning      bool   `json:"daemon_running"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
	ShowTouches        bool   `json:"show_touches"`
	StylusPointerIcon  bool   `json:"stylus_pointer_icon"`
	DefaultDisplay     int32  `json:"default_display"`
	DefaultDisplayName string `json:"default_display_name,omitempty"`
	DeviceCount        int    `json:"device_count"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// DisplayInfo describes one connected output.
type DisplayInfo struct {
	ID     int32  `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayInfo `json:"displays"`
}

// GetCursorInput is the input for the get_cursor tool.
type GetCursorInput struct {
	DisplayID *int32 `json:"display_id,omitempty" jsonschema:"Display to query. Omit for the default mouse display."`
}

// GetCursorOutput is the output for the get_cursor tool.
type GetCursorOutput struct {
	DisplayID int32   `json:"display_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Valid     bool    `json:"valid"`
}

// SetDefaultDisplayInput is the input for the set_default_display tool.
type SetDefaultDisplayInput struct {
	Display string `json:"display" jsonschema:"required,Output name that owns unassociated mice (e.g. HDMI-1). Empty picks the first output."`
}

// SetDefaultDisplayOutput is the output for the set_default_display tool.
type SetDefaultDisplayOutput struct {
	Display string `json:"display"`
}

// ToggleInput switches a boolean daemon setting.
type ToggleInput struct {
	Enabled bool `json:"enabled" jsonschema:"required,New value for the setting"`
}

// ToggleOutput is the output for toggle tools.
type ToggleOutput struct {
	Enabled bool `json:"enabled"`
}

// SetIconVisibilityInput is the input for the set_icon_visibility tool.
type SetIconVisibilityInput struct {
	DisplayID int32 `json:"display_id" jsonschema:"required,Display whose pointer icons to show or hide"`
	Visible   bool  `json:"visible" jsonschema:"required,false hides pointer icons on the display"`
}

// SetIconVisibilityOutput is the output for the set_icon_visibility tool.
type SetIconVisibilityOutput struct {
	DisplayID int32 `json:"display_id"`
	Visible   bool  `json:"visible"`
}

// MoveCursorInput is the input for the move_cursor tool.
type MoveCursorInput struct {
	DX float64 `json:"dx" jsonschema:"required,Horizontal cursor delta in pixels"`
	DY float64 `json:"dy" jsonschema:"required,Vertical cursor delta in pixels"`
}

// MoveCursorOutput is the output for the move_cursor tool.
type MoveCursorOutput struct {
	DisplayID int32   `json:"display_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// DumpPointersInput is the input for the dump_pointers tool.
type DumpPointersInput struct{}

// DumpPointersOutput is the output for the dump_pointers tool.
type DumpPointersOutput struct {
	Dump string `json:"dump"`
}
