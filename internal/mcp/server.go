// Package mcp exposes the pointertile daemon over the Model Context
// Protocol so automation clients can inspect and steer pointer routing.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pointertile/internal/ipc"
)

const (
	ServerName    = "pointertile"
	ServerVersion = "0.1.0"
)

// controlClient is the subset of the IPC client the tools use. Tests swap in
// a fake.
type controlClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetViewports() (*ipc.ViewportsData, error)
	GetCursor(displayID int32) (*ipc.CursorData, error)
	SetDefaultDisplay(name string) error
	SetShowTouches(enabled bool) error
	SetStylusIcon(enabled bool) error
	SetIconVisibility(displayID int32, visible bool) error
	InjectMotion(deviceID int32, dx, dy float64, displayID int32) error
	Dump() (string, error)
}

// Server bridges MCP tool calls to the daemon's control socket.
type Server struct {
	mcpServer *mcpsdk.Server
	client    controlClient
}

// NewServer creates an MCP server talking to the local daemon.
func NewServer() *Server {
	return newServerWithClient(ipc.NewClient())
}

func newServerWithClient(client controlClient) *Server {
	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get the pointertile daemon status: uptime, show-touches and stylus icon toggles, default mouse display, and connected device count.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List connected displays with their names and pixel geometry.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_cursor",
		Description: "Get the mouse cursor position on a display. Omit display_id to use the default mouse display. valid=false means no mouse cursor exists there.",
	}, s.handleGetCursor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_default_display",
		Description: "Set the output (by name, e.g. HDMI-1) that hosts the cursor for mice without an associated display. Existing cursors move immediately.",
	}, s.handleSetDefaultDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_show_touches",
		Description: "Enable or disable rendering a spot for every touchscreen contact.",
	}, s.handleSetShowTouches)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_stylus_icon",
		Description: "Enable or disable showing an icon while a stylus hovers over a display.",
	}, s.handleSetStylusIcon)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_icon_visibility",
		Description: "Hide or show all pointer icons on one display. Hidden cursors stay hidden until made visible again.",
	}, s.handleSetIconVisibility)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_cursor",
		Description: "Move the mouse cursor by a relative delta through the routing pipeline, respecting display bounds.",
	}, s.handleMoveCursor)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dump_pointers",
		Description: "Dump the full pointer routing state: toggles, per-display mouse cursors, and per-device touch, stylus, and tablet presentations.",
	}, s.handleDumpPointers)
}
