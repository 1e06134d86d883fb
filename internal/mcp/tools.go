package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/pointertile/internal/input"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}
	return nil, GetStatusOutput{
		DaemonRunning:      status.DaemonRunning,
		UptimeSeconds:      status.UptimeSeconds,
		ShowTouches:        status.ShowTouches,
		StylusPointerIcon:  status.StylusPointerIcon,
		DefaultDisplay:     status.DefaultDisplay,
		DefaultDisplayName: status.DefaultDisplayName,
		DeviceCount:        status.DeviceCount,
	}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	viewports, err := s.client.GetViewports()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}
	out := ListDisplaysOutput{Displays: make([]DisplayInfo, 0, len(viewports.Viewports))}
	for _, vp := range viewports.Viewports {
		out.Displays = append(out.Displays, DisplayInfo{
			ID:     vp.ID,
			Name:   vp.Name,
			X:      vp.X,
			Y:      vp.Y,
			Width:  vp.Width,
			Height: vp.Height,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetCursor(_ context.Context, _ *mcpsdk.CallToolRequest, args GetCursorInput) (*mcpsdk.CallToolResult, GetCursorOutput, error) {
	displayID := input.InvalidDisplayID
	if args.DisplayID != nil {
		displayID = *args.DisplayID
	}
	cursor, err := s.client.GetCursor(displayID)
	if err != nil {
		return nil, GetCursorOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}
	return nil, GetCursorOutput{
		DisplayID: cursor.DisplayID,
		X:         cursor.X,
		Y:         cursor.Y,
		Valid:     cursor.Valid,
	}, nil
}

func (s *Server) handleSetDefaultDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args SetDefaultDisplayInput) (*mcpsdk.CallToolResult, SetDefaultDisplayOutput, error) {
	if err := s.client.SetDefaultDisplay(args.Display); err != nil {
		return nil, SetDefaultDisplayOutput{}, err
	}
	return nil, SetDefaultDisplayOutput{Display: args.Display}, nil
}

func (s *Server) handleSetShowTouches(_ context.Context, _ *mcpsdk.CallToolRequest, args ToggleInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	if err := s.client.SetShowTouches(args.Enabled); err != nil {
		return nil, ToggleOutput{}, err
	}
	return nil, ToggleOutput{Enabled: args.Enabled}, nil
}

func (s *Server) handleSetStylusIcon(_ context.Context, _ *mcpsdk.CallToolRequest, args ToggleInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	if err := s.client.SetStylusIcon(args.Enabled); err != nil {
		return nil, ToggleOutput{}, err
	}
	return nil, ToggleOutput{Enabled: args.Enabled}, nil
}

func (s *Server) handleSetIconVisibility(_ context.Context, _ *mcpsdk.CallToolRequest, args SetIconVisibilityInput) (*mcpsdk.CallToolResult, SetIconVisibilityOutput, error) {
	if err := s.client.SetIconVisibility(args.DisplayID, args.Visible); err != nil {
		return nil, SetIconVisibilityOutput{}, err
	}
	return nil, SetIconVisibilityOutput{DisplayID: args.DisplayID, Visible: args.Visible}, nil
}

func (s *Server) handleMoveCursor(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveCursorInput) (*mcpsdk.CallToolResult, MoveCursorOutput, error) {
	if err := s.client.InjectMotion(0, args.DX, args.DY, input.InvalidDisplayID); err != nil {
		return nil, MoveCursorOutput{}, err
	}
	cursor, err := s.client.GetCursor(input.InvalidDisplayID)
	if err != nil {
		return nil, MoveCursorOutput{}, err
	}
	if !cursor.Valid {
		return nil, MoveCursorOutput{}, fmt.Errorf("no mouse cursor on the default display")
	}
	return nil, MoveCursorOutput{DisplayID: cursor.DisplayID, X: cursor.X, Y: cursor.Y}, nil
}

func (s *Server) handleDumpPointers(_ context.Context, _ *mcpsdk.CallToolRequest, _ DumpPointersInput) (*mcpsdk.CallToolResult, DumpPointersOutput, error) {
	dump, err := s.client.Dump()
	if err != nil {
		return nil, DumpPointersOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}
	return nil, DumpPointersOutput{Dump: dump}, nil
}
