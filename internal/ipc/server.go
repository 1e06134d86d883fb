package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/pointertile/internal/runtimepath"
)

// Daemon is the control surface the IPC server drives. Every method must be
// safe for concurrent use.
type Daemon interface {
	Status() StatusData
	Viewports() []ViewportInfo
	CursorPosition(displayID int32) (x, y float64, valid bool)
	SetDefaultDisplay(name string) error
	SetShowTouches(enabled bool)
	SetStylusIcon(enabled bool)
	SetIconVisibility(displayID int32, visible bool)
	SetPointerIcon(style, displayID, deviceID int32) bool
	SetFocusedDisplay(displayID int32)
	InjectMotion(deviceID int32, dx, dy float64, displayID int32)
	InjectKey(deviceID, keyCode int32, metaState uint32, displayID int32)
	Dump() string
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	daemon       Daemon
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(daemon Daemon, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		daemon:     daemon,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

func (s *Server) sendError(conn net.Conn, msg string) {
	resp := NewErrorResponse(msg)
	data, err := resp.Marshal()
	if err != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetViewports:
		return s.handleGetViewports()
	case CommandGetCursor:
		return s.handleGetCursor(req.Payload)
	case CommandSetDefaultDisplay:
		return s.handleSetDefaultDisplay(req.Payload)
	case CommandSetShowTouches:
		return s.handleToggle(req.Payload, s.daemon.SetShowTouches)
	case CommandSetStylusIcon:
		return s.handleToggle(req.Payload, s.daemon.SetStylusIcon)
	case CommandSetIconVisibility:
		return s.handleSetIconVisibility(req.Payload)
	case CommandSetPointerIcon:
		return s.handleSetPointerIcon(req.Payload)
	case CommandSetFocusedDisplay:
		return s.handleSetFocusedDisplay(req.Payload)
	case CommandInjectMotion:
		return s.handleInjectMotion(req.Payload)
	case CommandInjectKey:
		return s.handleInjectKey(req.Payload)
	case CommandDump:
		resp, _ := NewOKResponse(DumpData{Dump: s.daemon.Dump()})
		return resp
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload asks the daemon to reload its configuration.
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	status := s.daemon.Status()
	status.DaemonRunning = true
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetViewports() *Response {
	resp, _ := NewOKResponse(ViewportsData{Viewports: s.daemon.Viewports()})
	return resp
}

func (s *Server) handleGetCursor(payload json.RawMessage) *Response {
	cursor := CursorPayload{DisplayID: -1}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cursor); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid cursor payload: %v", err))
		}
	}

	x, y, valid := s.daemon.CursorPosition(cursor.DisplayID)
	resp, _ := NewOKResponse(CursorData{DisplayID: cursor.DisplayID, X: x, Y: y, Valid: valid})
	return resp
}

func (s *Server) handleSetDefaultDisplay(payload json.RawMessage) *Response {
	var p SetDefaultDisplayPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid display payload: %v", err))
	}
	if err := s.daemon.SetDefaultDisplay(p.Display); err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleToggle(payload json.RawMessage, apply func(bool)) *Response {
	var p TogglePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid toggle payload: %v", err))
	}
	apply(p.Enabled)
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetIconVisibility(payload json.RawMessage) *Response {
	var p IconVisibilityPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid visibility payload: %v", err))
	}
	s.daemon.SetIconVisibility(p.DisplayID, p.Visible)
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetPointerIcon(payload json.RawMessage) *Response {
	var p PointerIconPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid icon payload: %v", err))
	}
	if !s.daemon.SetPointerIcon(p.Style, p.DisplayID, p.DeviceID) {
		return NewErrorResponse(fmt.Sprintf("no pointer found for device %d on display %d", p.DeviceID, p.DisplayID))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSetFocusedDisplay(payload json.RawMessage) *Response {
	var p FocusPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid focus payload: %v", err))
	}
	s.daemon.SetFocusedDisplay(p.DisplayID)
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleInjectMotion(payload json.RawMessage) *Response {
	var p MotionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid motion payload: %v", err))
	}
	s.daemon.InjectMotion(p.DeviceID, p.DX, p.DY, p.DisplayID)
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleInjectKey(payload json.RawMessage) *Response {
	var p KeyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid key payload: %v", err))
	}
	s.daemon.InjectKey(p.DeviceID, p.KeyCode, p.MetaState, p.DisplayID)
	resp, _ := NewOKResponse(nil)
	return resp
}
