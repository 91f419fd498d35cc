package control

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/orbview/orbview/internal/globe"
	"github.com/orbview/orbview/internal/session"

	"github.com/gorilla/websocket"
)

// Server handles websocket pointer input and drives the globe controller.
type Server struct {
	mu            sync.Mutex
	writeMu       sync.Mutex
	upgrader      websocket.Upgrader
	session       *session.Session
	globe         *globe.Controller
	gestures      *GestureState
	onVideoChange func(mode string)
	onResize      func(w, h int)
	conn          *websocket.Conn
}

// NewServer creates a control websocket server. onVideoChange fires
// when the viewer switches pipelines; onResize fires after the viewport
// changed so the encoder can be restarted at the new size.
func NewServer(sess *session.Session, ctrl *globe.Controller, onVideoChange func(string), onResize func(int, int)) *Server {
	return &Server{
		session:  sess,
		globe:    ctrl,
		gestures: NewGestureState(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		onVideoChange: onVideoChange,
		onResize:      onResize,
	}
}

// ServeHTTP upgrades the connection and processes control messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := s.acceptConn(conn); err != nil {
		_ = conn.Close()
		return
	}
	defer s.cleanupConn(conn)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := s.handleMessage(conn, msg); err != nil {
			return
		}
	}
}

// acceptConn ensures only one active control connection exists.
func (s *Server) acceptConn(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return fmt.Errorf("control connection already active")
	}
	s.conn = conn
	return nil
}

// cleanupConn clears the active connection when closed. A drag left
// dangling by a dropped connection is released so the view settles.
func (s *Server) cleanupConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	s.globe.EndGesture()
	_ = conn.Close()
}

// handleMessage dispatches a single control message.
func (s *Server) handleMessage(conn *websocket.Conn, msg Message) error {
	enabled := s.session.InputEnabled()
	switch msg.T {
	case "down":
		rotate := msg.Ctrl || msg.Touches >= 2
		return s.applyActions(s.gestures.HandleDown(enabled, msg.ID, msg.X, msg.Y, rotate))
	case "move":
		return s.applyActions(s.gestures.HandleMove(enabled, msg.ID, msg.X, msg.Y))
	case "up":
		return s.applyActions(s.gestures.HandleUp(enabled, msg.ID))
	case "wheel":
		return s.applyActions(s.gestures.HandleZoom(enabled, msg.K))
	case "dblclick":
		return s.applyActions(s.gestures.HandleDoubleClick(enabled))
	case "resize":
		return s.handleResize(conn, msg)
	case "view":
		if !enabled {
			return nil
		}
		return s.handleView(msg)
	case "setVideo":
		s.session.SetVideoMode(msg.Video)
		if s.onVideoChange != nil {
			s.onVideoChange(s.session.VideoMode())
		}
		return nil
	case "inputEnabled":
		if msg.Enabled != nil {
			s.session.SetInputEnabled(*msg.Enabled)
			if !*msg.Enabled {
				s.globe.EndGesture()
			}
		}
		return nil
	default:
		return nil
	}
}

// handleView animates the globe toward a requested orientation and zoom
// factor, the websocket flavor of the fly-to API. Missing or unusable
// parts fall back to the current target.
func (s *Server) handleView(msg Message) error {
	rot := s.globe.TargetView().Rotation
	if msg.Rotation != nil && finite(msg.Rotation.Yaw) && finite(msg.Rotation.Pitch) && finite(msg.Rotation.Roll) {
		rot = *msg.Rotation
	}
	zoom := msg.Zoom
	if !finite(zoom) || zoom <= 0 {
		if base := s.globe.BaseScale(); base > 0 {
			zoom = s.globe.TargetView().Scale / base
		} else {
			zoom = 1
		}
	}
	s.globe.SetTarget(rot, zoom)
	return nil
}

// handleResize applies the new viewport and advertises the zoom limits
// it implies back to the client. Degenerate sizes are dropped without
// touching the current viewport.
func (s *Server) handleResize(conn *websocket.Conn, msg Message) error {
	if msg.W <= 0 || msg.H <= 0 {
		return nil
	}
	dpr := msg.DPR
	if dpr <= 0 {
		dpr = 1
	}
	s.globe.SetViewport(globe.Viewport{W: msg.W, H: msg.H, DPR: dpr})
	if s.onResize != nil {
		s.onResize(msg.W, msg.H)
	}
	limits := s.globe.ZoomLimits()
	return s.sendTo(conn, Message{T: "limits", Min: limits.Min, Max: limits.Max})
}

// applyActions feeds actions into the globe controller.
func (s *Server) applyActions(actions []Action) error {
	for _, action := range actions {
		switch action.Type {
		case ActBegin:
			s.globe.BeginGesture(action.X, action.Y, action.Rotate)
		case ActDrag:
			s.globe.Move(action.X, action.Y, action.DX, action.DY)
		case ActEnd:
			s.globe.EndGesture()
		case ActZoom:
			s.globe.Zoom(action.K)
		case ActReset:
			s.globe.Reset()
		}
	}
	return nil
}

// sendTo writes a message to the active connection.
func (s *Server) sendTo(conn *websocket.Conn, msg Message) error {
	s.mu.Lock()
	active := s.conn
	s.mu.Unlock()
	if conn == nil || active != conn {
		return fmt.Errorf("connection not active")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(msg)
}
