package signaling

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	pub "github.com/orbview/orbview/internal/webrtc"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v3"
)

// closeDeadline bounds the write of a close frame to a rejected viewer.
const closeDeadline = time.Second

// ViewerPolicy decides what happens when a viewer connects while the
// globe stream already has one.
type ViewerPolicy int

const (
	// ViewerReject refuses the newcomer.
	ViewerReject ViewerPolicy = iota
	// ViewerReplace hands the stream to the newcomer and closes the
	// previous connection.
	ViewerReplace
)

// Server negotiates the globe video stream with a single viewer: SDP
// offer/answer plus ICE candidates over a websocket, and a restart nudge
// whenever the encoder comes back at a new frame size.
type Server struct {
	mu        sync.Mutex
	writeMu   sync.Mutex
	upgrader  websocket.Upgrader
	publisher *pub.Publisher
	policy    ViewerPolicy
	authFn    func() bool
	conn      *websocket.Conn
	peer      *webrtc.PeerConnection
}

// NewServer builds a signaling server for the publisher's track. authFn
// gates the endpoint; nil means open access.
func NewServer(publisher *pub.Publisher, policy ViewerPolicy, authFn func() bool) *Server {
	return &Server{
		publisher: publisher,
		policy:    policy,
		authFn:    authFn,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request, claims the viewer slot, and runs the
// negotiation loop until the socket drops.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.authFn != nil && !s.authFn() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := s.claimViewer(conn); err != nil {
		refuse(conn, err.Error())
		return
	}
	defer s.releaseViewer(conn)

	peer, err := s.publisher.NewPeer()
	if err != nil {
		return
	}
	if err := s.registerPeer(conn, peer); err != nil {
		_ = peer.Close()
		return
	}
	s.serveConn(conn, peer)
}

// serveConn relays server candidates out and viewer messages in.
func (s *Server) serveConn(conn *websocket.Conn, peer *webrtc.PeerConnection) {
	peer.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		candidate := c.ToJSON()
		_ = s.sendTo(conn, Message{T: "ice", Candidate: &candidate})
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := s.handleMessage(conn, peer, msg); err != nil {
			return
		}
	}
}

// NotifyRestart asks the viewer to send a fresh offer. The encoder
// restart after a viewport resize invalidates the running stream.
func (s *Server) NotifyRestart() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	_ = s.sendTo(conn, Message{T: "restart"})
}

// claimViewer takes the single viewer slot, applying the policy when it
// is already occupied.
func (s *Server) claimViewer(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		if s.policy != ViewerReplace {
			return fmt.Errorf("viewer already connected")
		}
		_ = s.conn.Close()
		s.conn = nil
		s.peer = nil
	}
	s.conn = conn
	return nil
}

// registerPeer pairs a peer connection with the websocket, unless the
// slot changed hands in the meantime.
func (s *Server) registerPeer(conn *websocket.Conn, peer *webrtc.PeerConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return fmt.Errorf("connection no longer active")
	}
	s.peer = peer
	return nil
}

// releaseViewer tears down the slot when the departing connection still
// owns it.
func (s *Server) releaseViewer(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		if s.peer != nil {
			_ = s.peer.Close()
			s.peer = nil
		}
	}
	s.mu.Unlock()
	_ = conn.Close()
}

// refuse closes the socket with a policy violation frame.
func refuse(conn *websocket.Conn, reason string) {
	message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeDeadline))
	_ = conn.Close()
}

func (s *Server) handleMessage(conn *websocket.Conn, peer *webrtc.PeerConnection, msg Message) error {
	switch msg.T {
	case "offer":
		return s.handleOffer(conn, peer, msg.SDP)
	case "ice":
		return s.handleICE(peer, msg.Candidate)
	default:
		return nil
	}
}

// handleOffer answers the viewer's offer. The answer is sent only after
// ICE gathering completes so it carries every candidate and the client
// needs no trickle path for the common case.
func (s *Server) handleOffer(conn *websocket.Conn, peer *webrtc.PeerConnection, sdp string) error {
	if sdp == "" {
		return fmt.Errorf("empty offer")
	}
	if err := peer.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  sdp,
	}); err != nil {
		return err
	}
	answer, err := peer.CreateAnswer(nil)
	if err != nil {
		return err
	}
	gatherComplete := webrtc.GatheringCompletePromise(peer)
	if err := peer.SetLocalDescription(answer); err != nil {
		return err
	}
	<-gatherComplete
	local := peer.LocalDescription()
	if local == nil {
		return fmt.Errorf("missing local description")
	}
	return s.sendTo(conn, Message{T: "answer", SDP: local.SDP})
}

func (s *Server) handleICE(peer *webrtc.PeerConnection, candidate *webrtc.ICECandidateInit) error {
	if candidate == nil {
		return nil
	}
	return peer.AddICECandidate(*candidate)
}

// sendTo writes to the connection while it still owns the viewer slot.
func (s *Server) sendTo(conn *websocket.Conn, msg Message) error {
	s.mu.Lock()
	active := s.conn
	s.mu.Unlock()
	if active != conn {
		return fmt.Errorf("connection not active")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteJSON(msg)
}
