// Package session holds runtime state for the active viewer.
package session

import "sync"

// VideoWebRTC runs the RTP pipeline for WebRTC video.
const VideoWebRTC = "webrtc"

// VideoMJPEG runs the MJPEG preview pipeline only.
const VideoMJPEG = "mjpeg"

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	Authenticated bool
	InputEnabled  bool
	VideoMode     string
	Dataset       string
}

// Session holds runtime state for the active viewer.
type Session struct {
	mu            sync.RWMutex
	password      string
	authenticated bool
	inputEnabled  bool
	videoMode     string
	dataset       string
}

// New returns an initialized session. An empty password disables
// authentication entirely.
func New(password string) *Session {
	return &Session{
		password:      password,
		authenticated: password == "",
		inputEnabled:  true,
		videoMode:     VideoMJPEG,
	}
}

// Authenticate validates the password and marks the session as authenticated.
func (s *Session) Authenticate(pass string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.password == "" {
		s.authenticated = true
		return true
	}
	if pass == s.password {
		s.authenticated = true
		return true
	}
	s.authenticated = false
	return false
}

// Logout clears authentication state. With no password configured the
// session stays open.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = s.password == ""
}

// IsAuthenticated reports whether the session is authenticated.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// SetInputEnabled toggles whether pointer gestures reach the globe.
func (s *Session) SetInputEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputEnabled = enabled
}

// InputEnabled reports whether pointer gestures reach the globe.
func (s *Session) InputEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputEnabled
}

// SetVideoMode sets which video pipeline the server should run.
func (s *Session) SetVideoMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case VideoMJPEG:
		s.videoMode = VideoMJPEG
	default:
		s.videoMode = VideoWebRTC
	}
}

// VideoMode returns the active video pipeline mode.
func (s *Session) VideoMode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.videoMode == "" {
		return VideoMJPEG
	}
	return s.videoMode
}

// SetDataset records the path of the loaded land dataset.
func (s *Session) SetDataset(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = path
}

// Dataset returns the path of the loaded land dataset.
func (s *Session) Dataset() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Authenticated: s.authenticated,
		InputEnabled:  s.inputEnabled,
		VideoMode:     s.videoMode,
		Dataset:       s.dataset,
	}
}
