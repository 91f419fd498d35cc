package session

import "testing"

// TestAuthenticate_Success verifies successful authentication.
func TestAuthenticate_Success(t *testing.T) {
	s := New("secret")
	if !s.Authenticate("secret") {
		t.Fatalf("expected authentication to succeed")
	}
	if !s.IsAuthenticated() {
		t.Fatalf("expected authenticated state")
	}
}

// TestAuthenticate_Fail verifies failed authentication.
func TestAuthenticate_Fail(t *testing.T) {
	s := New("secret")
	if s.Authenticate("nope") {
		t.Fatalf("expected authentication to fail")
	}
	if s.IsAuthenticated() {
		t.Fatalf("expected unauthenticated state")
	}
}

// TestEmptyPassword_DisablesAuth verifies an empty password leaves the
// session open permanently.
func TestEmptyPassword_DisablesAuth(t *testing.T) {
	s := New("")
	if !s.IsAuthenticated() {
		t.Fatalf("expected open session with no password")
	}
	if !s.Authenticate("anything") {
		t.Fatalf("expected any password to pass with auth disabled")
	}
	s.Logout()
	if !s.IsAuthenticated() {
		t.Fatalf("expected logout to be a no-op with auth disabled")
	}
}

// TestLogout verifies logout clears auth state.
func TestLogout(t *testing.T) {
	s := New("secret")
	s.Authenticate("secret")
	s.Logout()
	if s.IsAuthenticated() {
		t.Fatalf("expected unauthenticated state")
	}
}

// TestInputEnabled_Toggle verifies input enabled toggle.
func TestInputEnabled_Toggle(t *testing.T) {
	s := New("secret")
	s.SetInputEnabled(false)
	if s.InputEnabled() {
		t.Fatalf("expected input disabled")
	}
	s.SetInputEnabled(true)
	if !s.InputEnabled() {
		t.Fatalf("expected input enabled")
	}
}

// TestVideoMode_DefaultsAndSwitch verifies the pipeline selector.
func TestVideoMode_DefaultsAndSwitch(t *testing.T) {
	s := New("secret")
	if s.VideoMode() != VideoMJPEG {
		t.Fatalf("expected mjpeg default, got %q", s.VideoMode())
	}
	s.SetVideoMode("bogus")
	if s.VideoMode() != VideoWebRTC {
		t.Fatalf("expected unknown modes to select webrtc, got %q", s.VideoMode())
	}
	s.SetVideoMode(VideoMJPEG)
	if s.VideoMode() != VideoMJPEG {
		t.Fatalf("expected mjpeg, got %q", s.VideoMode())
	}
}

// TestSnapshot verifies snapshot content.
func TestSnapshot(t *testing.T) {
	s := New("secret")
	s.Authenticate("secret")
	s.SetInputEnabled(false)
	s.SetVideoMode(VideoWebRTC)
	s.SetDataset("land.geojson")
	snap := s.Snapshot()
	if !snap.Authenticated || snap.InputEnabled || snap.VideoMode != VideoWebRTC || snap.Dataset != "land.geojson" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}
