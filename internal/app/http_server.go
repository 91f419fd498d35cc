package app

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"

	"github.com/orbview/orbview/internal/globe"
	"github.com/orbview/orbview/internal/viewcfg"
	"github.com/orbview/orbview/internal/web"
)

// RegisterRoutes wires API and static handlers onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux, staticDir string) {
	if staticDir == "" {
		staticDir = filepath.Join("internal", "web", "static")
	}

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.handleLogout)
	mux.HandleFunc("/api/state", a.handleState)
	mux.HandleFunc("/api/view", a.handleView)
	mux.HandleFunc("/api/snapshot", a.handleSnapshot)
	mux.Handle("/ws/control", a.Control())
	if s := a.Signaling(); s != nil {
		mux.Handle("/ws/signal", s)
	}
	if stream := a.Stream(); stream != nil {
		mux.HandleFunc("/mjpeg/globe", stream.Handler)
	}
	mux.HandleFunc("/favicon.ico", handleFavicon)

	mux.Handle("/static/", http.StripPrefix("/static/", a.staticFileServer(staticDir)))
	mux.Handle("/", a.staticFileServer(staticDir))
}

type loginRequest struct {
	Password string `json:"password"`
}

type viewResponse struct {
	Rotation globe.Orientation `json:"rotation"`
	Zoom     float64           `json:"zoom"`
}

type stateResponse struct {
	Authenticated bool         `json:"authenticated"`
	InputEnabled  bool         `json:"inputEnabled"`
	VideoMode     string       `json:"videoMode"`
	Dataset       string       `json:"dataset,omitempty"`
	View          viewResponse `json:"view"`
	ZoomMin       float64      `json:"zoomMin"`
	ZoomMax       float64      `json:"zoomMax"`
}

type viewRequest struct {
	Rotation *globe.Orientation `json:"rotation,omitempty"`
	Zoom     float64            `json:"zoom,omitempty"`
	Save     bool               `json:"save,omitempty"`
}

// handleLogin authenticates the session.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !a.session.Authenticate(req.Password) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleLogout clears authentication state.
func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.session.Logout()
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleState returns current session state and the live view.
func (a *App) handleState(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	snap := a.session.Snapshot()
	limits := a.globe.ZoomLimits()
	resp := stateResponse{
		Authenticated: snap.Authenticated,
		InputEnabled:  snap.InputEnabled,
		VideoMode:     snap.VideoMode,
		Dataset:       snap.Dataset,
		View:          a.currentViewResponse(),
		ZoomMin:       limits.Min,
		ZoomMax:       limits.Max,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// handleView reads or programmatically moves the view. A POST animates
// toward the requested orientation/zoom; Save also persists it as the
// home view for the next run.
func (a *App) handleView(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(a.currentViewResponse())
	case http.MethodPost:
		var req viewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		rot := a.globe.TargetView().Rotation
		if req.Rotation != nil {
			rot = *req.Rotation
		}
		zoom := req.Zoom
		if zoom <= 0 {
			zoom = a.targetZoom()
		}
		a.globe.SetTarget(rot, zoom)
		if req.Save {
			a.mu.Lock()
			a.view.Rotation = rot
			v := a.view
			a.mu.Unlock()
			if err := viewcfg.Save(a.cfg.ViewPath, v); err != nil {
				a.log.Warn("saving view failed", zap.Error(err))
				http.Error(w, "save failed", http.StatusInternalServerError)
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSnapshot returns the most recent rendered frame as WebP.
func (a *App) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	img := a.LastFrame()
	if img == nil {
		http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "no-store")
	if err := nativewebp.Encode(w, img, nil); err != nil {
		a.log.Warn("snapshot encode failed", zap.Error(err))
	}
}

// currentViewResponse snapshots the live view for the API.
func (a *App) currentViewResponse() viewResponse {
	cur := a.globe.CurrentView()
	zoom := 0.0
	if base := a.globe.BaseScale(); base > 0 {
		zoom = cur.Scale / base
	}
	return viewResponse{Rotation: cur.Rotation, Zoom: zoom}
}

// targetZoom returns the zoom factor of the current target view.
func (a *App) targetZoom() float64 {
	base := a.globe.BaseScale()
	if base <= 0 {
		return 1
	}
	return a.globe.TargetView().Scale / base
}

// requireAuth returns false and writes an error if the session is not authenticated.
func (a *App) requireAuth(w http.ResponseWriter) bool {
	if !a.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// staticFileServer returns a handler for static assets, preferring disk then embed.
func (a *App) staticFileServer(staticDir string) http.Handler {
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	embedded, err := web.StaticFS()
	if err != nil {
		a.log.Error("static assets unavailable", zap.Error(err))
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(embedded))
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
