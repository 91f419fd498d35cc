// Package app wires the globe controller, renderer, and streaming
// pipelines together behind the HTTP surface.
package app

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orbview/orbview/internal/config"
	"github.com/orbview/orbview/internal/control"
	"github.com/orbview/orbview/internal/dataset"
	"github.com/orbview/orbview/internal/encode"
	"github.com/orbview/orbview/internal/globe"
	"github.com/orbview/orbview/internal/mjpeg"
	"github.com/orbview/orbview/internal/render"
	"github.com/orbview/orbview/internal/session"
	"github.com/orbview/orbview/internal/signaling"
	"github.com/orbview/orbview/internal/viewcfg"
	"github.com/orbview/orbview/internal/webrtc"
)

// defaultViewportSize is used until the first client resize arrives.
const defaultViewportSize = 800

// App coordinates the HTTP API, websocket servers, and media pipelines.
type App struct {
	mu  sync.Mutex
	cfg config.Config
	log *zap.Logger

	session   *session.Session
	globe     *globe.Controller
	sched     *globe.TimerScheduler
	renderer  *render.Renderer
	dataset   *dataset.Store
	stream    *mjpeg.Stream
	runner    *encode.Runner
	publisher *webrtc.Publisher
	signaling *signaling.Server
	control   *control.Server

	view viewcfg.ViewConfig

	frameMu   sync.Mutex
	lastFrame *image.RGBA
}

// New creates a new application with its dependencies wired.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	view, err := viewcfg.Load(cfg.ViewPath)
	if err != nil {
		logger.Warn("saved view unreadable, using defaults",
			zap.String("path", cfg.ViewPath), zap.Error(err))
		view = viewcfg.Default()
	}
	datasetSource := cfg.Dataset
	if view.Dataset != "" {
		datasetSource = view.Dataset
	}

	a := &App{
		cfg:      cfg,
		log:      logger,
		session:  session.New(cfg.UIPassword),
		renderer: render.New(logger.Named("render")),
		dataset:  dataset.NewStore(),
		runner:   encode.NewRunner(),
		view:     view,
	}
	a.session.SetDataset(datasetSource)
	if view.Marker != nil {
		a.renderer.SetMarker(&render.Marker{Lon: view.Marker.Lon, Lat: view.Marker.Lat})
	}

	a.globe = globe.NewController(globe.Options{
		Home:   view.Rotation,
		Frame:  a.paintFrame,
		Logger: logger.Named("globe"),
	})
	a.sched = globe.NewTimerScheduler(cfg.FPS, a.globe.Step)
	a.globe.SetScheduler(a.sched)

	if cfg.MJPEGEnabled {
		a.stream = mjpeg.NewStream(time.Duration(cfg.MJPEGIntervalMs) * time.Millisecond)
	}

	if cfg.WebRTCEnabled {
		pub, err := webrtc.NewPublisher(logger.Named("webrtc"))
		if err != nil {
			return nil, err
		}
		webrtc.SetDebugLogging(cfg.Debug)
		a.publisher = pub
		a.signaling = signaling.NewServer(pub, signaling.ViewerReplace, a.session.IsAuthenticated)
	}

	a.control = control.NewServer(a.session, a.globe, a.onVideoChange, a.onViewportResize)
	return a, nil
}

// Start loads the dataset, sizes the initial viewport, and brings up
// the encode pipeline when WebRTC is enabled.
func (a *App) Start(ctx context.Context) error {
	a.dataset.LoadAsync(ctx, a.session.Dataset(), a.log.Named("dataset"))
	a.globe.SetViewport(globe.Viewport{W: defaultViewportSize, H: defaultViewportSize, DPR: 1})

	if a.publisher != nil {
		if err := a.restartEncoder(defaultViewportSize, defaultViewportSize); err != nil {
			// The MJPEG preview still works without ffmpeg; keep going.
			a.log.Warn("webrtc encode pipeline unavailable", zap.Error(err))
		}
	}
	return nil
}

// Stop tears down pipelines and persists the last target orientation as
// the next run's home view.
func (a *App) Stop() {
	a.sched.Stop()
	if a.publisher != nil {
		a.publisher.StopForwarding()
		a.publisher.Close()
	}
	if err := a.runner.Stop(); err != nil {
		a.log.Warn("encoder stop failed", zap.Error(err))
	}

	a.mu.Lock()
	v := a.view
	v.Rotation = a.globe.TargetView().Rotation
	a.mu.Unlock()
	if err := viewcfg.Save(a.cfg.ViewPath, v); err != nil {
		a.log.Warn("saving view failed", zap.String("path", a.cfg.ViewPath), zap.Error(err))
	}
}

// Signaling returns the signaling websocket handler, nil when WebRTC is
// disabled.
func (a *App) Signaling() *signaling.Server {
	return a.signaling
}

// Control returns the control websocket handler.
func (a *App) Control() *control.Server {
	return a.control
}

// Stream returns the MJPEG stream, nil when disabled.
func (a *App) Stream() *mjpeg.Stream {
	return a.stream
}

// paintFrame renders the view and fans the frame out to the active
// sinks. It runs on reconciler ticks, outside the controller lock.
func (a *App) paintFrame(view globe.View, vp globe.Viewport) {
	img, failures := a.renderer.Render(view, vp, a.dataset.Get())
	for _, f := range failures {
		a.log.Warn("render stage failed", zap.String("stage", f.Stage), zap.Error(f.Err))
	}

	a.frameMu.Lock()
	a.lastFrame = img
	a.frameMu.Unlock()

	if a.stream != nil {
		a.stream.Publish(mjpeg.EncodeFrame(img, a.cfg.MJPEGQuality))
	}
	if a.session.VideoMode() == session.VideoWebRTC {
		if err := a.runner.WriteFrame(img); err == nil {
			return
		}
		// Size mismatch or stopped encoder; the resize path restarts it.
	}
}

// LastFrame returns the most recently rendered frame, or nil before the
// first paint.
func (a *App) LastFrame() *image.RGBA {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	return a.lastFrame
}

// onViewportResize restarts the encoder at the new frame size.
func (a *App) onViewportResize(w, h int) {
	if a.publisher == nil {
		return
	}
	if err := a.restartEncoder(w, h); err != nil {
		a.log.Warn("encoder restart failed", zap.Int("w", w), zap.Int("h", h), zap.Error(err))
	}
}

// onVideoChange reacts to the viewer switching pipelines.
func (a *App) onVideoChange(mode string) {
	if mode != session.VideoWebRTC {
		return
	}
	vp := a.globe.Viewport()
	if err := a.restartEncoder(vp.W, vp.H); err != nil {
		a.log.Warn("encoder start failed", zap.Error(err))
	}
}

// restartEncoder brings up ffmpeg at the given size and reconnects the
// RTP forwarding path.
func (a *App) restartEncoder(w, h int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.publisher == nil {
		return errors.New("webrtc disabled")
	}
	a.publisher.StopForwarding()

	port, _, err := a.runner.Restart(w, h, encode.Options{
		FFmpegPath:  a.cfg.FFmpegPath,
		FPS:         a.cfg.FPS,
		BitrateKbps: a.cfg.BitrateKbps,
	})
	if err != nil {
		return err
	}
	if err := a.publisher.AttachRTP(port); err != nil {
		return err
	}
	if _, err := a.publisher.Track(); err != nil {
		return err
	}
	if err := a.publisher.StartForwarding(); err != nil {
		return err
	}
	if a.signaling != nil {
		a.signaling.NotifyRestart()
	}
	return nil
}
