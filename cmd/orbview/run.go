// Package main starts the OrbView server.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/orbview/orbview/internal/app"
	"github.com/orbview/orbview/internal/config"
	"github.com/orbview/orbview/internal/logging"
)

// run wires the application and blocks until shutdown.
func run(debug bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Debug = cfg.Debug || debug

	log := logging.New(cfg.Debug)
	defer func() { _ = log.Sync() }()
	logStartup(log, cfg)

	appInstance, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := appInstance.Start(ctx); err != nil {
		return err
	}
	defer appInstance.Stop()

	mux := http.NewServeMux()
	appInstance.RegisterRoutes(mux, "")
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logStartup prints startup checks and connection info.
func logStartup(log *zap.Logger, cfg config.Config) {
	log.Info("OrbView starting",
		zap.Int("fps", cfg.FPS),
		zap.Bool("mjpeg", cfg.MJPEGEnabled),
		zap.Bool("webrtc", cfg.WebRTCEnabled))
	logAuthStatus(log, cfg)
	if cfg.WebRTCEnabled {
		logFFmpegStatus(log, cfg.FFmpegPath)
	}
	logListenStatus(log, cfg.ListenAddr)
}

// logAuthStatus reports whether viewer authentication is active.
func logAuthStatus(log *zap.Logger, cfg config.Config) {
	if cfg.UIPassword == "" {
		log.Warn("UI_PASSWORD not set, viewer authentication disabled")
		return
	}
	log.Info("viewer authentication enabled")
}

// logFFmpegStatus reports whether the ffmpeg binary is discoverable.
func logFFmpegStatus(log *zap.Logger, path string) {
	resolved := path
	ok := false
	note := ""

	if filepath.IsAbs(path) {
		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir():
			ok = true
		case err != nil:
			note = err.Error()
		default:
			note = "path is a directory"
		}
	} else {
		found, err := exec.LookPath(path)
		switch {
		case err == nil:
			ok = true
			resolved = found
		case errors.Is(err, exec.ErrDot):
			note = "found relative to current dir; use absolute path"
		default:
			note = err.Error()
		}
	}

	if ok {
		log.Info("ffmpeg check ok", zap.String("path", resolved))
		return
	}
	log.Warn("ffmpeg missing, webrtc video will not start", zap.String("note", note))
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(log *zap.Logger, addr string) {
	log.Info("listening", zap.String("addr", addr))
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	log.Info("local url", zap.String("url", "http://"+net.JoinHostPort(host, port)))
}
