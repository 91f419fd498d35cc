// Package encode pipes rendered frames through ffmpeg into an RTP stream.
package encode

import (
	"errors"
	"fmt"
	"image"
	"io"
	"net"
	"os"
	"os/exec"
	"sync"
)

// Runner manages the ffmpeg process lifecycle for one encode session.
type Runner struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	waitCh chan error
	width  int
	height int
}

// NewRunner returns a new Runner instance.
func NewRunner() *Runner {
	return &Runner{}
}

// Start launches ffmpeg for the given frame size and returns the local
// RTP port and a stop function.
func (r *Runner) Start(width, height int, opts Options) (int, func() error, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startLocked(width, height, opts)
}

// Restart stops the current process and starts a new one, typically
// after a viewport resize changed the frame dimensions.
func (r *Runner) Restart(width, height int, opts Options) (int, func() error, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.stopLocked(); err != nil {
		return 0, nil, err
	}
	return r.startLocked(width, height, opts)
}

// Stop terminates any running ffmpeg process.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked()
}

// Size returns the frame dimensions of the running encoder, or zeros
// when stopped.
func (r *Runner) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// WriteFrame feeds one rendered frame to the encoder. Frames whose
// dimensions do not match the running session are rejected; the caller
// restarts the runner on resize.
func (r *Runner) WriteFrame(img *image.RGBA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd == nil || r.stdin == nil {
		return errors.New("encoder not running")
	}
	b := img.Bounds()
	if b.Dx() != r.width || b.Dy() != r.height {
		return fmt.Errorf("frame size %dx%d does not match encoder %dx%d", b.Dx(), b.Dy(), r.width, r.height)
	}
	rowLen := 4 * r.width
	for y := 0; y < r.height; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		if _, err := r.stdin.Write(img.Pix[off : off+rowLen]); err != nil {
			return err
		}
	}
	return nil
}

// startLocked starts ffmpeg while holding the runner lock.
func (r *Runner) startLocked(width, height int, opts Options) (int, func() error, error) {
	if opts.FFmpegPath == "" {
		return 0, nil, errors.New("FFmpegPath is required")
	}
	if width < 2 || height < 2 {
		return 0, nil, fmt.Errorf("frame size %dx%d too small", width, height)
	}
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.BitrateKbps <= 0 {
		opts.BitrateKbps = 4000
	}

	port, err := allocatePort()
	if err != nil {
		return 0, nil, err
	}

	args := BuildEncodeArgs(width, height, opts, port)
	cmd := exec.Command(opts.FFmpegPath, args...)
	cmd.Stderr = os.Stderr
	configureCmd(cmd)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, nil, err
	}
	if err := cmd.Start(); err != nil {
		return 0, nil, err
	}
	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	r.cmd = cmd
	r.stdin = stdin
	r.waitCh = waitCh
	r.width = width
	r.height = height
	stop := func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.stopLocked()
	}
	return port, stop, nil
}

// stopLocked stops the current ffmpeg process without acquiring the lock.
func (r *Runner) stopLocked() error {
	if r.cmd == nil || r.cmd.Process == nil {
		r.cmd = nil
		r.stdin = nil
		r.waitCh = nil
		r.width = 0
		r.height = 0
		return nil
	}
	if r.stdin != nil {
		_ = r.stdin.Close()
	}
	if err := r.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	if r.waitCh != nil {
		<-r.waitCh
	}
	r.cmd = nil
	r.stdin = nil
	r.waitCh = nil
	r.width = 0
	r.height = 0
	return nil
}

// allocatePort reserves a local UDP port and returns it.
func allocatePort() (int, error) {
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return 0, err
	}
	port := conn.LocalAddr().(*net.UDPAddr).Port
	if err := conn.Close(); err != nil {
		return 0, err
	}
	return port, nil
}
