package encode

import "fmt"

// Options describes ffmpeg runtime parameters.
type Options struct {
	FFmpegPath  string
	FPS         int
	BitrateKbps int
}

// BuildEncodeArgs returns ffmpeg args that read raw RGBA frames from
// stdin and emit an H.264 RTP stream to the given local port.
func BuildEncodeArgs(width, height int, opts Options, port int) []string {
	// Keep keyframes frequent to help decoders recover quickly after
	// restarts and viewer reconnects.
	keyint := opts.FPS
	if keyint <= 0 {
		keyint = 30
	}
	if keyint < 15 {
		keyint = 15
	}
	return []string{
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
		"-an",
		"-vcodec", "libx264",
		"-preset", "ultrafast",
		"-tune", "zerolatency",
		"-profile:v", "baseline",
		"-g", fmt.Sprintf("%d", keyint),
		"-keyint_min", fmt.Sprintf("%d", keyint),
		"-bf", "0",
		"-x264-params", "scenecut=0:repeat-headers=1",
		"-pix_fmt", "yuv420p",
		"-b:v", fmt.Sprintf("%dk", opts.BitrateKbps),
		"-payload_type", "96",
		"-f", "rtp",
		fmt.Sprintf("rtp://127.0.0.1:%d?pkt_size=1200", port),
	}
}
