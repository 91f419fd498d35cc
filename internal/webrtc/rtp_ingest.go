package webrtc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

// maxTimestampDelta caps the forwarded timestamp step at one second of
// 90 kHz clock. Encoder restarts reset ffmpeg's RTP clock; forwarding
// the raw delta would stall decoders for the wrapped duration.
const maxTimestampDelta = 90000

// fallbackTimestampDelta is one frame at 30 fps on the 90 kHz clock,
// used when the input clock jumps.
const fallbackTimestampDelta = 3000

// rtpWriteParams carries optional header overrides for outgoing packets.
type rtpWriteParams struct {
	payloadType uint8
	ssrc        uint32
}

// rtpRewriter maps the encoder's RTP sequence/timestamp space onto a
// single continuous outgoing stream, so encoder restarts are invisible
// to the viewer.
type rtpRewriter struct {
	initialized bool
	outSeq      uint16
	lastInTS    uint32
	lastOutTS   uint32
}

// Apply rewrites the packet header in place.
func (rw *rtpRewriter) Apply(p *rtp.Packet, params rtpWriteParams) {
	if !rw.initialized {
		rw.initialized = true
		rw.outSeq = p.SequenceNumber
		rw.lastInTS = p.Timestamp
		rw.lastOutTS = p.Timestamp
	} else {
		rw.outSeq++
		if p.Timestamp != rw.lastInTS {
			delta := p.Timestamp - rw.lastInTS
			if delta > maxTimestampDelta {
				delta = fallbackTimestampDelta
			}
			rw.lastOutTS += delta
			rw.lastInTS = p.Timestamp
		}
		p.SequenceNumber = rw.outSeq
		p.Timestamp = rw.lastOutTS
	}
	if params.payloadType != 0 {
		p.PayloadType = params.payloadType
	}
	if params.ssrc != 0 {
		p.SSRC = params.ssrc
	}
}

type rtpListener struct {
	mu      sync.Mutex
	conn    *net.UDPConn
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	rw      rtpRewriter
	log     *zap.Logger
}

// newRTPListener binds a UDP port for RTP ingestion.
func newRTPListener(port int, log *zap.Logger) (*rtpListener, error) {
	addr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &rtpListener{conn: conn, log: log}, nil
}

// start begins forwarding RTP packets into the provided track.
func (l *rtpListener) start(track *webrtc.TrackLocalStaticRTP) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return fmt.Errorf("rtp listener not initialized")
	}
	if l.running {
		return nil
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.running = true
	go l.loop(track)
	return nil
}

// stop cancels the forward loop.
func (l *rtpListener) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.running = false
}

// close stops forwarding and closes the UDP socket.
func (l *rtpListener) close() {
	l.stop()
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
}

// loop reads RTP packets and forwards them to the track.
func (l *rtpListener) loop(track *webrtc.TrackLocalStaticRTP) {
	buf := make([]byte, 1600)
	var forwarded uint64
	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		var pkt rtp.Packet
		if err := pkt.Unmarshal(buf[:n]); err != nil {
			if debugRTPEnabled() {
				l.log.Debug("dropping malformed rtp packet", zap.Error(err))
			}
			continue
		}
		l.rw.Apply(&pkt, rtpWriteParams{})
		if err := track.WriteRTP(&pkt); err != nil {
			if debugRTPEnabled() {
				l.log.Debug("rtp write failed", zap.Error(err))
			}
		}
		forwarded++
		if debugRTPEnabled() && forwarded%1000 == 0 {
			l.log.Debug("rtp forwarding",
				zap.Uint64("packets", forwarded),
				zap.Uint16("seq", pkt.SequenceNumber),
				zap.Uint32("ts", pkt.Timestamp))
		}
	}
}
