package webcodecs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

var webrtcMimeTypes = map[CodecID]string{
	CodecVP8:  webrtc.MimeTypeVP8,
	CodecVP9:  webrtc.MimeTypeVP9,
	CodecH264: webrtc.MimeTypeH264,
	CodecH265: webrtc.MimeTypeH265,
	CodecAV1:  webrtc.MimeTypeAV1,
}

// TrackSink feeds encoded chunks into a pion WebRTC local track. Wire
// its WriteChunk method as an encoder's output callback to stream the
// encoder straight into a peer connection.
type TrackSink struct {
	track *webrtc.TrackLocalStaticSample
	codec CodecID

	mu            sync.Mutex
	lastTimestamp int64
	defaultDur    time.Duration
	closed        bool
}

// NewTrackSink creates a sink for encoded chunks of the given codec.
// streamID groups tracks into one MediaStream on the remote side; pass
// "" to generate one. framerate sizes the fallback sample duration for
// chunks that carry none.
func NewTrackSink(codec CodecID, streamID string, framerate float64) (*TrackSink, error) {
	mime, ok := webrtcMimeTypes[codec]
	if !ok {
		return nil, fmt.Errorf("%w: no WebRTC mime type for %s", ErrUnknownCodec, codec)
	}
	if streamID == "" {
		streamID = uuid.NewString()
	}
	if framerate <= 0 {
		framerate = 30
	}

	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: mime},
		uuid.NewString(),
		streamID,
	)
	if err != nil {
		return nil, fmt.Errorf("create local track: %w", err)
	}

	return &TrackSink{
		track:      track,
		codec:      codec,
		defaultDur: time.Duration(float64(time.Second) / framerate),
	}, nil
}

// Track returns the underlying pion track for AddTrack on a peer
// connection.
func (s *TrackSink) Track() *webrtc.TrackLocalStaticSample {
	return s.track
}

// WriteChunk writes one encoded chunk as a media sample. Sample
// duration comes from the chunk when present, otherwise from the gap
// to the previous chunk's timestamp, otherwise from the configured
// framerate.
func (s *TrackSink) WriteChunk(chunk *EncodedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	dur := time.Duration(chunk.Duration) * time.Microsecond
	if dur <= 0 && s.lastTimestamp != 0 && chunk.Timestamp > s.lastTimestamp {
		dur = time.Duration(chunk.Timestamp-s.lastTimestamp) * time.Microsecond
	}
	if dur <= 0 {
		dur = s.defaultDur
	}
	s.lastTimestamp = chunk.Timestamp

	return s.track.WriteSample(media.Sample{
		Data:     chunk.Data,
		Duration: dur,
	})
}

// Close marks the sink closed. Subsequent writes return ErrClosed.
func (s *TrackSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
