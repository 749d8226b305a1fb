package webcodecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackSink(t *testing.T) {
	sink, err := NewTrackSink(CodecVP8, "", 30)
	require.NoError(t, err)
	require.NotNil(t, sink.Track())
	assert.NotEmpty(t, sink.Track().ID())
	assert.NotEmpty(t, sink.Track().StreamID())

	other, err := NewTrackSink(CodecVP8, "", 30)
	require.NoError(t, err)
	assert.NotEqual(t, sink.Track().ID(), other.Track().ID())
}

func TestNewTrackSink_StreamIDGrouping(t *testing.T) {
	video, err := NewTrackSink(CodecH264, "stream-a", 30)
	require.NoError(t, err)
	assert.Equal(t, "stream-a", video.Track().StreamID())
}

func TestNewTrackSink_UnknownCodec(t *testing.T) {
	_, err := NewTrackSink(CodecUnknown, "", 30)
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestTrackSink_WriteChunk(t *testing.T) {
	sink, err := NewTrackSink(CodecVP8, "", 30)
	require.NoError(t, err)

	// Unbound tracks accept samples as no-ops, so the sink can be wired
	// up before the peer connection negotiates.
	require.NoError(t, sink.WriteChunk(&EncodedChunk{
		Data:      []byte{1, 2, 3},
		Type:      ChunkTypeKey,
		Timestamp: 0,
	}))
	require.NoError(t, sink.WriteChunk(&EncodedChunk{
		Data:      []byte{4, 5},
		Timestamp: 33_333,
	}))
}

func TestTrackSink_WriteAfterClose(t *testing.T) {
	sink, err := NewTrackSink(CodecVP9, "", 30)
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	assert.ErrorIs(t, sink.WriteChunk(&EncodedChunk{Data: []byte{1}}), ErrClosed)
}
