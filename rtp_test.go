package webcodecs

import (
	"testing"
)

func TestNewChunkPacketizer_UnsupportedCodec(t *testing.T) {
	for _, codec := range []CodecID{CodecH265, CodecUnknown} {
		if _, err := NewChunkPacketizer(codec, 0x1234, 96, 1200); err == nil {
			t.Errorf("NewChunkPacketizer(%v) succeeded, want error", codec)
		}
	}
}

func TestChunkPacketizer_VP8(t *testing.T) {
	p, err := NewChunkPacketizer(CodecVP8, 0xCAFE, 96, 1200)
	if err != nil {
		t.Fatalf("NewChunkPacketizer: %v", err)
	}

	chunk := &EncodedChunk{
		Data:      make([]byte, 3000), // Forces fragmentation at 1200 MTU
		Type:      ChunkTypeKey,
		Timestamp: 1_000_000, // One second
	}
	packets, err := p.Packetize(chunk)
	if err != nil {
		t.Fatalf("Packetize: %v", err)
	}
	if len(packets) < 3 {
		t.Fatalf("got %d packets, want at least 3 for a 3000 byte frame", len(packets))
	}

	for i, pkt := range packets {
		if pkt.SSRC != 0xCAFE {
			t.Errorf("packet %d ssrc = %#x, want 0xCAFE", i, pkt.SSRC)
		}
		if pkt.PayloadType != 96 {
			t.Errorf("packet %d payload type = %d, want 96", i, pkt.PayloadType)
		}
		if pkt.Timestamp != 90000 {
			t.Errorf("packet %d timestamp = %d, want 90000", i, pkt.Timestamp)
		}
		wantMarker := i == len(packets)-1
		if pkt.Marker != wantMarker {
			t.Errorf("packet %d marker = %v, want %v", i, pkt.Marker, wantMarker)
		}
		if len(pkt.Payload) == 0 {
			t.Errorf("packet %d has empty payload", i)
		}
	}

	// Sequence numbers are consecutive within a frame.
	for i := 1; i < len(packets); i++ {
		if packets[i].SequenceNumber != packets[i-1].SequenceNumber+1 {
			t.Errorf("sequence gap between packet %d and %d", i-1, i)
		}
	}
}

func TestChunkPacketizer_H264AnnexB(t *testing.T) {
	p, err := NewChunkPacketizer(CodecH264, 1, 102, 1200)
	if err != nil {
		t.Fatalf("NewChunkPacketizer: %v", err)
	}

	// Two small NAL units with four byte start codes.
	data := []byte{
		0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0x00, 0x1f,
		0x00, 0x00, 0x00, 0x01, 0x65, 0x88, 0x84, 0x00,
	}
	packets, err := p.Packetize(&EncodedChunk{Data: data, Type: ChunkTypeKey, Timestamp: 33_333})
	if err != nil {
		t.Fatalf("Packetize: %v", err)
	}
	if len(packets) == 0 {
		t.Fatal("no packets for annex b frame")
	}
}

func TestChunkPacketizer_EmptyChunk(t *testing.T) {
	p, err := NewChunkPacketizer(CodecVP8, 1, 96, 1200)
	if err != nil {
		t.Fatalf("NewChunkPacketizer: %v", err)
	}
	packets, err := p.Packetize(&EncodedChunk{})
	if err != nil || packets != nil {
		t.Errorf("empty chunk = (%v, %v), want (nil, nil)", packets, err)
	}
}

func TestChunkPacketizer_PacketizeToBytes(t *testing.T) {
	p, err := NewChunkPacketizer(CodecVP8, 1, 96, 1200)
	if err != nil {
		t.Fatalf("NewChunkPacketizer: %v", err)
	}
	raw, err := p.PacketizeToBytes(&EncodedChunk{Data: []byte{0x10, 0x00, 0x9d, 0x01, 0x2a}, Timestamp: 0})
	if err != nil {
		t.Fatalf("PacketizeToBytes: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("no packet bytes")
	}
	for i, b := range raw {
		if len(b) <= rtpHeaderSize {
			t.Errorf("packet %d only %d bytes, want header plus payload", i, len(b))
		}
	}
}

func TestRTPTimestamp(t *testing.T) {
	tests := []struct {
		micros int64
		want   uint32
	}{
		{0, 0},
		{1_000_000, 90000},
		{33_333, 2999},
		{500_000, 45000},
	}
	for _, tt := range tests {
		if got := rtpTimestamp(tt.micros); got != tt.want {
			t.Errorf("rtpTimestamp(%d) = %d, want %d", tt.micros, got, tt.want)
		}
	}
}
