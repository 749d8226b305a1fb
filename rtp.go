package webcodecs

import (
	"fmt"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
)

// DefaultMTU is the default maximum transmission unit for RTP packets.
const DefaultMTU = 1200

const rtpHeaderSize = 12

// videoClockRate is the 90 kHz RTP clock used for all video payloads.
const videoClockRate = 90000

// ChunkPacketizer converts encoded chunks into RTP packets using the
// payload format for the chunk's codec. Safe for concurrent use, so it
// can be driven directly from an encoder output callback.
type ChunkPacketizer struct {
	ssrc        uint32
	payloadType uint8
	mtu         int
	sequencer   rtp.Sequencer
	payloader   rtp.Payloader
	mu          sync.Mutex
}

// NewChunkPacketizer creates a packetizer for the given codec. H.264
// chunks must be in Annex B format.
func NewChunkPacketizer(codec CodecID, ssrc uint32, pt uint8, mtu int) (*ChunkPacketizer, error) {
	if mtu <= 0 {
		mtu = DefaultMTU
	}

	var payloader rtp.Payloader
	switch codec {
	case CodecVP8:
		payloader = &codecs.VP8Payloader{EnablePictureID: true}
	case CodecVP9:
		payloader = &codecs.VP9Payloader{}
	case CodecH264:
		payloader = &codecs.H264Payloader{}
	case CodecAV1:
		payloader = &codecs.AV1Payloader{}
	default:
		return nil, fmt.Errorf("%w: no RTP payload format for %s", ErrUnknownCodec, codec)
	}

	return &ChunkPacketizer{
		ssrc:        ssrc,
		payloadType: pt,
		mtu:         mtu,
		sequencer:   rtp.NewRandomSequencer(),
		payloader:   payloader,
	}, nil
}

// Packetize converts an encoded chunk to RTP packets. The chunk's
// microsecond timestamp is rebased to the 90 kHz RTP clock.
func (p *ChunkPacketizer) Packetize(chunk *EncodedChunk) ([]*rtp.Packet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(chunk.Data) == 0 {
		return nil, nil
	}

	payloads := p.payloader.Payload(uint16(p.mtu-rtpHeaderSize), chunk.Data)
	if len(payloads) == 0 {
		return nil, nil
	}

	timestamp := rtpTimestamp(chunk.Timestamp)
	packets := make([]*rtp.Packet, len(payloads))
	for i, payload := range payloads {
		packets[i] = &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         i == len(payloads)-1,
				PayloadType:    p.payloadType,
				SequenceNumber: p.sequencer.NextSequenceNumber(),
				Timestamp:      timestamp,
				SSRC:           p.ssrc,
			},
			Payload: payload,
		}
	}
	return packets, nil
}

// PacketizeToBytes converts an encoded chunk to raw RTP packet bytes.
func (p *ChunkPacketizer) PacketizeToBytes(chunk *EncodedChunk) ([][]byte, error) {
	packets, err := p.Packetize(chunk)
	if err != nil {
		return nil, err
	}
	result := make([][]byte, len(packets))
	for i, pkt := range packets {
		result[i], err = pkt.Marshal()
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (p *ChunkPacketizer) SSRC() uint32       { p.mu.Lock(); defer p.mu.Unlock(); return p.ssrc }
func (p *ChunkPacketizer) PayloadType() uint8 { p.mu.Lock(); defer p.mu.Unlock(); return p.payloadType }
func (p *ChunkPacketizer) MTU() int           { p.mu.Lock(); defer p.mu.Unlock(); return p.mtu }
func (p *ChunkPacketizer) SetMTU(mtu int)     { p.mu.Lock(); p.mtu = mtu; p.mu.Unlock() }

func rtpTimestamp(micros int64) uint32 {
	return uint32(micros * (videoClockRate / 1000) / 1000)
}
