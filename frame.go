// Core frame and chunk types used across the webcodecs package.
package webcodecs

// PixelFormat represents video pixel formats.
type PixelFormat int

const (
	PixelFormatI420  PixelFormat = iota // YUV 4:2:0 planar (Y + U + V)
	PixelFormatI420A                    // YUV 4:2:0 planar with alpha (Y + U + V + A)
	PixelFormatNV12                     // YUV 4:2:0 semi-planar (Y + interleaved UV)
	PixelFormatRGBA                     // Packed RGBA, 4 bytes per pixel
	PixelFormatBGRA                     // Packed BGRA, 4 bytes per pixel
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatI420:
		return "I420"
	case PixelFormatI420A:
		return "I420A"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatRGBA:
		return "RGBA"
	case PixelFormatBGRA:
		return "BGRA"
	default:
		return "Unknown"
	}
}

// PlaneCount returns the number of planes for this pixel format.
func (p PixelFormat) PlaneCount() int {
	switch p {
	case PixelFormatI420:
		return 3 // Y, U, V
	case PixelFormatI420A:
		return 4 // Y, U, V, A
	case PixelFormatNV12:
		return 2 // Y, UV
	case PixelFormatRGBA, PixelFormatBGRA:
		return 1 // Packed
	default:
		return 0
	}
}

// HasAlpha returns true if the format carries an alpha channel.
func (p PixelFormat) HasAlpha() bool {
	return p == PixelFormatI420A || p == PixelFormatRGBA || p == PixelFormatBGRA
}

// VideoFrame represents a raw video frame.
//
// A frame handed to VideoEncoder.Encode is moved into the session: the
// caller must not touch the plane data afterwards. Frames delivered by
// VideoDecoder callbacks are copies owned by the receiver.
type VideoFrame struct {
	Data      [][]byte    // Plane data (1-4 planes depending on format)
	Stride    []int       // Stride for each plane in bytes
	Width     int         // Frame width in pixels
	Height    int         // Frame height in pixels
	Format    PixelFormat // Pixel format
	Timestamp int64       // Presentation timestamp in microseconds
	Duration  int64       // Frame duration in microseconds (0 = unknown)
}

// Clone creates a deep copy of the video frame.
func (f *VideoFrame) Clone() *VideoFrame {
	clone := &VideoFrame{
		Data:      make([][]byte, len(f.Data)),
		Stride:    make([]int, len(f.Stride)),
		Width:     f.Width,
		Height:    f.Height,
		Format:    f.Format,
		Timestamp: f.Timestamp,
		Duration:  f.Duration,
	}
	copy(clone.Stride, f.Stride)
	for i, plane := range f.Data {
		if plane != nil {
			clone.Data[i] = make([]byte, len(plane))
			copy(clone.Data[i], plane)
		}
	}
	return clone
}

// release drops the plane references so the backing memory can be
// reclaimed even if the frame struct is still referenced somewhere.
func (f *VideoFrame) release() {
	for i := range f.Data {
		f.Data[i] = nil
	}
}

// I420Size returns the total buffer size needed for an I420 frame.
func I420Size(width, height int) int {
	ySize := width * height
	uvSize := (width / 2) * (height / 2)
	return ySize + uvSize*2
}

// ChunkType indicates whether an encoded chunk is a keyframe or delta frame.
type ChunkType int

const (
	ChunkTypeKey   ChunkType = iota // Decodable independently
	ChunkTypeDelta                  // Requires previous chunks
)

func (t ChunkType) String() string {
	switch t {
	case ChunkTypeKey:
		return "key"
	case ChunkTypeDelta:
		return "delta"
	default:
		return "unknown"
	}
}

// EncodedChunk holds one encoded video access unit.
//
// Chunks delivered by VideoEncoder callbacks are copies owned by the
// receiver. A chunk handed to VideoDecoder.Decode is moved into the
// session and must not be mutated afterwards.
type EncodedChunk struct {
	Data      []byte    // Encoded bitstream data
	Type      ChunkType // Key or delta
	Timestamp int64     // Presentation timestamp in microseconds
	Duration  int64     // Duration in microseconds (0 = unknown)

	// Description carries out-of-band codec configuration data
	// (e.g. avcC for H.264 in AVC framing). Emitted alongside
	// keyframes when the engine provides it.
	Description []byte

	// TemporalLayerID is the SVC temporal layer (0 = base layer).
	TemporalLayerID uint8
}

// IsKey returns true if this chunk is a keyframe.
func (c *EncodedChunk) IsKey() bool {
	return c.Type == ChunkTypeKey
}

// Clone creates a deep copy of the encoded chunk.
func (c *EncodedChunk) Clone() *EncodedChunk {
	clone := &EncodedChunk{
		Type:            c.Type,
		Timestamp:       c.Timestamp,
		Duration:        c.Duration,
		TemporalLayerID: c.TemporalLayerID,
	}
	if c.Data != nil {
		clone.Data = make([]byte, len(c.Data))
		copy(clone.Data, c.Data)
	}
	if c.Description != nil {
		clone.Description = make([]byte, len(c.Description))
		copy(clone.Description, c.Description)
	}
	return clone
}

// release drops the data references held by the chunk.
func (c *EncodedChunk) release() {
	c.Data = nil
	c.Description = nil
}
