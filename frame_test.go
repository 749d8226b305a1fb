package webcodecs

import (
	"testing"
)

func TestPixelFormat_PlaneCount(t *testing.T) {
	tests := []struct {
		format PixelFormat
		want   int
	}{
		{PixelFormatI420, 3},
		{PixelFormatI420A, 4},
		{PixelFormatNV12, 2},
		{PixelFormatRGBA, 1},
		{PixelFormatBGRA, 1},
		{PixelFormat(99), 0},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			if got := tt.format.PlaneCount(); got != tt.want {
				t.Errorf("PlaneCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPixelFormat_HasAlpha(t *testing.T) {
	if PixelFormatI420.HasAlpha() || PixelFormatNV12.HasAlpha() {
		t.Error("I420/NV12 should not report alpha")
	}
	if !PixelFormatI420A.HasAlpha() || !PixelFormatRGBA.HasAlpha() || !PixelFormatBGRA.HasAlpha() {
		t.Error("I420A/RGBA/BGRA should report alpha")
	}
}

func TestI420Size(t *testing.T) {
	tests := []struct {
		width, height, want int
	}{
		{640, 480, 640*480 + 2*320*240},
		{1280, 720, 1280*720 + 2*640*360},
		{2, 2, 4 + 2},
	}

	for _, tt := range tests {
		if got := I420Size(tt.width, tt.height); got != tt.want {
			t.Errorf("I420Size(%d, %d) = %d, want %d", tt.width, tt.height, got, tt.want)
		}
	}
}

func TestVideoFrame_Clone(t *testing.T) {
	frame := &VideoFrame{
		Data:      [][]byte{{1, 2, 3, 4}, {5, 6}, {7, 8}},
		Stride:    []int{2, 1, 1},
		Width:     2,
		Height:    2,
		Format:    PixelFormatI420,
		Timestamp: 1000,
		Duration:  33333,
	}

	clone := frame.Clone()
	if clone.Width != frame.Width || clone.Timestamp != frame.Timestamp || clone.Format != frame.Format {
		t.Errorf("clone metadata = %+v, want %+v", clone, frame)
	}

	clone.Data[0][0] = 99
	if frame.Data[0][0] == 99 {
		t.Error("clone shares plane memory with the original")
	}
}

func TestEncodedChunk_Clone(t *testing.T) {
	chunk := &EncodedChunk{
		Data:            []byte{1, 2, 3},
		Type:            ChunkTypeKey,
		Timestamp:       2000,
		Duration:        33333,
		Description:     []byte{9, 9},
		TemporalLayerID: 1,
	}

	clone := chunk.Clone()
	if !clone.IsKey() || clone.Timestamp != 2000 || clone.TemporalLayerID != 1 {
		t.Errorf("clone metadata = %+v, want %+v", clone, chunk)
	}

	clone.Data[0] = 99
	clone.Description[0] = 8
	if chunk.Data[0] == 99 || chunk.Description[0] == 8 {
		t.Error("clone shares buffers with the original")
	}
}

func TestChunkType_String(t *testing.T) {
	if ChunkTypeKey.String() != "key" || ChunkTypeDelta.String() != "delta" {
		t.Error("unexpected chunk type strings")
	}
	if ChunkType(7).String() != "unknown" {
		t.Error("out-of-range chunk type should be unknown")
	}
}
