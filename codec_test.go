package webcodecs

import (
	"testing"
)

func TestCodecID_String(t *testing.T) {
	tests := []struct {
		codec CodecID
		want  string
	}{
		{CodecVP8, "VP8"},
		{CodecVP9, "VP9"},
		{CodecH264, "H264"},
		{CodecH265, "H265"},
		{CodecAV1, "AV1"},
		{CodecUnknown, "Unknown"},
		{CodecID(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.codec.String(); got != tt.want {
				t.Errorf("CodecID.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodecID_MimeType(t *testing.T) {
	tests := []struct {
		codec CodecID
		want  string
	}{
		{CodecVP8, "video/VP8"},
		{CodecVP9, "video/VP9"},
		{CodecH264, "video/H264"},
		{CodecH265, "video/H265"},
		{CodecAV1, "video/AV1"},
		{CodecUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.codec.String(), func(t *testing.T) {
			if got := tt.codec.MimeType(); got != tt.want {
				t.Errorf("CodecID.MimeType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		input string
		want  CodecID
	}{
		{"vp8", CodecVP8},
		{"VP8", CodecVP8},
		{"vp9", CodecVP9},
		{"vp09.00.10.08", CodecVP9},
		{"vp09.02.10.10.01.09.16.09.01", CodecVP9},
		{"h264", CodecH264},
		{"avc1.42001f", CodecH264},
		{"avc1.640028", CodecH264},
		{"avc3.42001f", CodecH264},
		{"h265", CodecH265},
		{"hevc", CodecH265},
		{"hvc1.1.6.L93.B0", CodecH265},
		{"hev1.1.6.L93.B0", CodecH265},
		{"av1", CodecAV1},
		{"av01.0.04M.08", CodecAV1},
		{"  vp8  ", CodecVP8},
		{"", CodecUnknown},
		{"theora", CodecUnknown},
		{"vp09", CodecUnknown},
		{"avc1", CodecUnknown},
	}

	for _, tt := range tests {
		name := tt.input
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			if got := ParseCodec(tt.input); got != tt.want {
				t.Errorf("ParseCodec(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBitrateMode(t *testing.T) {
	tests := []struct {
		input string
		want  BitrateMode
		ok    bool
	}{
		{"", BitrateModeVariable, true},
		{"variable", BitrateModeVariable, true},
		{"constant", BitrateModeConstant, true},
		{"quantizer", BitrateModeQuantizer, true},
		{"cbr", BitrateModeVariable, false},
	}

	for _, tt := range tests {
		got, ok := ParseBitrateMode(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBitrateMode(%q) = (%v, %v), want (%v, %v)",
				tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseLatencyMode(t *testing.T) {
	tests := []struct {
		input string
		want  LatencyMode
		ok    bool
	}{
		{"", LatencyModeQuality, true},
		{"quality", LatencyModeQuality, true},
		{"realtime", LatencyModeRealtime, true},
		{"lowlatency", LatencyModeQuality, false},
	}

	for _, tt := range tests {
		got, ok := ParseLatencyMode(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLatencyMode(%q) = (%v, %v), want (%v, %v)",
				tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
