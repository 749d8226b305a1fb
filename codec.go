package webcodecs

import "strings"

// CodecID identifies the video codec family.
type CodecID int

const (
	CodecUnknown CodecID = iota
	CodecVP8
	CodecVP9
	CodecH264
	CodecH265
	CodecAV1
)

func (c CodecID) String() string {
	switch c {
	case CodecVP8:
		return "VP8"
	case CodecVP9:
		return "VP9"
	case CodecH264:
		return "H264"
	case CodecH265:
		return "H265"
	case CodecAV1:
		return "AV1"
	default:
		return "Unknown"
	}
}

// MimeType returns the MIME type for this codec family.
func (c CodecID) MimeType() string {
	switch c {
	case CodecVP8:
		return "video/VP8"
	case CodecVP9:
		return "video/VP9"
	case CodecH264:
		return "video/H264"
	case CodecH265:
		return "video/H265"
	case CodecAV1:
		return "video/AV1"
	default:
		return ""
	}
}

// ParseCodec maps a WebCodecs registry codec string to a codec family.
// Accepts full registry strings ("vp09.00.10.08", "avc1.42001f",
// "hev1.1.6.L93.B0", "av01.0.04M.08") as well as bare family names.
// Returns CodecUnknown if the string is not recognized.
func ParseCodec(codec string) CodecID {
	s := strings.ToLower(strings.TrimSpace(codec))
	if s == "" {
		return CodecUnknown
	}

	switch {
	case s == "vp8":
		return CodecVP8
	case s == "vp9" || strings.HasPrefix(s, "vp09."):
		return CodecVP9
	case s == "h264" || strings.HasPrefix(s, "avc1.") || strings.HasPrefix(s, "avc3."):
		return CodecH264
	case s == "h265" || s == "hevc" ||
		strings.HasPrefix(s, "hvc1.") || strings.HasPrefix(s, "hev1."):
		return CodecH265
	case s == "av1" || strings.HasPrefix(s, "av01."):
		return CodecAV1
	default:
		return CodecUnknown
	}
}

// BitrateMode selects the encoder rate control mode.
type BitrateMode int

const (
	BitrateModeVariable  BitrateMode = iota // VBR (default)
	BitrateModeConstant                     // CBR
	BitrateModeQuantizer                    // Constant quality (CRF/CQP)
)

func (m BitrateMode) String() string {
	switch m {
	case BitrateModeVariable:
		return "variable"
	case BitrateModeConstant:
		return "constant"
	case BitrateModeQuantizer:
		return "quantizer"
	default:
		return "unknown"
	}
}

// ParseBitrateMode parses a WebCodecs bitrateMode string.
// An empty string maps to the default variable mode.
func ParseBitrateMode(s string) (BitrateMode, bool) {
	switch s {
	case "", "variable":
		return BitrateModeVariable, true
	case "constant":
		return BitrateModeConstant, true
	case "quantizer":
		return BitrateModeQuantizer, true
	default:
		return BitrateModeVariable, false
	}
}

// LatencyMode selects the encoder latency/quality tradeoff.
type LatencyMode int

const (
	LatencyModeQuality  LatencyMode = iota // Prioritize quality (default)
	LatencyModeRealtime                    // Prioritize low latency
)

func (m LatencyMode) String() string {
	switch m {
	case LatencyModeQuality:
		return "quality"
	case LatencyModeRealtime:
		return "realtime"
	default:
		return "unknown"
	}
}

// ParseLatencyMode parses a WebCodecs latencyMode string.
func ParseLatencyMode(s string) (LatencyMode, bool) {
	switch s {
	case "", "quality":
		return LatencyModeQuality, true
	case "realtime":
		return LatencyModeRealtime, true
	default:
		return LatencyModeQuality, false
	}
}

// AVCFormat selects the H.264 bitstream framing.
type AVCFormat int

const (
	AVCFormatAnnexB AVCFormat = iota // Start-code delimited (default)
	AVCFormatAVC                     // Length-prefixed, description out of band
)

func (f AVCFormat) String() string {
	switch f {
	case AVCFormatAnnexB:
		return "annexb"
	case AVCFormatAVC:
		return "avc"
	default:
		return "unknown"
	}
}
