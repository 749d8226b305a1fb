package webcodecs

import "fmt"

// EncoderConfig configures a VideoEncoder session, in the shape of the
// WebCodecs VideoEncoderConfig dictionary. String members use the
// WebCodecs vocabulary and are validated during Configure.
type EncoderConfig struct {
	Codec  string // Codec string, e.g. "vp8", "avc1.42001f", "av01.0.04M.08"
	Width  int    // Frame width in pixels
	Height int    // Frame height in pixels

	Bitrate     int64   // Target bitrate in bits per second (0 = 2 Mbps default)
	BitrateMode string  // "constant", "variable" (default), "quantizer"
	Framerate   float64 // Target framerate (0 = 30)

	LatencyMode          string // "quality" (default) or "realtime"
	HardwareAcceleration string // "no-preference" (default), "prefer-hardware", "prefer-software"
	ScalabilityMode      string // "", "L1T1", "L1T2", "L1T3"

	Alpha      string          // "discard" (default) or "keep"
	AVCFormat  string          // "annexb" (default) or "avc"
	ColorSpace VideoColorSpace // Optional color interpretation
}

// DefaultEncoderConfig returns an encoder configuration with defaults
// filled in for the given codec and dimensions.
func DefaultEncoderConfig(codec string, width, height int) EncoderConfig {
	return EncoderConfig{
		Codec:     codec,
		Width:     width,
		Height:    height,
		Bitrate:   2_000_000,
		Framerate: 30,
	}
}

// DecoderConfig configures a VideoDecoder session, in the shape of the
// WebCodecs VideoDecoderConfig dictionary.
type DecoderConfig struct {
	Codec       string // Codec string
	CodedWidth  int    // Coded width in pixels (0 = from bitstream)
	CodedHeight int    // Coded height in pixels (0 = from bitstream)

	// Description carries out-of-band codec configuration data
	// (e.g. avcC). Moved into the session at Configure time.
	Description []byte

	HardwareAcceleration string          // Same vocabulary as EncoderConfig
	OptimizeForLatency   bool            // Emit frames with minimal internal buffering
	ColorSpace           VideoColorSpace // Optional color override
}

// RateControl holds the concrete numeric rate parameters resolved from
// a bitrate mode for one codec family.
type RateControl struct {
	Mode          BitrateMode
	TargetBitrate int64 // 0 in quantizer mode
	MinBitrate    int64 // CBR: pinned to target
	MaxBitrate    int64 // CBR: pinned to target
	BufferSize    int64 // CBR: one second worth of target
	CRF           int   // Quantizer mode: constant rate factor (-1 = unset)
	QMin          int   // Quantizer bounds (-1 = engine default)
	QMax          int
}

// quantizer mode defaults per codec family. Data, not control flow.
var quantizerDefaults = map[CodecID]struct {
	CRF, QMin, QMax int
}{
	CodecVP8:  {CRF: 30, QMin: 0, QMax: 63},
	CodecVP9:  {CRF: 30, QMin: 0, QMax: 63},
	CodecH264: {CRF: 23, QMin: -1, QMax: -1},
	CodecH265: {CRF: 23, QMin: -1, QMax: -1},
	CodecAV1:  {CRF: 30, QMin: -1, QMax: -1},
}

// resolveRateControl merges a bitrate policy into concrete numeric
// parameters for the codec family.
func resolveRateControl(codec CodecID, mode BitrateMode, bitrate int64) RateControl {
	rc := RateControl{Mode: mode, CRF: -1, QMin: -1, QMax: -1}

	switch mode {
	case BitrateModeConstant:
		rc.TargetBitrate = bitrate
		rc.MinBitrate = bitrate
		rc.MaxBitrate = bitrate
		rc.BufferSize = bitrate // 1 second buffer
	case BitrateModeQuantizer:
		q := quantizerDefaults[codec]
		rc.CRF = q.CRF
		rc.QMin = q.QMin
		rc.QMax = q.QMax
	default: // variable
		rc.TargetBitrate = bitrate
	}
	return rc
}

// LatencyTuning holds the per-family encoder options resolved from a
// latency mode. Negative ints and empty strings mean engine default.
type LatencyTuning struct {
	Mode        LatencyMode
	Preset      string // e.g. "ultrafast", "medium", "realtime", "good"
	Tune        string // e.g. "zerolatency"
	CPUUsed     int    // libvpx/libaom speed knob
	LagInFrames int
	MaxBFrames  int
	RefFrames   int
	Threads     int
}

func defaultLatencyTuning(mode LatencyMode) LatencyTuning {
	return LatencyTuning{
		Mode:        mode,
		CPUUsed:     -1,
		LagInFrames: -1,
		MaxBFrames:  -1,
		RefFrames:   -1,
		Threads:     -1,
	}
}

// latency tuning tables per codec family. Realtime pins single-thread,
// zero-lag, no-B-frame, single-reference settings; quality keeps the
// engine's balanced defaults.
var latencyTable = map[CodecID]map[LatencyMode]LatencyTuning{
	CodecH264: {
		LatencyModeQuality:  {Preset: "medium"},
		LatencyModeRealtime: {Preset: "ultrafast", Tune: "zerolatency", LagInFrames: 0, MaxBFrames: 0, RefFrames: 1, Threads: 1},
	},
	CodecH265: {
		LatencyModeQuality:  {Preset: "medium"},
		LatencyModeRealtime: {Preset: "ultrafast", Tune: "zerolatency", LagInFrames: 0, MaxBFrames: 0, RefFrames: 1, Threads: 1},
	},
	CodecVP8: {
		LatencyModeQuality:  {Preset: "good", CPUUsed: 4},
		LatencyModeRealtime: {Preset: "realtime", CPUUsed: 8, LagInFrames: 0, MaxBFrames: 0, RefFrames: 1, Threads: 1},
	},
	CodecVP9: {
		LatencyModeQuality:  {Preset: "good", CPUUsed: 4},
		LatencyModeRealtime: {Preset: "realtime", CPUUsed: 8, LagInFrames: 0, MaxBFrames: 0, RefFrames: 1, Threads: 1},
	},
	CodecAV1: {
		LatencyModeQuality:  {CPUUsed: 6},
		LatencyModeRealtime: {Preset: "realtime", CPUUsed: 10, LagInFrames: 0, MaxBFrames: 0, RefFrames: 1, Threads: 1},
	},
}

func resolveLatencyTuning(codec CodecID, mode LatencyMode) LatencyTuning {
	tuning := defaultLatencyTuning(mode)
	override, ok := latencyTable[codec][mode]
	if !ok {
		return tuning
	}
	if override.Preset != "" {
		tuning.Preset = override.Preset
	}
	if override.Tune != "" {
		tuning.Tune = override.Tune
	}
	if override.CPUUsed != 0 {
		tuning.CPUUsed = override.CPUUsed
	}
	if mode == LatencyModeRealtime {
		tuning.LagInFrames = override.LagInFrames
		tuning.MaxBFrames = override.MaxBFrames
		tuning.RefFrames = override.RefFrames
		tuning.Threads = override.Threads
	}
	return tuning
}

// ColorInfo is the numeric color interpretation attached to a plan.
type ColorInfo struct {
	Primaries ColorPrimaries
	Transfer  ColorTransfer
	Matrix    ColorMatrix
	FullRange bool
}

// TemporalConfig holds the expanded temporal scalability parameters.
type TemporalConfig struct {
	Layers      []TemporalLayer
	Periodicity int
	LayerIDs    []int
}

// OpenPlan is the concrete engine-open request produced by
// configuration resolution. Immutable once resolved, except for the
// Accelerator/AcceleratorContext pair pinned by the session per open
// attempt.
type OpenPlan struct {
	Codec  CodecID
	Encode bool // true = encoder session, false = decoder session

	Width  int
	Height int

	PixelFormat PixelFormat
	Framerate   float64
	GOPSize     int

	Rate     RateControl
	Latency  LatencyTuning
	Temporal TemporalConfig
	Color    ColorInfo

	Alpha     bool
	AVCFormat AVCFormat

	// Decoder-only members.
	Description        []byte
	OptimizeForLatency bool

	// Accelerator is the backend selected for this open attempt
	// (AcceleratorNone for software). The session fills these in.
	Accelerator        AcceleratorCandidate
	AcceleratorContext AcceleratorContext
}

// resolvedConfig is the resolver output: the plan template plus the
// ranked accelerator candidates and the original preference.
type resolvedConfig struct {
	plan       OpenPlan
	candidates []AcceleratorCandidate
	preference AcceleratorPreference
}

// resolveEncoderConfig validates an encoder request and produces the
// concrete open plan. No session or engine state is touched; failure
// leaves nothing behind.
func resolveEncoderConfig(cfg EncoderConfig) (*resolvedConfig, error) {
	codec := ParseCodec(cfg.Codec)
	if codec == CodecUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, cfg.Codec)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}

	bitrateMode, ok := ParseBitrateMode(cfg.BitrateMode)
	if !ok {
		return nil, fmt.Errorf("%w: unknown bitrateMode %q", ErrInvalidConfig, cfg.BitrateMode)
	}
	latencyMode, ok := ParseLatencyMode(cfg.LatencyMode)
	if !ok {
		return nil, fmt.Errorf("%w: unknown latencyMode %q", ErrInvalidConfig, cfg.LatencyMode)
	}
	preference, ok := ParseAcceleratorPreference(cfg.HardwareAcceleration)
	if !ok {
		return nil, fmt.Errorf("%w: unknown hardwareAcceleration %q", ErrInvalidConfig, cfg.HardwareAcceleration)
	}

	var avcFormat AVCFormat
	switch cfg.AVCFormat {
	case "", "annexb":
		avcFormat = AVCFormatAnnexB
	case "avc":
		avcFormat = AVCFormatAVC
	default:
		return nil, fmt.Errorf("%w: unknown avc format %q", ErrInvalidConfig, cfg.AVCFormat)
	}

	var alpha bool
	switch cfg.Alpha {
	case "", "discard":
	case "keep":
		alpha = true
	default:
		return nil, fmt.Errorf("%w: unknown alpha mode %q", ErrInvalidConfig, cfg.Alpha)
	}

	bitrate := cfg.Bitrate
	if bitrate <= 0 {
		bitrate = 2_000_000
	}
	framerate := cfg.Framerate
	if framerate <= 0 {
		framerate = 30
	}

	mode, err := ParseScalabilityMode(cfg.ScalabilityMode)
	if err != nil {
		return nil, err
	}
	layers, split, err := expandTemporalLayers(mode, bitrate)
	if err != nil {
		return nil, fmt.Errorf("%w (got %q)", err, cfg.ScalabilityMode)
	}

	var candidates []AcceleratorCandidate
	if preference != PreferSoftware {
		candidates = acceleratorCandidates(codec, cfg.Width, cfg.Height)
	}

	// Alpha preservation is a libvpx-only path, matching the engines
	// that can carry an alpha plane in-band.
	pixelFormat := PixelFormatI420
	if alpha && (codec == CodecVP8 || codec == CodecVP9) {
		pixelFormat = PixelFormatI420A
	}

	// Keyframe every second.
	gop := int(framerate)
	if gop < 1 {
		gop = 1
	}

	return &resolvedConfig{
		plan: OpenPlan{
			Codec:       codec,
			Encode:      true,
			Width:       cfg.Width,
			Height:      cfg.Height,
			PixelFormat: pixelFormat,
			Framerate:   framerate,
			GOPSize:     gop,
			Rate:        resolveRateControl(codec, bitrateMode, bitrate),
			Latency:     resolveLatencyTuning(codec, latencyMode),
			Temporal: TemporalConfig{
				Layers:      layers,
				Periodicity: split.Periodicity,
				LayerIDs:    split.LayerIDs,
			},
			Color:     resolveColorInfo(cfg.ColorSpace),
			Alpha:     alpha,
			AVCFormat: avcFormat,
		},
		candidates: candidates,
		preference: preference,
	}, nil
}

// resolveDecoderConfig validates a decoder request and produces the
// concrete open plan.
func resolveDecoderConfig(cfg DecoderConfig) (*resolvedConfig, error) {
	codec := ParseCodec(cfg.Codec)
	if codec == CodecUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, cfg.Codec)
	}
	if cfg.CodedWidth < 0 || cfg.CodedHeight < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.CodedWidth, cfg.CodedHeight)
	}
	preference, ok := ParseAcceleratorPreference(cfg.HardwareAcceleration)
	if !ok {
		return nil, fmt.Errorf("%w: unknown hardwareAcceleration %q", ErrInvalidConfig, cfg.HardwareAcceleration)
	}

	var candidates []AcceleratorCandidate
	if preference != PreferSoftware {
		candidates = acceleratorCandidates(codec, cfg.CodedWidth, cfg.CodedHeight)
	}

	return &resolvedConfig{
		plan: OpenPlan{
			Codec:              codec,
			Encode:             false,
			Width:              cfg.CodedWidth,
			Height:             cfg.CodedHeight,
			PixelFormat:        PixelFormatI420,
			Color:              resolveColorInfo(cfg.ColorSpace),
			Description:        cfg.Description,
			OptimizeForLatency: cfg.OptimizeForLatency,
		},
		candidates: candidates,
		preference: preference,
	}, nil
}

func resolveColorInfo(cs VideoColorSpace) ColorInfo {
	return ColorInfo{
		Primaries: ParseColorPrimaries(cs.Primaries),
		Transfer:  ParseColorTransfer(cs.Transfer),
		Matrix:    ParseColorMatrix(cs.Matrix),
		FullRange: cs.FullRange,
	}
}
