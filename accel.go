package webcodecs

import (
	"runtime"
	"sync"
)

// Accelerator identifies a hardware acceleration backend.
type Accelerator int

const (
	AcceleratorNone         Accelerator = iota // Software only
	AcceleratorVideoToolbox                    // Apple VideoToolbox
	AcceleratorNVENC                           // NVIDIA NVENC/NVDEC
	AcceleratorQSV                             // Intel Quick Sync Video
	AcceleratorVAAPI                           // VA-API (Linux)
)

func (a Accelerator) String() string {
	switch a {
	case AcceleratorNone:
		return "none"
	case AcceleratorVideoToolbox:
		return "videotoolbox"
	case AcceleratorNVENC:
		return "nvenc"
	case AcceleratorQSV:
		return "qsv"
	case AcceleratorVAAPI:
		return "vaapi"
	default:
		return "unknown"
	}
}

// AcceleratorPreference expresses the caller's hardware acceleration
// preference, mirroring the WebCodecs hardwareAcceleration member.
type AcceleratorPreference int

const (
	PreferenceNone     AcceleratorPreference = iota // No preference (default)
	PreferHardware                                  // Require hardware; no software fallback
	PreferSoftware                                  // Skip accelerator enumeration
)

func (p AcceleratorPreference) String() string {
	switch p {
	case PreferenceNone:
		return "no-preference"
	case PreferHardware:
		return "prefer-hardware"
	case PreferSoftware:
		return "prefer-software"
	default:
		return "unknown"
	}
}

// ParseAcceleratorPreference parses a WebCodecs hardwareAcceleration
// string. An empty string maps to no-preference.
func ParseAcceleratorPreference(s string) (AcceleratorPreference, bool) {
	switch s {
	case "", "no-preference":
		return PreferenceNone, true
	case "prefer-hardware":
		return PreferHardware, true
	case "prefer-software":
		return PreferSoftware, true
	default:
		return PreferenceNone, false
	}
}

// AcceleratorCandidate is one ranked hardware backend option produced by
// configuration resolution. Read-only after resolution.
type AcceleratorCandidate struct {
	Type Accelerator

	// InputFormat is the pixel format the accelerator expects as input.
	InputFormat PixelFormat

	// RequiresFramePool is true when the backend needs an auxiliary
	// shared frame pool (surface-backed accelerators like VA-API).
	RequiresFramePool bool
}

// acceleratorMeta describes one backend in the candidate tables.
type acceleratorMeta struct {
	Type              Accelerator
	InputFormat       PixelFormat
	RequiresFramePool bool
	MinWidth          int // 0 = no constraint
	MinHeight         int
}

// Candidate tables per codec family and platform, ordered by expected
// desirability: platform-native backend first, then cross-platform ones.
// Adding a backend or codec family is a data change.
var acceleratorTable = map[string]map[CodecID][]acceleratorMeta{
	"darwin": {
		CodecH264: {
			{Type: AcceleratorVideoToolbox, InputFormat: PixelFormatNV12},
		},
		CodecH265: {
			{Type: AcceleratorVideoToolbox, InputFormat: PixelFormatNV12},
		},
	},
	"linux": {
		CodecH264: {
			{Type: AcceleratorNVENC, InputFormat: PixelFormatNV12},
			{Type: AcceleratorQSV, InputFormat: PixelFormatNV12},
			{Type: AcceleratorVAAPI, InputFormat: PixelFormatNV12, RequiresFramePool: true},
		},
		CodecH265: {
			{Type: AcceleratorNVENC, InputFormat: PixelFormatNV12},
			{Type: AcceleratorQSV, InputFormat: PixelFormatNV12},
			{Type: AcceleratorVAAPI, InputFormat: PixelFormatNV12, RequiresFramePool: true},
		},
		CodecVP9: {
			{Type: AcceleratorQSV, InputFormat: PixelFormatNV12},
			{Type: AcceleratorVAAPI, InputFormat: PixelFormatNV12, RequiresFramePool: true},
		},
		CodecAV1: {
			{Type: AcceleratorNVENC, InputFormat: PixelFormatNV12, MinWidth: 192, MinHeight: 128},
			{Type: AcceleratorQSV, InputFormat: PixelFormatNV12},
			{Type: AcceleratorVAAPI, InputFormat: PixelFormatNV12, RequiresFramePool: true},
		},
	},
	"windows": {
		CodecH264: {
			{Type: AcceleratorNVENC, InputFormat: PixelFormatNV12},
			{Type: AcceleratorQSV, InputFormat: PixelFormatNV12},
		},
		CodecH265: {
			{Type: AcceleratorNVENC, InputFormat: PixelFormatNV12},
			{Type: AcceleratorQSV, InputFormat: PixelFormatNV12},
		},
		CodecAV1: {
			{Type: AcceleratorNVENC, InputFormat: PixelFormatNV12, MinWidth: 192, MinHeight: 128},
			{Type: AcceleratorQSV, InputFormat: PixelFormatNV12},
		},
	},
}

// acceleratorCandidates enumerates the ranked backends for a codec
// family at the given resolution on the current platform.
func acceleratorCandidates(codec CodecID, width, height int) []AcceleratorCandidate {
	return acceleratorCandidatesFor(runtime.GOOS, codec, width, height)
}

func acceleratorCandidatesFor(goos string, codec CodecID, width, height int) []AcceleratorCandidate {
	metas := acceleratorTable[goos][codec]
	candidates := make([]AcceleratorCandidate, 0, len(metas))
	for _, m := range metas {
		if m.MinWidth > 0 && width < m.MinWidth {
			continue
		}
		if m.MinHeight > 0 && height < m.MinHeight {
			continue
		}
		candidates = append(candidates, AcceleratorCandidate{
			Type:              m.Type,
			InputFormat:       m.InputFormat,
			RequiresFramePool: m.RequiresFramePool,
		})
	}
	return candidates
}

// AcceleratorContext is an opaque device context created for a hardware
// backend. It is owned by the session worker and released exactly once.
type AcceleratorContext interface {
	// Accelerator returns the backend type this context was created for.
	Accelerator() Accelerator

	// Close releases the device context. Idempotent.
	Close() error
}

// AcceleratorContextProvider creates device contexts for hardware
// backends. A nil return means the backend is unavailable on this
// machine; the session then continues with software.
type AcceleratorContextProvider interface {
	Create(t Accelerator) AcceleratorContext
}

var (
	acceleratorProviderMu sync.RWMutex
	acceleratorProvider   AcceleratorContextProvider
)

// SetAcceleratorContextProvider installs the provider used by sessions
// to create hardware device contexts. Passing nil disables hardware
// acceleration entirely (every backend reports unavailable).
func SetAcceleratorContextProvider(p AcceleratorContextProvider) {
	acceleratorProviderMu.Lock()
	acceleratorProvider = p
	acceleratorProviderMu.Unlock()
}

func currentAcceleratorProvider() AcceleratorContextProvider {
	acceleratorProviderMu.RLock()
	defer acceleratorProviderMu.RUnlock()
	return acceleratorProvider
}
