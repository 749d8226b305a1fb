package webcodecs

import (
	"fmt"
	"regexp"
	"strconv"
)

// ScalabilityMode describes a parsed WebCodecs scalability mode
// identifier such as "L1T2" or "S2T3h_KEY".
type ScalabilityMode struct {
	SpatialLayers  int
	TemporalLayers int
	IsSimulcast    bool    // "S" prefix
	Ratio          float64 // Spatial downscale ratio: 2.0, or 1.5 for "h" modes
	KeyFrameOnly   bool    // "_KEY" suffix
	Shifted        bool    // "_SHIFT" suffix
}

// scalabilityModePattern: [L|S]<spatial>T<temporal>[h][_KEY][_SHIFT]
var scalabilityModePattern = regexp.MustCompile(`^([LS])(\d)T(\d)(h)?(_KEY)?(_SHIFT)?$`)

// ParseScalabilityMode parses a scalability mode identifier. An empty
// string parses to the no-SVC mode (one spatial, one temporal layer).
func ParseScalabilityMode(mode string) (ScalabilityMode, error) {
	if mode == "" {
		return ScalabilityMode{SpatialLayers: 1, TemporalLayers: 1, Ratio: 2.0}, nil
	}

	m := scalabilityModePattern.FindStringSubmatch(mode)
	if m == nil {
		return ScalabilityMode{}, fmt.Errorf("%w: %q", ErrInvalidScalabilityMode, mode)
	}

	spatial, _ := strconv.Atoi(m[2])
	temporal, _ := strconv.Atoi(m[3])

	sm := ScalabilityMode{
		SpatialLayers:  spatial,
		TemporalLayers: temporal,
		IsSimulcast:    m[1] == "S",
		Ratio:          2.0,
		KeyFrameOnly:   m[5] != "",
		Shifted:        m[6] != "",
	}
	if m[4] != "" {
		sm.Ratio = 1.5
	}
	return sm, nil
}

// Supported reports whether this mode is within supported bounds:
// temporal-only SVC with 1-3 temporal layers. Spatial SVC and simulcast
// are rejected.
func (m ScalabilityMode) Supported() bool {
	if m.SpatialLayers > 1 || m.IsSimulcast {
		return false
	}
	return m.TemporalLayers >= 1 && m.TemporalLayers <= 3
}

// TemporalLayer holds the resolved per-layer rate parameters.
type TemporalLayer struct {
	// TargetBitrate is the cumulative bitrate of this layer and all
	// layers below it, in bits per second.
	TargetBitrate int64

	// RateDecimator divides the full framerate: a decimator of 2 means
	// the layer carries every 2nd frame.
	RateDecimator int
}

// temporalSplit is the fixed per-layer split applied to the target
// bitrate. Fractions are cumulative; the top layer always carries the
// full target.
type temporalSplit struct {
	Fractions   []float64
	Decimators  []int
	Periodicity int
	LayerIDs    []int // Layer id assignment across one periodicity cycle
}

var temporalSplitTable = map[int]temporalSplit{
	1: {
		Fractions:   []float64{1.0},
		Decimators:  []int{1},
		Periodicity: 1,
		LayerIDs:    []int{0},
	},
	2: {
		Fractions:   []float64{0.6, 1.0},
		Decimators:  []int{2, 1},
		Periodicity: 2,
		LayerIDs:    []int{0, 1},
	},
	3: {
		Fractions:   []float64{0.25, 0.5, 1.0},
		Decimators:  []int{4, 2, 1},
		Periodicity: 4,
		LayerIDs:    []int{0, 2, 1, 2},
	},
}

// expandTemporalLayers resolves a supported mode into per-layer rate
// parameters for the given target bitrate.
func expandTemporalLayers(mode ScalabilityMode, bitrate int64) ([]TemporalLayer, temporalSplit, error) {
	if !mode.Supported() {
		return nil, temporalSplit{}, fmt.Errorf(
			"%w: only L1T1, L1T2 and L1T3 are supported", ErrInvalidScalabilityMode)
	}

	split := temporalSplitTable[mode.TemporalLayers]
	layers := make([]TemporalLayer, mode.TemporalLayers)
	for i := range layers {
		layers[i] = TemporalLayer{
			TargetBitrate: int64(float64(bitrate) * split.Fractions[i]),
			RateDecimator: split.Decimators[i],
		}
	}
	return layers, split, nil
}
