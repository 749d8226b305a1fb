package webcodecs

import (
	"errors"
	"testing"
)

func TestParseScalabilityMode(t *testing.T) {
	tests := []struct {
		input string
		want  ScalabilityMode
	}{
		{"", ScalabilityMode{SpatialLayers: 1, TemporalLayers: 1, Ratio: 2.0}},
		{"L1T1", ScalabilityMode{SpatialLayers: 1, TemporalLayers: 1, Ratio: 2.0}},
		{"L1T2", ScalabilityMode{SpatialLayers: 1, TemporalLayers: 2, Ratio: 2.0}},
		{"L1T3", ScalabilityMode{SpatialLayers: 1, TemporalLayers: 3, Ratio: 2.0}},
		{"L3T3", ScalabilityMode{SpatialLayers: 3, TemporalLayers: 3, Ratio: 2.0}},
		{"L2T2h", ScalabilityMode{SpatialLayers: 2, TemporalLayers: 2, Ratio: 1.5}},
		{"S2T3", ScalabilityMode{SpatialLayers: 2, TemporalLayers: 3, IsSimulcast: true, Ratio: 2.0}},
		{"L2T2_KEY", ScalabilityMode{SpatialLayers: 2, TemporalLayers: 2, Ratio: 2.0, KeyFrameOnly: true}},
		{"L2T2_KEY_SHIFT", ScalabilityMode{SpatialLayers: 2, TemporalLayers: 2, Ratio: 2.0, KeyFrameOnly: true, Shifted: true}},
	}

	for _, tt := range tests {
		name := tt.input
		if name == "" {
			name = "empty"
		}
		t.Run(name, func(t *testing.T) {
			got, err := ParseScalabilityMode(tt.input)
			if err != nil {
				t.Fatalf("ParseScalabilityMode(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseScalabilityMode(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseScalabilityMode_Invalid(t *testing.T) {
	for _, input := range []string{"L1", "T2", "L1T2x", "XL1T2", "L1T2_SHIFT_KEY", "l1t2"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseScalabilityMode(input)
			if !errors.Is(err, ErrInvalidScalabilityMode) {
				t.Errorf("ParseScalabilityMode(%q) error = %v, want ErrInvalidScalabilityMode", input, err)
			}
		})
	}
}

func TestScalabilityMode_Supported(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{"L1T1", true},
		{"L1T2", true},
		{"L1T3", true},
		{"L2T2", false},
		{"L3T3", false},
		{"S2T3", false},
		{"L1T4", false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			m, err := ParseScalabilityMode(tt.mode)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := m.Supported(); got != tt.want {
				t.Errorf("Supported() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandTemporalLayers_TwoLayers(t *testing.T) {
	mode, _ := ParseScalabilityMode("L1T2")
	layers, split, err := expandTemporalLayers(mode, 1_000_000)
	if err != nil {
		t.Fatalf("expandTemporalLayers: %v", err)
	}

	if len(layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(layers))
	}
	if layers[0].TargetBitrate != 600_000 {
		t.Errorf("base layer bitrate = %d, want 600000", layers[0].TargetBitrate)
	}
	if layers[1].TargetBitrate != 1_000_000 {
		t.Errorf("top layer bitrate = %d, want 1000000", layers[1].TargetBitrate)
	}
	if layers[0].RateDecimator != 2 || layers[1].RateDecimator != 1 {
		t.Errorf("decimators = %d,%d, want 2,1", layers[0].RateDecimator, layers[1].RateDecimator)
	}
	if split.Periodicity != 2 {
		t.Errorf("periodicity = %d, want 2", split.Periodicity)
	}
	if want := []int{0, 1}; !equalInts(split.LayerIDs, want) {
		t.Errorf("layer ids = %v, want %v", split.LayerIDs, want)
	}
}

func TestExpandTemporalLayers_ThreeLayers(t *testing.T) {
	mode, _ := ParseScalabilityMode("L1T3")
	layers, split, err := expandTemporalLayers(mode, 2_000_000)
	if err != nil {
		t.Fatalf("expandTemporalLayers: %v", err)
	}

	wantBitrates := []int64{500_000, 1_000_000, 2_000_000}
	wantDecimators := []int{4, 2, 1}
	for i, layer := range layers {
		if layer.TargetBitrate != wantBitrates[i] {
			t.Errorf("layer %d bitrate = %d, want %d", i, layer.TargetBitrate, wantBitrates[i])
		}
		if layer.RateDecimator != wantDecimators[i] {
			t.Errorf("layer %d decimator = %d, want %d", i, layer.RateDecimator, wantDecimators[i])
		}
	}
	if split.Periodicity != 4 {
		t.Errorf("periodicity = %d, want 4", split.Periodicity)
	}
	if want := []int{0, 2, 1, 2}; !equalInts(split.LayerIDs, want) {
		t.Errorf("layer ids = %v, want %v", split.LayerIDs, want)
	}
}

func TestExpandTemporalLayers_SingleLayer(t *testing.T) {
	mode, _ := ParseScalabilityMode("L1T1")
	layers, split, err := expandTemporalLayers(mode, 800_000)
	if err != nil {
		t.Fatalf("expandTemporalLayers: %v", err)
	}
	if len(layers) != 1 {
		t.Fatalf("got %d layers, want 1", len(layers))
	}
	if layers[0].TargetBitrate != 800_000 || layers[0].RateDecimator != 1 {
		t.Errorf("layer = %+v, want full bitrate at full rate", layers[0])
	}
	if split.Periodicity != 1 {
		t.Errorf("periodicity = %d, want 1", split.Periodicity)
	}
}

func TestExpandTemporalLayers_Unsupported(t *testing.T) {
	mode, _ := ParseScalabilityMode("L3T3")
	if _, _, err := expandTemporalLayers(mode, 1_000_000); !errors.Is(err, ErrInvalidScalabilityMode) {
		t.Errorf("error = %v, want ErrInvalidScalabilityMode", err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
