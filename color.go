package webcodecs

// ColorPrimaries identifies the chromaticity coordinates of the source
// primaries, using ITU-T H.273 code points.
type ColorPrimaries int

const (
	ColorPrimariesUnspecified ColorPrimaries = 2
	ColorPrimariesBT709       ColorPrimaries = 1
	ColorPrimariesBT470BG     ColorPrimaries = 5
	ColorPrimariesSMPTE170M   ColorPrimaries = 6
	ColorPrimariesBT2020      ColorPrimaries = 9
	ColorPrimariesSMPTE431    ColorPrimaries = 11 // DCI P3
	ColorPrimariesSMPTE432    ColorPrimaries = 12 // Display P3
)

// ColorTransfer identifies the opto-electronic transfer characteristic,
// using ITU-T H.273 code points.
type ColorTransfer int

const (
	ColorTransferUnspecified ColorTransfer = 2
	ColorTransferBT709       ColorTransfer = 1
	ColorTransferGamma22     ColorTransfer = 4
	ColorTransferGamma28     ColorTransfer = 5
	ColorTransferSMPTE170M   ColorTransfer = 6
	ColorTransferLinear      ColorTransfer = 8
	ColorTransferSRGB        ColorTransfer = 13
	ColorTransferPQ          ColorTransfer = 16 // SMPTE ST 2084 (BT.2100)
	ColorTransferHLG         ColorTransfer = 18 // ARIB STD-B67 (BT.2100)
)

// ColorMatrix identifies the matrix coefficients used to derive luma and
// chroma, using ITU-T H.273 code points.
type ColorMatrix int

const (
	ColorMatrixUnspecified ColorMatrix = 2
	ColorMatrixRGB         ColorMatrix = 0
	ColorMatrixBT709       ColorMatrix = 1
	ColorMatrixBT470BG     ColorMatrix = 5
	ColorMatrixSMPTE170M   ColorMatrix = 6
	ColorMatrixSMPTE240M   ColorMatrix = 7
	ColorMatrixYCgCo       ColorMatrix = 8
	ColorMatrixBT2020NCL   ColorMatrix = 9
	ColorMatrixBT2020CL    ColorMatrix = 10
)

var colorPrimariesNames = map[string]ColorPrimaries{
	"bt709":        ColorPrimariesBT709,
	"bt470bg":      ColorPrimariesBT470BG,
	"smpte170m":    ColorPrimariesSMPTE170M,
	"bt2020":       ColorPrimariesBT2020,
	"smpte432":     ColorPrimariesSMPTE432,
	"smpte-rp-431": ColorPrimariesSMPTE431,
}

var colorTransferNames = map[string]ColorTransfer{
	"bt709":        ColorTransferBT709,
	"smpte170m":    ColorTransferSMPTE170M,
	"iec61966-2-1": ColorTransferSRGB,
	"linear":       ColorTransferLinear,
	"pq":           ColorTransferPQ,
	"smpte2084":    ColorTransferPQ,
	"hlg":          ColorTransferHLG,
	"arib-std-b67": ColorTransferHLG,
	"gamma22":      ColorTransferGamma22,
	"gamma28":      ColorTransferGamma28,
}

var colorMatrixNames = map[string]ColorMatrix{
	"rgb":        ColorMatrixRGB,
	"bt709":      ColorMatrixBT709,
	"bt470bg":    ColorMatrixBT470BG,
	"smpte170m":  ColorMatrixSMPTE170M,
	"bt2020-ncl": ColorMatrixBT2020NCL,
	"bt2020-cl":  ColorMatrixBT2020CL,
	"smpte240m":  ColorMatrixSMPTE240M,
	"ycgco":      ColorMatrixYCgCo,
}

// ParseColorPrimaries maps a WebCodecs primaries name to its H.273 tag.
// Unknown names map to unspecified.
func ParseColorPrimaries(s string) ColorPrimaries {
	if v, ok := colorPrimariesNames[s]; ok {
		return v
	}
	return ColorPrimariesUnspecified
}

// ParseColorTransfer maps a WebCodecs transfer name to its H.273 tag.
func ParseColorTransfer(s string) ColorTransfer {
	if v, ok := colorTransferNames[s]; ok {
		return v
	}
	return ColorTransferUnspecified
}

// ParseColorMatrix maps a WebCodecs matrix name to its H.273 tag.
func ParseColorMatrix(s string) ColorMatrix {
	if v, ok := colorMatrixNames[s]; ok {
		return v
	}
	return ColorMatrixUnspecified
}

// VideoColorSpace describes the color interpretation of frames, in the
// shape of the WebCodecs VideoColorSpaceInit dictionary. Empty string
// fields mean unspecified.
type VideoColorSpace struct {
	Primaries string // "bt709", "bt2020", ...
	Transfer  string // "bt709", "pq", "hlg", ...
	Matrix    string // "bt709", "bt2020-ncl", ...
	FullRange bool   // true = full/JPEG range, false = limited/MPEG range
}
