package mpegaudio

// Version identifies the MPEG audio version carried in a frame header.
type Version int

// Recognized MPEG audio versions. VersionReserved (version code 1) is never
// returned by Parse; it is rejected at the header-validation stage.
const (
	VersionReserved Version = iota
	Version1
	Version2
	Version2_5
)

// String returns the conventional MPEG version label.
func (v Version) String() string {
	switch v {
	case Version1:
		return "1"
	case Version2:
		return "2"
	case Version2_5:
		return "2.5"
	default:
		return "reserved"
	}
}

// Layer identifies the MPEG audio layer carried in a frame header.
type Layer int

// Recognized MPEG audio layers. LayerReserved (layer code 0) is never
// returned by Parse.
const (
	LayerReserved Layer = iota
	Layer1
	Layer2
	Layer3
)

// versionFromCode maps the header's 2-bit version field to a Version.
// Code 1 is reserved and is rejected before this table is consulted.
var versionFromCode = [4]Version{
	0: Version2_5,
	1: VersionReserved,
	2: Version2,
	3: Version1,
}

// layerFromCode maps the header's 2-bit layer field to a Layer. The layer
// bits are encoded in reverse numeric order (01 = Layer III, 10 = Layer II,
// 11 = Layer I); code 0 is reserved.
var layerFromCode = [4]Layer{
	0: LayerReserved,
	1: Layer3,
	2: Layer2,
	3: Layer1,
}

// sampleRateTable maps a version to its three sampling rates, indexed by the
// header's 2-bit sampling-rate field. Index 3 is reserved in every version
// and is rejected before this table is consulted.
var sampleRateTable = map[Version][3]int{
	Version1:   {44100, 48000, 32000},
	Version2:   {22050, 24000, 16000},
	Version2_5: {11025, 12000, 8000},
}

// Bitrate tables, kbps, indexed 1..14 (index 0 is the "free" sentinel and is
// never populated; index 15, "bad", is out of range and rejected earlier).
var (
	bitrateV1L1 = [15]int{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448}
	bitrateV2L1 = [15]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256}
	bitrateV1L2 = [15]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384}
	bitrateV1L3 = [15]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}
	bitrateV2L3 = [15]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160}
)

// bitrateTable selects the kbps table for a given version/layer pair.
// Assumes version and layer have already been validated (non-reserved).
func bitrateTable(version Version, layer Layer) [15]int {
	switch layer {
	case Layer1:
		if version == Version1 {
			return bitrateV1L1
		}

		return bitrateV2L1
	case Layer2:
		if version == Version1 {
			return bitrateV1L2
		}

		return bitrateV2L3
	case Layer3:
		if version == Version1 {
			return bitrateV1L3
		}

		return bitrateV2L3
	default:
		return [15]int{}
	}
}
