// Package mpegaudio implements the MP3 (MPEG-1/2/2.5 Layer I/II/III) frame
// header bit-field decoder and the byte-scanning synchronizer that locates
// frame boundaries in a raw, possibly corrupted or metadata-prefixed, byte
// stream.
package mpegaudio

import "fmt"

// SyncMask isolates the header's 11-bit sync word used by Parse's validity
// check; the version and layer fields are validated separately.
const SyncMask = 0xFFE00000

// SyncValue is the expected value of a header word under SyncMask.
const SyncValue = 0xFFE00000

// FixedMask isolates the bits that must stay invariant for every frame of a
// session once the first frame has been emitted: sync word, version, layer,
// and sampling-rate index. Bitrate and padding may vary frame to frame.
const FixedMask = 0xFFFE0C00

// HeaderSize is the length in bytes of an MP3 frame header.
const HeaderSize = 4

// Header is a parsed MP3 frame header, derived from a raw 32-bit word.
type Header struct {
	Raw            uint32
	Version        Version
	Layer          Layer
	BitrateKbps    int
	SampleRateHz   int
	Padding        int
	FrameSizeBytes int
}

// SameFixed reports whether h and other share the same FixedMask bits, i.e.
// whether other could belong to the same session as h.
func (h Header) SameFixed(other uint32) bool {
	return h.Raw&FixedMask == other&FixedMask
}

// Parse validates a raw 32-bit big-endian header word against the MP3
// bit-field rules and, on success, computes its frame size.
//
// Rejections (each returns ErrInvalidHeader):
//   - sync word mismatch
//   - version field reserved (code 1)
//   - layer field reserved (code 0)
//   - bitrate index 0 (free format) or 15 (bad)
//   - sampling-rate index 3 (reserved)
func Parse(word uint32) (Header, error) {
	if word&SyncMask != SyncValue {
		return Header{}, fmt.Errorf("sync word: %w", ErrInvalidHeader)
	}

	versionCode := (word >> 19) & 0x3
	layerCode := (word >> 17) & 0x3
	bitrateIndex := (word >> 12) & 0xF
	sampleRateIndex := (word >> 10) & 0x3
	padding := int((word >> 9) & 0x1)

	version := versionFromCode[versionCode]
	if version == VersionReserved {
		return Header{}, fmt.Errorf("version code %d: %w", versionCode, ErrInvalidHeader)
	}

	layer := layerFromCode[layerCode]
	if layer == LayerReserved {
		return Header{}, fmt.Errorf("layer code %d: %w", layerCode, ErrInvalidHeader)
	}

	if bitrateIndex == 0 || bitrateIndex == 15 {
		return Header{}, fmt.Errorf("bitrate index %d: %w", bitrateIndex, ErrInvalidHeader)
	}

	if sampleRateIndex == 3 {
		return Header{}, fmt.Errorf("sampling rate index %d: %w", sampleRateIndex, ErrInvalidHeader)
	}

	rates, ok := sampleRateTable[version]
	if !ok {
		// version is never VersionReserved here (rejected above), and every
		// other Version has a table entry; this branch documents that
		// invariant rather than handling a reachable case.
		return Header{}, fmt.Errorf("no sample rate table for version %v: %w", version, ErrInvalidHeader)
	}

	sampleRate := rates[sampleRateIndex]

	bitrate := bitrateTable(version, layer)[bitrateIndex]

	frameSize := frameSizeBytes(layer, version, bitrate, sampleRate, padding)

	return Header{
		Raw:            word,
		Version:        version,
		Layer:          layer,
		BitrateKbps:    bitrate,
		SampleRateHz:   sampleRate,
		Padding:        padding,
		FrameSizeBytes: frameSize,
	}, nil
}

// frameSizeBytes computes the frame size in bytes per §4.1's three formulas.
// Integer division truncates, matching real-world encoder framing.
func frameSizeBytes(layer Layer, version Version, bitrateKbps, sampleRateHz, padding int) int {
	switch {
	case layer == Layer1:
		return 384*bitrateKbps*1000/8/sampleRateHz + 4*padding
	case version == Version1 && (layer == Layer2 || layer == Layer3):
		return 1152*bitrateKbps*1000/8/sampleRateHz + padding
	case version != Version1 && layer == Layer2:
		return 1152*bitrateKbps*1000/8/sampleRateHz + padding
	default: // MPEG-2/2.5 Layer III
		return 576*bitrateKbps*1000/8/sampleRateHz + padding
	}
}
