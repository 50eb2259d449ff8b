// Package adts implements the AAC ADTS (Audio Data Transport Stream) frame
// synchronizer: sync-word validation and the byte-scanning resync contract
// shared in shape with mpegaudio, but with no bit-field validation beyond
// the sync word itself and a frame-size-driven successor check.
package adts

import "fmt"

// HeaderSize is the lookahead window used by the synchronizer and frame
// pump: 9 bytes, enough to cover the fixed ADTS header plus the optional
// CRC field without needing a second read.
const HeaderSize = 9

// Header is a parsed ADTS frame header.
type Header struct {
	FrameSizeBytes int

	// Profile, SamplingFreqIndex, and ChannelConfig are carried through
	// unchanged from the bitstream for callers (the AAC decoder adapter)
	// that need to derive an AudioSpecificConfig; the synchronizer itself
	// only ever inspects the sync word and FrameSizeBytes.
	Profile           int
	SamplingFreqIndex int
	ChannelConfig     int
}

// ValidSyncWord reports whether the first two bytes of b form a valid ADTS
// sync word: b[0] == 0xFF, the top 4 bits of b[1] are all set, and the two
// layer bits of b[1] (0x06) are zero. The MPEG ID bit (0x08) and the
// protection-absent bit (0x01) are ignored.
func ValidSyncWord(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xF6 == 0xF0
}

// Parse validates the ADTS sync word and extracts the 13-bit frame length
// field spanning bytes 3-5 (including the header itself).
func Parse(b []byte) (Header, error) {
	if len(b) < 6 {
		return Header{}, fmt.Errorf("need 6 bytes, got %d: %w", len(b), ErrInvalidHeader)
	}

	if !ValidSyncWord(b) {
		return Header{}, fmt.Errorf("sync word: %w", ErrInvalidHeader)
	}

	frameSize := (int(b[3]&0x03) << 11) | (int(b[4]) << 3) | (int(b[5]) >> 5)

	return Header{
		FrameSizeBytes:    frameSize,
		Profile:           int(b[2]>>6) & 0x03,
		SamplingFreqIndex: int(b[2]>>2) & 0x0F,
		ChannelConfig:     (int(b[2]&0x01) << 2) | (int(b[3]>>6) & 0x03),
	}, nil
}
