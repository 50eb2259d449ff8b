package mpegaudio_test

import (
	"errors"
	"testing"

	"github.com/mycophonic/saprobe/mpegaudio"
)

// mpeg1Layer3_128_44100 is the canonical header from scenario 1 of the
// testable properties: MPEG-1 Layer III, 128 kbps, 44.1 kHz, unpadded.
const mpeg1Layer3_128_44100 = 0xFFFB9000

func TestParseValidHeader(t *testing.T) {
	t.Parallel()

	h, err := mpegaudio.Parse(mpeg1Layer3_128_44100)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if h.Version != mpegaudio.Version1 {
		t.Errorf("Version = %v, want Version1", h.Version)
	}

	if h.Layer != mpegaudio.Layer3 {
		t.Errorf("Layer = %v, want Layer3", h.Layer)
	}

	if h.BitrateKbps != 128 {
		t.Errorf("BitrateKbps = %d, want 128", h.BitrateKbps)
	}

	if h.SampleRateHz != 44100 {
		t.Errorf("SampleRateHz = %d, want 44100", h.SampleRateHz)
	}

	// 1152 * 128000 / 8 / 44100 = 417 (truncated)
	if h.FrameSizeBytes != 417 {
		t.Errorf("FrameSizeBytes = %d, want 417", h.FrameSizeBytes)
	}
}

func TestParseRejectsBadSync(t *testing.T) {
	t.Parallel()

	_, err := mpegaudio.Parse(0x00FB9000)
	if !errors.Is(err, mpegaudio.ErrInvalidHeader) {
		t.Fatalf("Parse bad sync: got %v, want ErrInvalidHeader", err)
	}
}

func TestParseRejectsReservedVersion(t *testing.T) {
	t.Parallel()

	// Version bits = 01 (reserved).
	word := uint32(0xFFE89000)

	_, err := mpegaudio.Parse(word)
	if !errors.Is(err, mpegaudio.ErrInvalidHeader) {
		t.Fatalf("Parse reserved version: got %v, want ErrInvalidHeader", err)
	}
}

func TestParseRejectsReservedLayer(t *testing.T) {
	t.Parallel()

	// Layer bits = 00 (reserved).
	word := uint32(mpeg1Layer3_128_44100) &^ (0x3 << 17)

	_, err := mpegaudio.Parse(word)
	if !errors.Is(err, mpegaudio.ErrInvalidHeader) {
		t.Fatalf("Parse reserved layer: got %v, want ErrInvalidHeader", err)
	}
}

func TestParseRejectsFreeAndBadBitrate(t *testing.T) {
	t.Parallel()

	for _, idx := range []uint32{0, 15} {
		word := (uint32(mpeg1Layer3_128_44100) &^ (0xF << 12)) | (idx << 12)

		_, err := mpegaudio.Parse(word)
		if !errors.Is(err, mpegaudio.ErrInvalidHeader) {
			t.Errorf("Parse bitrate index %d: got %v, want ErrInvalidHeader", idx, err)
		}
	}
}

func TestParseRejectsReservedSampleRate(t *testing.T) {
	t.Parallel()

	word := uint32(mpeg1Layer3_128_44100) | (0x3 << 10)

	_, err := mpegaudio.Parse(word)
	if !errors.Is(err, mpegaudio.ErrInvalidHeader) {
		t.Fatalf("Parse reserved sample rate: got %v, want ErrInvalidHeader", err)
	}
}

func TestParseLayer1FrameSize(t *testing.T) {
	t.Parallel()

	// MPEG-1 Layer I, 44.1kHz, 32kbps (bitrate index 1), no padding.
	// sync(11)=1 id(2)=11 layer(2)=11 protection(1)=0 bitrate(4)=0001 sr(2)=00
	word := uint32(0xFFFE1000)

	h, err := mpegaudio.Parse(word)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if h.Layer != mpegaudio.Layer1 {
		t.Fatalf("Layer = %v, want Layer1", h.Layer)
	}

	// 384 * 32000 / 8 / 44100 = 34 (truncated)
	if want := 384*32000/8/44100 + 0; h.FrameSizeBytes != want {
		t.Errorf("FrameSizeBytes = %d, want %d", h.FrameSizeBytes, want)
	}
}

func TestParseMPEG2Point5FallsThroughSafely(t *testing.T) {
	t.Parallel()

	// MPEG-2.5 (version code 0), Layer III, 8kbps (V2L3 index 1), 11025Hz.
	word := uint32(0xFFE21000)

	h, err := mpegaudio.Parse(word)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if h.Version != mpegaudio.Version2_5 {
		t.Fatalf("Version = %v, want Version2_5", h.Version)
	}

	if h.SampleRateHz != 11025 {
		t.Errorf("SampleRateHz = %d, want 11025", h.SampleRateHz)
	}
}

func TestFixedMaskInvariantAcrossBitrateAndPadding(t *testing.T) {
	t.Parallel()

	base := uint32(mpeg1Layer3_128_44100)

	// Flip bitrate index and padding bit; FixedMask bits must be unaffected.
	varied := (base &^ (0xF << 12)) | (4 << 12) | (1 << 9)

	if base&mpegaudio.FixedMask != varied&mpegaudio.FixedMask {
		t.Fatalf("FixedMask bits changed: base=%#x varied=%#x", base&mpegaudio.FixedMask, varied&mpegaudio.FixedMask)
	}
}
