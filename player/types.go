// Package player drives a streaming audio session: it classifies an
// incoming byte stream as MP3 or AAC/ADTS, synchronizes to frame
// boundaries, and pumps complete frames through the matching decoder
// adapter to a caller-supplied PCM sink.
package player

import (
	"github.com/mycophonic/saprobe"
)

// AudioType is a tagged value identifying the framing algorithm and
// decoder adapter a session uses.
type AudioType int

const (
	// Unknown means the type prober could not classify the stream.
	Unknown AudioType = iota
	// MP3 is an MPEG-1/2/2.5 Layer I/II/III elementary stream.
	MP3
	// AAC is a raw ADTS-framed AAC stream.
	AAC
)

// String returns the human-readable name of the audio type.
func (a AudioType) String() string {
	switch a {
	case MP3:
		return "MP3"
	case AAC:
		return "AAC"
	default:
		return "unknown"
	}
}

// ConfigFunc is invoked once per session, before the first frame is
// decoded, with the classified audio type and a scratch buffer the
// caller may fill with decoder-specific configuration bytes (currently
// only meaningful for AAC, where it can carry an explicit
// AudioSpecificConfig override).
type ConfigFunc func(audioType AudioType, external []byte)

// OutputFunc receives the PCM produced by decoding one frame.
type OutputFunc func(format saprobe.PCMFormat, samples []int16)

// decoderAdapter is satisfied by every concrete decoder wrapper
// (mp3Decoder, aacDecoder). The dispatcher is decoder-agnostic: it only
// ever calls through this interface, never referencing a concrete
// decoder type.
type decoderAdapter interface {
	// sizes reports the size, in bytes, of the opaque external
	// configuration buffer and of the decoder's working memory. externSize
	// bytes are allocated by the dispatcher and handed to configure;
	// workingSize is informational only; unlike a C decoder, a Go adapter
	// manages its own working-set allocations and does not need the
	// dispatcher to pre-size them.
	sizes() (externSize, workingSize int)

	// configure receives the external buffer after the session's
	// ConfigFunc (if any) has had a chance to populate it.
	configure(external []byte) error

	// reset (re)initializes the adapter for a new session.
	reset() error

	// decode decodes one complete frame (header included) and returns the
	// PCM format and interleaved samples it produced.
	decode(frame []byte) (saprobe.PCMFormat, []int16, error)

	// close releases any resources held by the adapter.
	close() error
}
