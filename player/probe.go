package player

import (
	"github.com/mycophonic/saprobe/adts"
	"github.com/mycophonic/saprobe/mpegaudio"
	"github.com/mycophonic/saprobe/ringbuf"
)

// adifPrefix is the 4-byte magic of the AAC Audio Data Interchange Format
// container, which this player explicitly does not support.
var adifPrefix = [4]byte{'A', 'D', 'I', 'F'}

// probe classifies the stream at its current start: ID3v2 prefix or a
// confirmed MP3 resync means MP3; an ADIF prefix is rejected outright;
// otherwise a confirmed ADTS resync means AAC; anything else is Unknown.
//
// Both trial resyncs run with the stream's dequeue option disabled and
// restored afterward, since probing issues positional reads that would
// otherwise authorize the producer to release bytes the real session
// still needs.
func probe(stream *ringbuf.Stream) (AudioType, error) {
	var prefix [4]byte

	if n, _ := stream.ReadAt(0, prefix[:3]); n >= 3 && string(prefix[:3]) == "ID3" {
		return MP3, nil
	}

	if trialResync(stream, func() bool {
		_, found, _ := mpegaudio.Resync(stream, 0, 0)

		return found
	}) {
		return MP3, nil
	}

	if n, _ := stream.ReadAt(0, prefix[:4]); n >= 4 && prefix == adifPrefix {
		return Unknown, ErrUnsupportedFormat
	}

	if trialResync(stream, func() bool {
		_, found, _ := adts.Resync(stream, 0)

		return found
	}) {
		return AAC, nil
	}

	return Unknown, nil
}

// trialResync saves the stream's current dequeue option, disables it for
// the duration of attempt, and restores it before returning. attempt's own
// resync error (always ErrResyncExhausted or a kin, since Resync never
// returns any other failure) carries no information beyond "not this
// format" during probing, so only the found/not-found outcome matters here.
func trialResync(stream *ringbuf.Stream, attempt func() bool) bool {
	prior := stream.SetOption(ringbuf.OptionAllowDequeue, false)
	defer stream.SetOption(ringbuf.OptionAllowDequeue, prior)

	return attempt()
}
