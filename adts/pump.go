package adts

import (
	"github.com/mycophonic/saprobe/ringbuf"
)

// GetFrame is the ADTS analog of mpegaudio.GetFrame (§4.5): it reads the
// header at pos and, if the sync word validates, emits that frame's payload
// directly. Otherwise it invokes Resync to relocate before retrying.
//
// ADTS carries no reference-header mask, so unlike the MP3 fast path there
// is nothing to compare the candidate header against beyond its own sync
// word; a stream can legally vary its sample rate or channel configuration
// frame to frame.
//
// ok=false with a nil error means clean end of stream; ok=false with a
// non-nil error wrapping ErrResyncExhausted means sync could not be
// recovered. Every successful cursor advance is published via SeekExt before
// returning.
func GetFrame(stream *ringbuf.Stream, pos int64) (frame []byte, newPos int64, header Header, ok bool, err error) {
	for {
		var hdrBuf [HeaderSize]byte

		n, _ := stream.ReadAt(pos, hdrBuf[:])
		if n < HeaderSize {
			return nil, pos, Header{}, false, nil
		}

		if parsed, perr := Parse(hdrBuf[:]); perr == nil {
			return emitFrame(stream, pos, parsed)
		}

		result, found, rerr := Resync(stream, pos)
		if !found {
			return nil, pos, Header{}, false, rerr
		}

		pos = result.Pos

		if _, serr := stream.SeekExt(pos, ringbuf.SeekStart); serr != nil {
			return nil, pos, Header{}, false, serr
		}
	}
}

func emitFrame(stream *ringbuf.Stream, pos int64, parsed Header) ([]byte, int64, Header, bool, error) {
	buf := make([]byte, parsed.FrameSizeBytes)

	n, _ := stream.ReadAt(pos, buf)
	if n < len(buf) {
		return nil, pos, Header{}, false, nil
	}

	next := pos + int64(parsed.FrameSizeBytes)

	if _, err := stream.SeekExt(next, ringbuf.SeekStart); err != nil {
		return nil, pos, Header{}, false, err
	}

	return buf, next, parsed, true, nil
}
