package mpegaudio

import (
	"encoding/binary"

	"github.com/mycophonic/saprobe/ringbuf"
)

// GetFrame implements the MP3 fast path (§4.5): it reads the header at pos,
// and if its FixedMask bits match fixedHeader and it parses, emits that
// frame's payload directly. Otherwise sync has been lost, and GetFrame
// invokes Resync (biased toward fixedHeader) to relocate before retrying.
//
// On success it returns the frame payload, the header that produced it, the
// cursor position just past the frame, and ok=true. ok=false with a nil
// error means clean end of stream (short read with nothing buffered and the
// producer has finished); ok=false with a non-nil error wrapping
// ErrResyncExhausted means sync could not be recovered and the caller
// should treat the session as ended the same way.
//
// Every successful cursor advance is published to stream via SeekExt before
// returning, authorizing the producer to release bytes below it.
func GetFrame(stream *ringbuf.Stream, pos int64, fixedHeader uint32) (frame []byte, newPos int64, header Header, ok bool, err error) {
	for {
		var hdrBuf [HeaderSize]byte

		n, _ := stream.ReadAt(pos, hdrBuf[:])
		if n < HeaderSize {
			return nil, pos, Header{}, false, nil
		}

		word := binary.BigEndian.Uint32(hdrBuf[:])

		if fixedHeader == 0 || word&FixedMask == fixedHeader&FixedMask {
			if parsed, perr := Parse(word); perr == nil {
				return emitFrame(stream, pos, parsed)
			}
		}

		result, found, rerr := Resync(stream, fixedHeader, pos)
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
