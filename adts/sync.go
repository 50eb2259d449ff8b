package adts

import (
	"fmt"

	"github.com/mycophonic/saprobe/ringbuf"
)

// Resync scan envelope, matching mpegaudio's §4.2 constants in shape but
// scoped to this package (ADTS has no reference-header mask to carry).
const (
	// FrameResyncMaxCheckBytes bounds how far the synchronizer scans
	// forward from its starting position before giving up.
	FrameResyncMaxCheckBytes = 8192

	// FrameResyncReadBytes is the size of the rolling lookahead window
	// refilled from the stream on demand during a scan.
	FrameResyncReadBytes = 1024

	// FrameMatchRequired is the number of successor frames that must be
	// confirmed consistent before a candidate header is accepted.
	FrameMatchRequired = 2
)

// Result carries the outcome of a successful resync: the confirmed frame
// position and its parsed header.
type Result struct {
	Pos    int64
	Header Header
}

// Resync scans stream forward from pos looking for an ADTS sync word
// confirmed by FrameMatchRequired consistent successor sync-word matches at
// the offsets implied by each header's frame-length field. ADTS carries no
// ID3v2 tags, so unlike mpegaudio.Resync there is no metadata skip at pos 0,
// and there is no reference-header mask: the sync-word test is the entire
// per-candidate validator.
//
// Candidate rejection resumes the scan at candidateStart+1, never at the
// claimed (and unverified) frame size, mirroring mpegaudio's byte-granular
// backtracking.
func Resync(stream *ringbuf.Stream, pos int64) (Result, bool, error) {
	limit := pos + FrameResyncMaxCheckBytes

	w := newWindow(stream)

	for cur := pos; cur < limit; cur++ {
		hdrBytes, err := w.bytes(cur, HeaderSize)
		if err != nil {
			return Result{}, false, nil //nolint:nilerr // exhausted/short read surfaces as "not found", not an error
		}

		header, err := Parse(hdrBytes)
		if err != nil {
			continue
		}

		if confirmSuccessors(w, cur, header) {
			return Result{Pos: cur, Header: header}, true, nil
		}
	}

	return Result{}, false, fmt.Errorf("scanned %d bytes from %d: %w", FrameResyncMaxCheckBytes, pos, ErrResyncExhausted)
}

// confirmSuccessors reads ahead FrameMatchRequired frames from candidatePos
// using each frame's own frame-length field, requiring every successor to
// present a valid sync word and parse cleanly.
func confirmSuccessors(w *window, candidatePos int64, header Header) bool {
	next := candidatePos + int64(header.FrameSizeBytes)

	for range FrameMatchRequired {
		succBytes, err := w.bytes(next, HeaderSize)
		if err != nil {
			return false
		}

		succHeader, err := Parse(succBytes)
		if err != nil {
			return false
		}

		next += int64(succHeader.FrameSizeBytes)
	}

	return true
}

// window is a rolling read-ahead buffer over a ringbuf.Stream, refilled in
// FrameResyncReadBytes chunks as the scan advances. It never releases bytes
// (it reads via ReadAt), so a rejected candidate can always be re-examined
// one byte further along.
type window struct {
	stream *ringbuf.Stream
	start  int64
	buf    []byte
}

func newWindow(stream *ringbuf.Stream) *window {
	return &window{stream: stream}
}

func (w *window) bytes(pos int64, n int) ([]byte, error) {
	if pos < w.start || pos+int64(n) > w.start+int64(len(w.buf)) {
		size := FrameResyncReadBytes
		if size < n {
			size = n
		}

		buf := make([]byte, size)

		read, err := w.stream.ReadAt(pos, buf)
		if read < n {
			if err != nil {
				return nil, err
			}

			return nil, ErrShortRead
		}

		w.start = pos
		w.buf = buf[:read]
	}

	off := pos - w.start

	return w.buf[off : off+int64(n)], nil
}
