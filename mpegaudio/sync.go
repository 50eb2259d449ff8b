package mpegaudio

import (
	"encoding/binary"
	"fmt"

	"github.com/mycophonic/saprobe/ringbuf"
)

// Resync scan envelope, per §4.2.
const (
	// FrameResyncMaxCheckBytes bounds how far a synchronizer scans forward
	// from its starting position before giving up.
	FrameResyncMaxCheckBytes = 8192

	// FrameResyncReadBytes is the size of the rolling lookahead window
	// refilled from the stream on demand during a scan.
	FrameResyncReadBytes = 1024

	// FrameMatchRequired is the number of successor frames that must be
	// confirmed consistent before a candidate header is accepted.
	FrameMatchRequired = 2
)

// id3HeaderSize is the length in bytes of an ID3v2 tag header.
const id3HeaderSize = 10

// Result carries the outcome of a successful resync: the confirmed frame
// position and its raw header word.
type Result struct {
	Pos    int64
	Header uint32
}

// Resync scans stream forward from pos looking for a frame header that
// parses under §4.1 and is confirmed by FrameMatchRequired consistent
// successor frames, discarding any candidate whose chain breaks and
// resuming the scan at candidateStart+1 (byte-granular backtracking — the
// claimed frame size of a rejected candidate is never trusted for
// repositioning).
//
// If matchHeader is non-zero, candidates whose FixedMask bits differ from
// matchHeader's are rejected before parsing, biasing resync toward the
// stream's already-locked session characteristics.
//
// When pos is 0, Resync first skips any concatenated ID3v2 tags.
func Resync(stream *ringbuf.Stream, matchHeader uint32, pos int64) (Result, bool, error) {
	if pos == 0 {
		skipped, err := skipID3v2(stream, pos)
		if err != nil {
			return Result{}, false, err
		}

		pos = skipped
	}

	limit := pos + FrameResyncMaxCheckBytes

	w := newWindow(stream)

	for cur := pos; cur < limit; cur++ {
		hdrBytes, err := w.bytes(cur, HeaderSize)
		if err != nil {
			return Result{}, false, nil //nolint:nilerr // exhausted/short read surfaces as "not found", not an error
		}

		header := binary.BigEndian.Uint32(hdrBytes)

		if matchHeader != 0 && header&FixedMask != matchHeader&FixedMask {
			continue
		}

		parsed, err := Parse(header)
		if err != nil {
			continue
		}

		if confirmSuccessors(w, cur, parsed, header) {
			return Result{Pos: cur, Header: header}, true, nil
		}
	}

	return Result{}, false, fmt.Errorf("scanned %d bytes from %d: %w", FrameResyncMaxCheckBytes, pos, ErrResyncExhausted)
}

// confirmSuccessors reads ahead FrameMatchRequired frames from candidatePos
// using the just-parsed header's frame size, requiring each successor to
// share the candidate's FixedMask bits and parse cleanly.
func confirmSuccessors(w *window, candidatePos int64, parsed Header, candidateHeader uint32) bool {
	next := candidatePos + int64(parsed.FrameSizeBytes)

	for range FrameMatchRequired {
		succBytes, err := w.bytes(next, HeaderSize)
		if err != nil {
			return false
		}

		succHeader := binary.BigEndian.Uint32(succBytes)
		if succHeader&FixedMask != candidateHeader&FixedMask {
			return false
		}

		succParsed, err := Parse(succHeader)
		if err != nil {
			return false
		}

		next += int64(succParsed.FrameSizeBytes)
	}

	return true
}

// skipID3v2 advances past zero or more concatenated ID3v2 tags starting at
// offset 0, returning the offset of the first byte after the last tag.
func skipID3v2(stream *ringbuf.Stream, pos int64) (int64, error) {
	for {
		hdr := make([]byte, id3HeaderSize)

		n, err := stream.ReadAt(pos, hdr)
		if err != nil && n < id3HeaderSize {
			return pos, nil //nolint:nilerr // short read here just means "no (more) ID3 tag"
		}

		if hdr[0] != 'I' || hdr[1] != 'D' || hdr[2] != '3' {
			return pos, nil
		}

		size := syncsafe(hdr[6:10])
		pos += id3HeaderSize + int64(size)
	}
}

// syncsafe decodes a 28-bit ID3v2 syncsafe integer from four bytes, each
// contributing its low 7 bits, most significant byte first.
func syncsafe(b []byte) int {
	return int(b[0]&0x7F)<<21 | int(b[1]&0x7F)<<14 | int(b[2]&0x7F)<<7 | int(b[3]&0x7F)
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

// bytes returns n bytes starting at pos, refilling the window if necessary.
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
