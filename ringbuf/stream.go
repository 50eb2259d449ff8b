// Package ringbuf provides a byte-positional ring buffer behind a stream
// handle: a single producer pushes bytes in, a single consumer reads them
// back by logical offset, and the consumer cooperatively authorizes the
// producer to release bytes it has already consumed.
//
// The buffer itself is a basic concurrency-safe ring: writers and the single
// reader are serialized with a mutex, and a condition variable stands in for
// the blocking channel handoff used by the frame-element ring buffer this
// package is adapted from (ausocean-av's codecutil.ringBuffer). Here the
// element is a single byte position rather than a fixed-size frame slot,
// since MP3/ADTS frame boundaries are not known in advance of sync.
package ringbuf

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Option identifies a toggle on a Stream.
type Option int

// OptionAllowDequeue controls whether SeekExt may release bytes back to the
// producer. The type prober must save-disable-probe-restore this option so
// that a trial resync does not release bytes the caller still needs.
const OptionAllowDequeue Option = iota

// Whence values, matching io.Seeker's SeekStart/SeekCurrent/SeekEnd semantics
// restricted to the logical (non-released) portion of the stream.
const (
	SeekStart   = io.SeekStart
	SeekCurrent = io.SeekCurrent
	SeekEnd     = io.SeekEnd
)

var (
	// ErrClosed is returned by operations attempted after Close.
	ErrClosed = errors.New("ringbuf: stream closed")
	// ErrReleased is returned when a read or seek targets a byte offset
	// that has already been released back to the producer.
	ErrReleased = errors.New("ringbuf: offset already released")
	// ErrNegativeOffset is returned when a seek would move before offset 0.
	ErrNegativeOffset = errors.New("ringbuf: negative offset")
)

// InputFunc is invoked by a Stream's Read when the buffer is exhausted and
// the caller wants the stream to pull more bytes rather than block forever.
// It mirrors the push-side input callback of the public player API (the
// stream plays the role of the "player" passed to that callback), except
// here it returns the bytes pushed directly for the stream to buffer.
type InputFunc func() ([]byte, error)

// Stream is a ring-backed, positional byte stream. Bytes pushed by Write
// are kept starting at logical offset base; bytes below base have been
// released and can no longer be read.
type Stream struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf  []byte // holds bytes [base, base+len(buf))
	base int64  // logical offset of buf[0]

	readPos int64 // internal read cursor, logical offset

	allowDequeue bool
	closed       bool

	maxBuffered int // 0 = unbounded; otherwise Write blocks when full
	input       InputFunc
}

// New returns an empty Stream. maxBuffered caps the amount of unreleased
// data kept resident before Write blocks; 0 means unbounded.
func New(maxBuffered int) *Stream {
	s := &Stream{
		allowDequeue: true,
		maxBuffered:  maxBuffered,
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

// SetInputFunc installs the pull-side callback invoked when Read would
// otherwise block on an empty buffer. Safe to call at most once, before the
// consumer starts reading.
func (s *Stream) SetInputFunc(f InputFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.input = f
}

// Write appends bytes to the tail of the stream. It is safe to call from a
// single producer goroutine; Stream does not support concurrent writers.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	for s.maxBuffered > 0 && len(s.buf) >= s.maxBuffered {
		s.cond.Wait()

		if s.closed {
			return 0, ErrClosed
		}
	}

	s.buf = append(s.buf, p...)
	s.cond.Broadcast()

	return len(p), nil
}

// Read reads into p starting at the internal read cursor and advances the
// cursor by the number of bytes read. If the buffer is momentarily short and
// an InputFunc is installed, Read pulls from it until enough data arrives or
// the producer reports end of stream (io.EOF). Without an InputFunc, Read
// blocks until Write or Close is called.
func (s *Stream) Read(p []byte) (int, error) {
	return s.readAt(-1, p, true)
}

// ReadAt reads len(p) bytes starting at the given logical offset without
// moving the release watermark: the stream may still be rewound to re-read
// offset afterward, provided offset has not been released by a prior
// SeekExt. This is the primitive the synchronizers use to probe ahead and
// backtrack byte-by-byte.
func (s *Stream) ReadAt(offset int64, p []byte) (int, error) {
	return s.readAt(offset, p, false)
}

func (s *Stream) readAt(offset int64, p []byte, advanceCursor bool) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos := offset
	if pos < 0 {
		pos = s.readPos
	}

	if pos < s.base {
		return 0, fmt.Errorf("read at %d: %w", pos, ErrReleased)
	}

	read := 0
	for read < len(p) {
		avail := s.base + int64(len(s.buf)) - pos
		if avail <= 0 {
			if s.closed {
				break
			}

			if s.input != nil {
				if _, err := s.pullLocked(); err != nil {
					if errors.Is(err, io.EOF) {
						s.closed = true

						break
					}

					return read, err
				}

				continue
			}

			s.cond.Wait()

			continue
		}

		n := int64(len(p) - read)
		if n > avail {
			n = avail
		}

		start := pos - s.base
		copy(p[read:read+int(n)], s.buf[start:start+n])
		read += int(n)
		pos += n
	}

	if advanceCursor {
		s.readPos = pos
	}

	if read < len(p) {
		return read, io.EOF
	}

	return read, nil
}

// pullLocked invokes the InputFunc and appends the result to buf. Must be
// called with s.mu held.
func (s *Stream) pullLocked() ([]byte, error) {
	f := s.input
	s.mu.Unlock()
	chunk, err := f()
	s.mu.Lock()

	if err != nil {
		return nil, err
	}

	s.buf = append(s.buf, chunk...)
	s.cond.Broadcast()

	return chunk, nil
}

// Seek relocates the internal read cursor without releasing any buffered
// bytes.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	return s.seek(offset, whence, false)
}

// SeekExt relocates the internal read cursor and, when OptionAllowDequeue is
// set, releases all bytes strictly below the new offset back to the
// producer: their memory is dropped and any subsequent Read/ReadAt/Seek
// below that offset fails with ErrReleased.
func (s *Stream) SeekExt(offset int64, whence int) (int64, error) {
	return s.seek(offset, whence, true)
}

func (s *Stream) seek(offset int64, whence int, release bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target int64

	switch whence {
	case SeekStart:
		target = offset
	case SeekCurrent:
		target = s.readPos + offset
	case SeekEnd:
		target = s.base + int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("ringbuf: invalid whence %d", whence)
	}

	if target < 0 {
		return 0, ErrNegativeOffset
	}

	if target < s.base {
		return 0, fmt.Errorf("seek to %d: %w", target, ErrReleased)
	}

	s.readPos = target

	if release && s.allowDequeue && target > s.base {
		drop := target - s.base
		if drop > int64(len(s.buf)) {
			drop = int64(len(s.buf))
		}

		s.buf = s.buf[drop:]
		s.base += drop
		s.cond.Broadcast()
	}

	return target, nil
}

// SetOption toggles a Stream option and returns its prior value.
func (s *Stream) SetOption(opt Option, value bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch opt {
	case OptionAllowDequeue:
		prior := s.allowDequeue
		s.allowDequeue = value

		return prior
	default:
		return false
	}
}

// Close marks the stream closed, unblocking any waiting reader or producer.
// Buffered bytes already pushed remain readable until released.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.cond.Broadcast()

	return nil
}

// Len returns the number of bytes currently buffered (unreleased).
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.buf)
}
