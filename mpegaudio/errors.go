package mpegaudio

import "errors"

var (
	// ErrInvalidHeader is returned when a 32-bit word fails sync or
	// bit-field validation. Local to header parsing; callers resync by
	// advancing one byte rather than propagating this error.
	ErrInvalidHeader = errors.New("mpegaudio: invalid frame header")

	// ErrShortRead is returned when the stream yields fewer bytes than a
	// sync or confirmation attempt requested.
	ErrShortRead = errors.New("mpegaudio: short read")

	// ErrResyncExhausted is returned when a synchronizer scans
	// FrameResyncMaxCheckBytes without confirming a candidate header.
	ErrResyncExhausted = errors.New("mpegaudio: resync exhausted")
)
