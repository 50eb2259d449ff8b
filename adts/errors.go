package adts

import "errors"

var (
	// ErrInvalidHeader is returned when a candidate 9-byte window fails the
	// ADTS sync-word check.
	ErrInvalidHeader = errors.New("adts: invalid frame header")

	// ErrShortRead is returned when the stream yields fewer bytes than a
	// sync or confirmation attempt requested.
	ErrShortRead = errors.New("adts: short read")

	// ErrResyncExhausted is returned when the synchronizer scans
	// FrameResyncMaxCheckBytes without confirming a candidate header.
	ErrResyncExhausted = errors.New("adts: resync exhausted")
)
