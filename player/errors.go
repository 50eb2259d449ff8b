package player

import "errors"

var (
	// ErrUnsupportedFormat is returned when the type prober cannot
	// classify the stream, or classifies it as an explicitly rejected
	// format (ADIF).
	ErrUnsupportedFormat = errors.New("player: unsupported audio format")

	// ErrDecoderInitFailed is returned when a decoder adapter fails to
	// initialize. It is fatal to the session.
	ErrDecoderInitFailed = errors.New("player: decoder initialization failed")

	// ErrDecodeFailed is returned by a decoder adapter when a single
	// frame fails to decode. Run skips the frame and continues.
	ErrDecodeFailed = errors.New("player: frame decode failed")

	// ErrAllocFailure is returned when the dispatcher cannot allocate a
	// decoder's buffers. Fatal to Init.
	ErrAllocFailure = errors.New("player: decoder buffer allocation failed")

	// ErrNotInitialized is returned when Push or Run is called before a
	// successful Init.
	ErrNotInitialized = errors.New("player: session not initialized")
)
