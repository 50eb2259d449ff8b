package player

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mycophonic/saprobe/ringbuf"
)

// ringBufferCapacity bounds how many bytes of compressed input the
// session keeps buffered at once; it is independent of the chunk size a
// producer pushes at a time.
const ringBufferCapacity = 256 * 1024

// Player is the public lifecycle handle: Init classifies the stream and
// prepares a decoder, Push feeds compressed bytes, Run pumps frames to
// Output until end of stream, and Finish releases all resources.
//
// A Player is not safe for concurrent use by more than one producer and
// one consumer goroutine; per §5, a single mutex inside the underlying
// stream already serializes Push against Run's reads.
type Player struct {
	sess *session

	// Config is invoked once, before the first frame, with the detected
	// audio type and a scratch buffer the caller may populate with
	// decoder-specific configuration.
	Config ConfigFunc

	// Output receives the PCM produced by decoding each frame.
	Output OutputFunc

	// Log receives session-lifecycle events (init, a frame skipped after a
	// failed decode, finish); resyncs inside the frame pump are not logged.
	// A nil Log is equivalent to a disabled logger; no calls are made.
	Log *zerolog.Logger
}

// Init classifies the stream, allocates and configures the matching
// decoder adapter, and synchronizes to the first frame. On
// ErrUnsupportedFormat or any other error, the stream is left open for
// the caller to close.
func (p *Player) Init(stream *ringbuf.Stream) error {
	audioType, err := probe(stream)
	if err != nil {
		return err
	}

	if audioType == Unknown {
		return fmt.Errorf("probing stream: %w", ErrUnsupportedFormat)
	}

	sess, err := newSession(stream, audioType, p.Config, p.Output, p.Log)
	if err != nil {
		return err
	}

	p.sess = sess

	return nil
}

// AudioType returns the audio type classified during Init. Unknown
// before Init succeeds.
func (p *Player) AudioType() AudioType {
	if p.sess == nil {
		return Unknown
	}

	return p.sess.audioType
}

// Push feeds compressed bytes to the stream, for producers that push
// directly rather than supplying an InputFunc at stream construction.
func (p *Player) Push(data []byte) error {
	if p.sess == nil {
		return ErrNotInitialized
	}

	_, err := p.sess.stream.Write(data)

	return err
}

// Run pumps frames until end of stream or an unrecoverable desync,
// calling Output after each successful decode. It returns nil on clean
// end of stream, and io.EOF when the frame pump exhausts its resync scan
// without recovering sync (a corrupted or truncated tail) — callers that
// want to tell the two apart can still do so, but both mean playback is
// over and there is nothing left to pump.
func (p *Player) Run() error {
	if p.sess == nil {
		return ErrNotInitialized
	}

	for {
		ok, err := p.sess.getFrame()
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}
	}
}

// Finish releases the decoder adapter and closes the stream handle. It
// is safe to call even if Init failed or was never called.
func (p *Player) Finish() error {
	if p.sess == nil {
		return nil
	}

	err := p.sess.close()
	p.sess = nil

	return err
}

// NewStream constructs the ring-backed stream handle a Player's Init
// expects, wired to pull more bytes via input when its ring runs dry.
func NewStream(input ringbuf.InputFunc) *ringbuf.Stream {
	stream := ringbuf.New(ringBufferCapacity)
	stream.SetInputFunc(input)

	return stream
}
