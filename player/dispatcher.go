package player

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/mycophonic/saprobe/adts"
	"github.com/mycophonic/saprobe/mpegaudio"
	"github.com/mycophonic/saprobe/ringbuf"
)

// maxExternalBufferSize bounds a decoder adapter's requested external
// configuration buffer; both adapters in this module request well under
// this (0 and 2 bytes), so exceeding it indicates a misbehaving adapter.
const maxExternalBufferSize = 4096

// session holds the dispatcher's private state for one streaming
// playback, mirroring the {audio_type, current_pos, fixed_header,
// decoder adapter, stream_handle} record.
type session struct {
	audioType   AudioType
	currentPos  int64
	fixedHeader uint32 // MP3 only

	adapter decoderAdapter
	stream  *ringbuf.Stream

	output OutputFunc
	log    *zerolog.Logger
}

// newSession allocates the decoder adapter's buffers, runs the caller's
// ConfigFunc over the external buffer, initializes the adapter, then
// runs the first-frame synchronizer to capture currentPos and (for MP3)
// fixedHeader.
func newSession(stream *ringbuf.Stream, audioType AudioType, cfg ConfigFunc, out OutputFunc, log *zerolog.Logger) (*session, error) {
	adapter, err := newAdapter(audioType)
	if err != nil {
		return nil, err
	}

	externSize, _ := adapter.sizes()
	if externSize < 0 || externSize > maxExternalBufferSize {
		return nil, fmt.Errorf("decoder requested %d-byte external buffer: %w", externSize, ErrAllocFailure)
	}

	external := make([]byte, externSize)

	if cfg != nil {
		cfg(audioType, external)
	}

	if err := adapter.configure(external); err != nil {
		return nil, fmt.Errorf("configuring decoder: %w", err)
	}

	if err := adapter.reset(); err != nil {
		return nil, fmt.Errorf("%w: %w", err, ErrDecoderInitFailed)
	}

	s := &session{
		audioType: audioType,
		adapter:   adapter,
		stream:    stream,
		output:    out,
		log:       log,
	}

	if err := s.syncFirstFrame(); err != nil {
		_ = adapter.close()

		return nil, err
	}

	logEvent(log, "session initialized", audioType, s.currentPos)

	return s, nil
}

func newAdapter(audioType AudioType) (decoderAdapter, error) {
	switch audioType {
	case MP3:
		return newMP3Decoder(), nil
	case AAC:
		return newAACDecoder(context.Background()), nil
	default:
		return nil, fmt.Errorf("audio type %s: %w", audioType, ErrUnsupportedFormat)
	}
}

// syncFirstFrame locates the first frame and captures the session's
// locked-in positional state without decoding it; decoding happens on
// the first getFrame call from run.
func (s *session) syncFirstFrame() error {
	switch s.audioType {
	case MP3:
		result, found, err := mpegaudio.Resync(s.stream, 0, 0)
		if !found {
			return fmt.Errorf("locating first mp3 frame: %w", err)
		}

		s.currentPos = result.Pos
		s.fixedHeader = result.Header

	case AAC:
		result, found, err := adts.Resync(s.stream, 0)
		if !found {
			return fmt.Errorf("locating first aac frame: %w", err)
		}

		s.currentPos = result.Pos

	default:
		return fmt.Errorf("audio type %s: %w", s.audioType, ErrUnsupportedFormat)
	}

	if _, err := s.stream.SeekExt(s.currentPos, ringbuf.SeekStart); err != nil {
		return fmt.Errorf("publishing first frame position: %w", err)
	}

	return nil
}

// getFrame pumps the next frame for the session's audio type and
// decodes it. ok=false with a nil error means clean end of stream;
// ok=false with err=io.EOF means the underlying synchronizer exhausted
// its resync scan without recovering sync.
func (s *session) getFrame() (ok bool, err error) {
	var frame []byte

	switch s.audioType {
	case MP3:
		var next int64

		frame, next, _, ok, err = mpegaudio.GetFrame(s.stream, s.currentPos, s.fixedHeader)
		s.currentPos = next

	case AAC:
		var next int64

		frame, next, _, ok, err = adts.GetFrame(s.stream, s.currentPos)
		s.currentPos = next

	default:
		return false, fmt.Errorf("audio type %s: %w", s.audioType, ErrUnsupportedFormat)
	}

	if err != nil {
		if errors.Is(err, mpegaudio.ErrResyncExhausted) || errors.Is(err, adts.ErrResyncExhausted) {
			return false, io.EOF
		}

		return false, err
	}

	if !ok {
		return false, nil
	}

	format, samples, decErr := s.adapter.decode(frame)
	if decErr != nil {
		logEvent(s.log, "frame decode failed, continuing", s.audioType, s.currentPos)

		return true, nil
	}

	if s.output != nil {
		s.output(format, samples)
	}

	return true, nil
}

func (s *session) close() error {
	logEvent(s.log, "session finished", s.audioType, s.currentPos)

	adapterErr := s.adapter.close()
	streamErr := s.stream.Close()

	return errors.Join(adapterErr, streamErr)
}

func logEvent(log *zerolog.Logger, msg string, audioType AudioType, pos int64) {
	if log == nil {
		return
	}

	log.Debug().Stringer("audio_type", audioType).Int64("pos", pos).Msg(msg)
}
