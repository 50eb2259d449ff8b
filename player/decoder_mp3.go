package player

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/mycophonic/saprobe"
)

// mp3ReadChunk bounds a single gomp3.Decoder.Read call. It comfortably
// exceeds the largest PCM a single MPEG-1 Layer III frame decodes to
// (1152 samples * 2 channels * 2 bytes = 4608 bytes), so one frame's
// worth of input normally yields exactly one channel message.
const mp3ReadChunk = 8192

// mp3DecodeResult is one message from the background decode loop: either
// a chunk of PCM with the format that produced it, or a terminal error.
type mp3DecodeResult struct {
	format saprobe.PCMFormat
	pcm    []byte
	err    error
}

// mp3Decoder adapts github.com/hajimehoshi/go-mp3 to decoderAdapter. It
// feeds frame payloads into a pipe that a background goroutine drains
// through a gomp3.Decoder, run here in streaming form one frame at a time.
type mp3Decoder struct {
	pw      *io.PipeWriter
	results chan mp3DecodeResult
}

func newMP3Decoder() *mp3Decoder {
	return &mp3Decoder{}
}

func (d *mp3Decoder) sizes() (externSize, workingSize int) {
	// go-mp3 takes no external configuration and manages its own working
	// set; nothing to preallocate.
	return 0, 0
}

func (d *mp3Decoder) configure([]byte) error {
	return nil
}

func (d *mp3Decoder) reset() error {
	if d.pw != nil {
		_ = d.pw.Close()
	}

	pr, pw := io.Pipe()
	d.pw = pw
	d.results = make(chan mp3DecodeResult, 1)

	go d.run(pr)

	return nil
}

func (d *mp3Decoder) run(pr *io.PipeReader) {
	decoder, err := gomp3.NewDecoder(pr)
	if err != nil {
		d.results <- mp3DecodeResult{err: fmt.Errorf("constructing mp3 decoder: %w", err)}

		return
	}

	format := saprobe.PCMFormat{
		SampleRate: decoder.SampleRate(),
		BitDepth:   saprobe.Depth16,
		Channels:   2,
	}

	buf := make([]byte, mp3ReadChunk)

	for {
		n, err := decoder.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			d.results <- mp3DecodeResult{format: format, pcm: chunk}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.results <- mp3DecodeResult{err: fmt.Errorf("decoding mp3 stream: %w", err)}
			}

			return
		}
	}
}

func (d *mp3Decoder) decode(frame []byte) (saprobe.PCMFormat, []int16, error) {
	if d.pw == nil {
		return saprobe.PCMFormat{}, nil, fmt.Errorf("mp3 decoder not reset: %w", ErrDecoderInitFailed)
	}

	if _, err := d.pw.Write(frame); err != nil {
		return saprobe.PCMFormat{}, nil, fmt.Errorf("feeding mp3 frame: %w", ErrDecodeFailed)
	}

	result, ok := <-d.results
	if !ok {
		return saprobe.PCMFormat{}, nil, fmt.Errorf("decoder stopped: %w", ErrDecodeFailed)
	}

	if result.err != nil {
		return saprobe.PCMFormat{}, nil, fmt.Errorf("%w: %w", result.err, ErrDecodeFailed)
	}

	return result.format, bytesToInt16LE(result.pcm), nil
}

func (d *mp3Decoder) close() error {
	if d.pw == nil {
		return nil
	}

	err := d.pw.Close()
	d.pw = nil

	return err
}

// bytesToInt16LE reinterprets interleaved little-endian 16-bit PCM bytes
// as a slice of samples.
func bytesToInt16LE(b []byte) []int16 {
	samples := make([]int16, len(b)/2)
	for i := range samples {
		samples[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8) //nolint:gosec // intentional bit reinterpretation
	}

	return samples
}
