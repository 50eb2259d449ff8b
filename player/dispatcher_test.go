package player

import (
	"errors"
	"io"
	"testing"

	"github.com/mycophonic/saprobe"
	"github.com/mycophonic/saprobe/mpegaudio"
	"github.com/mycophonic/saprobe/ringbuf"
)

// fakeAdapter is a decoderAdapter stub that never touches real codec
// libraries, so tests can exercise the dispatcher's control flow in
// isolation from go-mp3/go-faad2.
type fakeAdapter struct{}

func (fakeAdapter) sizes() (int, int)            { return 0, 0 }
func (fakeAdapter) configure([]byte) error       { return nil }
func (fakeAdapter) reset() error                 { return nil }
func (fakeAdapter) close() error                 { return nil }
func (fakeAdapter) decode([]byte) (saprobe.PCMFormat, []int16, error) {
	return saprobe.PCMFormat{SampleRate: 44100, BitDepth: saprobe.Depth16, Channels: 2}, []int16{0, 0}, nil
}

// mp3StreamWithUnrecoverableTail builds 1+FrameMatchRequired valid MP3
// frames (enough for the first-frame synchronizer to confirm the first one)
// followed by enough non-matching bytes that a resync attempt after the
// last frame scans the whole FrameResyncMaxCheckBytes window without
// finding a candidate, surfacing mpegaudio.ErrResyncExhausted rather than a
// short-read "clean EOF".
func mp3StreamWithUnrecoverableTail(t *testing.T) *ringbuf.Stream {
	t.Helper()

	frame := mp3Frame(t, mpeg1Layer3_128_44100)

	var data []byte
	for range 1 + mpegaudio.FrameMatchRequired {
		data = append(data, frame...)
	}

	data = append(data, make([]byte, mpegaudio.FrameResyncMaxCheckBytes+16)...)

	stream := ringbuf.New(0)
	if _, err := stream.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	return stream
}

func TestGetFrameSurfacesResyncExhaustionAsEOF(t *testing.T) {
	t.Parallel()

	stream := mp3StreamWithUnrecoverableTail(t)

	s := &session{audioType: MP3, stream: stream, adapter: fakeAdapter{}}
	if err := s.syncFirstFrame(); err != nil {
		t.Fatalf("syncFirstFrame: %v", err)
	}

	for i := range 1 + mpegaudio.FrameMatchRequired {
		ok, err := s.getFrame()
		if !ok || err != nil {
			t.Fatalf("getFrame %d: ok=%v err=%v, want ok=true err=nil", i, ok, err)
		}
	}

	ok, err := s.getFrame()
	if ok {
		t.Fatalf("getFrame past last frame: ok=true, want false")
	}

	if !errors.Is(err, io.EOF) {
		t.Fatalf("getFrame past last frame err=%v, want io.EOF", err)
	}
}

func TestPlayerRunSurfacesResyncExhaustionAsEOF(t *testing.T) {
	t.Parallel()

	stream := mp3StreamWithUnrecoverableTail(t)

	s := &session{audioType: MP3, stream: stream, adapter: fakeAdapter{}}
	if err := s.syncFirstFrame(); err != nil {
		t.Fatalf("syncFirstFrame: %v", err)
	}

	p := &Player{}
	p.sess = s

	err := p.Run()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Run() err=%v, want io.EOF", err)
	}
}
