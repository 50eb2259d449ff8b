package mpegaudio_test

import (
	"testing"

	"github.com/mycophonic/saprobe/mpegaudio"
	"github.com/mycophonic/saprobe/ringbuf"
)

func TestGetFrameEmitsConsecutiveFrames(t *testing.T) {
	t.Parallel()

	frame := mp3Frame(t, mpeg1Layer3_128_44100)

	const n = 3

	var data []byte
	for range n {
		data = append(data, frame...)
	}

	stream := ringbuf.New(0)
	if _, err := stream.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pos := int64(0)

	for i := range n {
		payload, next, h, ok, err := mpegaudio.GetFrame(stream, pos, mpeg1Layer3_128_44100)
		if err != nil || !ok {
			t.Fatalf("GetFrame(%d): ok=%v err=%v", i, ok, err)
		}

		if len(payload) != len(frame) {
			t.Errorf("frame %d: len = %d, want %d", i, len(payload), len(frame))
		}

		if h.FrameSizeBytes != len(frame) {
			t.Errorf("frame %d: header frame size = %d, want %d", i, h.FrameSizeBytes, len(frame))
		}

		pos = next
	}

	if pos != int64(len(data)) {
		t.Errorf("final pos = %d, want %d", pos, len(data))
	}

	if _, _, _, ok, err := mpegaudio.GetFrame(stream, pos, mpeg1Layer3_128_44100); ok || err != nil {
		t.Fatalf("GetFrame past end: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestGetFrameResyncsPastInsertedGarbageByte(t *testing.T) {
	t.Parallel()

	frame := mp3Frame(t, mpeg1Layer3_128_44100)

	// Resync requires FrameMatchRequired successor frames to confirm a
	// candidate, so the second (post-garbage) frame needs its own
	// successors present in the stream to be confirmable.
	data := append(append([]byte{}, frame...), 0x00)
	for range 1 + mpegaudio.FrameMatchRequired {
		data = append(data, frame...)
	}

	stream := ringbuf.New(0)
	if _, err := stream.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	payload1, pos1, _, ok, err := mpegaudio.GetFrame(stream, 0, mpeg1Layer3_128_44100)
	if err != nil || !ok {
		t.Fatalf("GetFrame 1: ok=%v err=%v", ok, err)
	}

	if len(payload1) != len(frame) {
		t.Fatalf("frame 1 len = %d, want %d", len(payload1), len(frame))
	}

	// pos1 now sits on the inserted garbage byte; GetFrame must detect the
	// header mismatch and resync past it to the second frame.
	payload2, pos2, _, ok, err := mpegaudio.GetFrame(stream, pos1, mpeg1Layer3_128_44100)
	if err != nil || !ok {
		t.Fatalf("GetFrame 2: ok=%v err=%v", ok, err)
	}

	if len(payload2) != len(frame) {
		t.Fatalf("frame 2 len = %d, want %d", len(payload2), len(frame))
	}

	if want := pos1 + 1 + int64(len(frame)); pos2 != want {
		t.Errorf("pos after frame 2 = %d, want %d", pos2, want)
	}
}

func TestResyncFailsOnTruncatedConfirmation(t *testing.T) {
	t.Parallel()

	frame := mp3Frame(t, mpeg1Layer3_128_44100)

	// Only two of the three frames required for init (one plus
	// FrameMatchRequired=2 successors) are present.
	data := append(append([]byte{}, frame...), frame...)

	stream := ringbuf.New(0)
	if _, err := stream.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, found, err := mpegaudio.Resync(stream, 0, 0)
	_ = err

	if found {
		t.Fatalf("Resync unexpectedly confirmed with only 2 of 3 required frames")
	}
}
