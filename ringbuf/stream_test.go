package ringbuf_test

import (
	"errors"
	"io"
	"testing"

	"github.com/mycophonic/saprobe/ringbuf"
)

func TestWriteThenRead(t *testing.T) {
	t.Parallel()

	s := ringbuf.New(0)

	if _, err := s.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, 5)

	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if n != 5 || string(buf) != "hello" {
		t.Fatalf("Read got %q (%d), want %q", buf[:n], n, "hello")
	}
}

func TestReadAtDoesNotMoveCursor(t *testing.T) {
	t.Parallel()

	s := ringbuf.New(0)

	if _, err := s.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, 4)

	if _, err := s.ReadAt(6, buf); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}

	if string(buf) != "6789" {
		t.Fatalf("ReadAt got %q, want %q", buf, "6789")
	}

	// The plain read cursor must still be at 0.
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(buf[:n]) != "0123" {
		t.Fatalf("Read after ReadAt got %q, want %q", buf[:n], "0123")
	}
}

func TestSeekExtReleasesBytes(t *testing.T) {
	t.Parallel()

	s := ringbuf.New(0)

	if _, err := s.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := s.SeekExt(5, ringbuf.SeekStart); err != nil {
		t.Fatalf("SeekExt: %v", err)
	}

	buf := make([]byte, 2)
	if _, err := s.ReadAt(2, buf); !errors.Is(err, ringbuf.ErrReleased) {
		t.Fatalf("ReadAt below watermark: got err %v, want ErrReleased", err)
	}

	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(buf[:n]) != "56" {
		t.Fatalf("Read after SeekExt got %q, want %q", buf[:n], "56")
	}
}

func TestAllowDequeueToggleSuppressesRelease(t *testing.T) {
	t.Parallel()

	s := ringbuf.New(0)

	if _, err := s.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	prior := s.SetOption(ringbuf.OptionAllowDequeue, false)
	if !prior {
		t.Fatalf("SetOption prior = %v, want true (default)", prior)
	}

	if _, err := s.SeekExt(5, ringbuf.SeekStart); err != nil {
		t.Fatalf("SeekExt: %v", err)
	}

	// Dequeue was suppressed: byte 0 must still be readable.
	buf := make([]byte, 1)
	if _, err := s.ReadAt(0, buf); err != nil {
		t.Fatalf("ReadAt(0) after suppressed SeekExt: %v", err)
	}

	s.SetOption(ringbuf.OptionAllowDequeue, true)
}

func TestReadPastEndReturnsEOFWhenClosed(t *testing.T) {
	t.Parallel()

	s := ringbuf.New(0)

	if _, err := s.Write([]byte("ab")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	buf := make([]byte, 4)

	n, err := s.Read(buf)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Read got err %v, want io.EOF", err)
	}

	if n != 2 {
		t.Fatalf("Read got n=%d, want 2", n)
	}
}

func TestInputFuncPullsOnExhaustion(t *testing.T) {
	t.Parallel()

	s := ringbuf.New(0)

	chunks := [][]byte{[]byte("abc"), []byte("def")}
	call := 0
	s.SetInputFunc(func() ([]byte, error) {
		if call >= len(chunks) {
			return nil, io.EOF
		}

		c := chunks[call]
		call++

		return c, nil
	})

	buf := make([]byte, 6)

	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(buf[:n]) != "abcdef" {
		t.Fatalf("Read got %q, want %q", buf[:n], "abcdef")
	}
}

func TestSeekNegativeOffsetRejected(t *testing.T) {
	t.Parallel()

	s := ringbuf.New(0)

	if _, err := s.Seek(-1, ringbuf.SeekStart); !errors.Is(err, ringbuf.ErrNegativeOffset) {
		t.Fatalf("Seek(-1): got err %v, want ErrNegativeOffset", err)
	}
}
