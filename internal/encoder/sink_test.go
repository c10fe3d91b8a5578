package encoder

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/smazurov/waveoverlay/internal/logging"
)

func testSink(t *testing.T, command []string) *Sink {
	t.Helper()
	s := NewSink(&Params{Width: 8, Height: 4, FPS: 30, Codec: CodecProRes, OutputPath: "out.mov"},
		logging.GetLogger("encoder-test"))
	s.command = command
	return s
}

func testFrame() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 8, 4))
}

// waitDead polls until the subprocess has been reaped.
func waitDead(t *testing.T, s *Sink) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for s.Alive() {
		if time.Now().After(deadline) {
			t.Fatal("subprocess did not exit in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSinkSubmitAndClose(t *testing.T) {
	s := testSink(t, []string{"/bin/sh", "-c", "cat > /dev/null"})
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Submit(testFrame()); err != nil {
			t.Fatalf("Submit frame %d: %v", i, err)
		}
	}
	if s.Submitted() != 3 {
		t.Errorf("Submitted() = %d, want 3", s.Submitted())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSinkSubmitAfterCrash(t *testing.T) {
	s := testSink(t, []string{"/bin/sh", "-c", "echo '[error] boom' >&2; exit 3"})
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitDead(t, s)

	err := s.Submit(testFrame())
	var te *TerminatedError
	if !errors.As(err, &te) {
		t.Fatalf("Submit error = %T (%v), want *TerminatedError", err, err)
	}
	if te.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", te.ExitCode)
	}
	if te.Stderr == "" {
		t.Error("TerminatedError should carry subprocess stderr")
	}
}

func TestSinkCloseReportsNonZeroExit(t *testing.T) {
	s := testSink(t, []string{"/bin/sh", "-c", "cat > /dev/null; exit 2"})
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Submit(testFrame()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	err := s.Close()
	var te *TerminatedError
	if !errors.As(err, &te) {
		t.Fatalf("Close error = %T (%v), want *TerminatedError", err, err)
	}
	if te.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", te.ExitCode)
	}
}

func TestSinkCloseIdempotent(t *testing.T) {
	s := testSink(t, []string{"/bin/sh", "-c", "cat > /dev/null"})
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v, want nil", err)
	}
}

func TestSinkSubmitBeforeOpen(t *testing.T) {
	s := testSink(t, nil)
	if err := s.Submit(testFrame()); err == nil {
		t.Error("Submit before Open should fail")
	}
}

func TestSinkRejectsWrongFrameSize(t *testing.T) {
	s := testSink(t, []string{"/bin/sh", "-c", "cat > /dev/null"})
	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	err := s.Submit(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err == nil {
		t.Fatal("Submit with mismatched frame size should fail")
	}
	var te *TerminatedError
	if errors.As(err, &te) {
		t.Error("size mismatch is a caller bug, not a TerminatedError")
	}
}

func TestSinkOpenMissingBinary(t *testing.T) {
	s := testSink(t, []string{"/nonexistent/ffmpeg-binary"})
	if err := s.Open(); err == nil {
		t.Error("Open with missing binary should fail")
	}
}
