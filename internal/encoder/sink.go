package encoder

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/smazurov/waveoverlay/internal/logging"
	"github.com/smazurov/waveoverlay/internal/wave"
)

// TerminatedError reports that the encoder subprocess exited or closed its
// input stream while frames were still being submitted, or finished with a
// non-zero exit code. It carries the subprocess diagnostics.
type TerminatedError struct {
	ExitCode int
	Stderr   string
}

func (e *TerminatedError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("encoder terminated (exit code %d): %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("encoder terminated (exit code %d)", e.ExitCode)
}

// Sink owns the long-lived encoder subprocess and writes raw frame bytes to
// its stdin in submission order. Submit and Close are meant for a single
// consumer goroutine; Alive and Submitted may be read from elsewhere.
type Sink struct {
	params     *Params
	logger     logging.Logger
	procLogger logging.Logger

	// command overrides the argv built from params; used by tests to run a
	// stand-in binary instead of ffmpeg.
	command     []string
	killTimeout time.Duration

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	tail    *tailBuffer
	packBuf []byte

	done    chan struct{} // closed once the subprocess has been reaped
	waitErr error

	submitted int
	closed    bool
}

// NewSink creates a sink for one encoder run.
func NewSink(params *Params, logger logging.Logger) *Sink {
	return &Sink{
		params:      params,
		logger:      logger,
		procLogger:  logging.GetLogger("ffmpeg"),
		tail:        newTailBuffer(40),
		killTimeout: 5 * time.Second,
	}
}

// Open starts the encoder subprocess and attaches its stderr to the module
// logger. The subprocess is guaranteed to be reaped on every exit path once
// Open succeeds.
func (s *Sink) Open() error {
	argv := s.command
	if argv == nil {
		argv = append([]string{s.params.binary()}, BuildArgs(s.params)...)
	}

	cmd := exec.Command(argv[0], argv[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.done = make(chan struct{})

	s.logger.Info("Encoder started", "pid", cmd.Process.Pid, "command", strings.Join(argv, " "))

	stderrDone := make(chan struct{})
	go func() {
		s.scanStderr(stderr)
		close(stderrDone)
	}()
	go func() {
		<-stderrDone
		s.waitErr = cmd.Wait()
		close(s.done)
	}()

	return nil
}

// Submit packs one frame to straight-alpha RGBA bytes and writes it to the
// subprocess. A write that blocks on a full pipe is backpressure, not an
// error. Returns *TerminatedError once the subprocess is gone.
func (s *Sink) Submit(img *image.RGBA) error {
	if s.cmd == nil {
		return errors.New("sink not open")
	}

	bounds := img.Bounds()
	if bounds.Dx() != s.params.Width || bounds.Dy() != s.params.Height {
		return fmt.Errorf("frame size %dx%d does not match configured %dx%d",
			bounds.Dx(), bounds.Dy(), s.params.Width, s.params.Height)
	}

	select {
	case <-s.done:
		return s.terminated()
	default:
	}

	s.packBuf = wave.PackRGBA(s.packBuf, img)
	if _, err := s.stdin.Write(s.packBuf); err != nil {
		s.logger.Error("Frame write failed", "frame", s.submitted, "error", err)
		return s.terminated()
	}

	s.submitted++
	return nil
}

// Close signals end-of-stream, waits for the encoder to finalize the
// container, and reports a non-zero exit as failure. Safe to call more
// than once.
func (s *Sink) Close() error {
	if s.cmd == nil || s.closed {
		return nil
	}
	s.closed = true

	if err := s.stdin.Close(); err != nil {
		s.logger.Warn("Failed to close encoder input", "error", err)
	}

	<-s.done

	if s.waitErr != nil {
		return &TerminatedError{
			ExitCode: exitCodeFromError(s.waitErr),
			Stderr:   s.tail.String(),
		}
	}

	s.logger.Info("Encoder finished", "frames", s.submitted, "output", s.params.OutputPath)
	return nil
}

// Alive reports whether the subprocess is still running.
func (s *Sink) Alive() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Submitted returns the number of frames written so far.
func (s *Sink) Submitted() int { return s.submitted }

// terminated reaps the subprocess and builds the failure diagnostic.
func (s *Sink) terminated() error {
	select {
	case <-s.done:
	case <-time.After(s.killTimeout):
		s.logger.Warn("Encoder did not exit, forcing kill", "timeout", s.killTimeout)
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.done
	}

	return &TerminatedError{
		ExitCode: exitCodeFromError(s.waitErr),
		Stderr:   s.tail.String(),
	}
}

// scanStderr routes subprocess log lines to the module logger and the
// diagnostic tail.
func (s *Sink) scanStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		level, msg := ParseLogLevel(line)
		s.tail.Add(msg)

		switch level {
		case "fatal", "error", "panic":
			s.procLogger.Error(msg)
		case "warning":
			s.procLogger.Warn(msg)
		case "debug", "verbose", "trace":
			s.procLogger.Debug(msg)
		default:
			s.procLogger.Info(msg)
		}
	}
}

// exitCodeFromError extracts the exit code from a Wait error.
// Returns 0 for nil, the code for ExitError, 1 otherwise.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
