package pipeline

import "sync"

// Phase identifies where a run is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingAudio
	PhaseRendering
	PhaseFinalizing
	PhaseDone
	PhaseFailed
)

// String returns the phase name for logging and events.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingAudio:
		return "loading_audio"
	case PhaseRendering:
		return "rendering"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State tracks run progress. Safe for concurrent use.
type State struct {
	mu            sync.Mutex
	phase         Phase
	framesTotal   int
	framesEmitted int
	encoderAlive  bool
	err           error
}

// NewState returns a State in the idle phase.
func NewState() *State {
	return &State{phase: PhaseIdle}
}

// SetPhase records a phase transition.
func (s *State) SetPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// SetTotal records the frame count the run will produce.
func (s *State) SetTotal(n int) {
	s.mu.Lock()
	s.framesTotal = n
	s.mu.Unlock()
}

// FrameEmitted increments the emitted-frame counter and returns the
// new count.
func (s *State) FrameEmitted() int {
	s.mu.Lock()
	s.framesEmitted++
	n := s.framesEmitted
	s.mu.Unlock()
	return n
}

// SetEncoderAlive records whether the encoder subprocess is running.
func (s *State) SetEncoderAlive(alive bool) {
	s.mu.Lock()
	s.encoderAlive = alive
	s.mu.Unlock()
}

// Fail records the first error of the run. Later calls are ignored so
// the root cause is what gets reported.
func (s *State) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.phase = PhaseFailed
	s.mu.Unlock()
}

// Err returns the first recorded error, or nil.
func (s *State) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Snapshot is a point-in-time copy of run progress.
type Snapshot struct {
	Phase         Phase
	FramesTotal   int
	FramesEmitted int
	EncoderAlive  bool
	Err           error
}

// Snapshot returns a consistent copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phase:         s.phase,
		FramesTotal:   s.framesTotal,
		FramesEmitted: s.framesEmitted,
		EncoderAlive:  s.encoderAlive,
		Err:           s.err,
	}
}
