package wave

import "math"

// Window is a half-open sample range [Start, End) visible in one frame.
type Window struct {
	Start int
	End   int
}

// Len returns the number of samples in the window.
func (w Window) Len() int { return w.End - w.Start }

// Windower maps frame indices to the sample range visible in that frame.
// Consecutive windows overlap when the view span exceeds the frame stride.
type Windower struct {
	sampleCount int
	sampleRate  int
	fps         int
	halfWidth   int
}

// NewWindower builds a windower over a mono sample buffer.
// windowSeconds is the span of audio visible in each frame.
func NewWindower(sampleCount, sampleRate, fps int, windowSeconds float64) *Windower {
	half := int(windowSeconds * float64(sampleRate) / 2)
	if half < 1 {
		half = 1
	}
	return &Windower{
		sampleCount: sampleCount,
		sampleRate:  sampleRate,
		fps:         fps,
		halfWidth:   half,
	}
}

// TotalFrames returns ceil(duration * fps), computed in integer math so the
// count is exact. An empty buffer still yields one frame.
func (w *Windower) TotalFrames() int {
	if w.sampleCount <= 0 || w.sampleRate <= 0 {
		return 1
	}
	n := (w.sampleCount*w.fps + w.sampleRate - 1) / w.sampleRate
	if n < 1 {
		n = 1
	}
	return n
}

// WindowFor returns the clamped sample window for a frame index. Windows
// near the edges are truncated, not zero-padded, and the call never fails:
// 0 <= Start <= End <= sampleCount always holds.
func (w *Windower) WindowFor(frameIndex int) Window {
	center := int(math.Round(float64(frameIndex) / float64(w.fps) * float64(w.sampleRate)))
	if center > w.sampleCount {
		center = w.sampleCount
	}
	if center < 0 {
		center = 0
	}

	start := center - w.halfWidth
	if start < 0 {
		start = 0
	}
	end := center + w.halfWidth
	if end > w.sampleCount {
		end = w.sampleCount
	}

	return Window{Start: start, End: end}
}
