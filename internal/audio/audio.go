// Package audio holds the decoded PCM model the render pipeline works on.
package audio

// Buffer is a fully decoded PCM clip: interleaved float samples in [-1,1].
// Buffers are immutable after load and safe to share across render workers.
type Buffer struct {
	SampleRate int
	Channels   int
	Samples    []float64
}

// NumFrames returns the number of sample frames (samples per channel).
func (b *Buffer) NumFrames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the clip length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.NumFrames()) / float64(b.SampleRate)
}

// Mono returns a single-channel view of the buffer, averaging interleaved
// channels. A mono buffer is returned as-is.
func (b *Buffer) Mono() *Buffer {
	if b.Channels <= 1 {
		return b
	}

	frames := b.NumFrames()
	out := make([]float64, frames)
	inv := 1.0 / float64(b.Channels)

	switch b.Channels {
	case 2:
		for f := 0; f < frames; f++ {
			out[f] = (b.Samples[2*f] + b.Samples[2*f+1]) * 0.5
		}
	default:
		for f := 0; f < frames; f++ {
			sum := 0.0
			base := f * b.Channels
			for c := 0; c < b.Channels; c++ {
				sum += b.Samples[base+c]
			}
			out[f] = sum * inv
		}
	}

	return &Buffer{
		SampleRate: b.SampleRate,
		Channels:   1,
		Samples:    out,
	}
}
