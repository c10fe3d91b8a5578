package audio

import (
	"os"

	"github.com/go-audio/wav"
)

// LoadFile decodes a PCM WAV file into a normalized Buffer.
// All failures come back as *DecodeError carrying the file path.
func LoadFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, &DecodeError{Path: path, Err: ErrNotWAV}
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	sampleRate := pcm.Format.SampleRate
	channels := pcm.Format.NumChannels
	if sampleRate <= 0 || channels <= 0 {
		return nil, &DecodeError{Path: path, Err: ErrBadFormat}
	}

	bitDepth := int(d.BitDepth)
	if pcm.SourceBitDepth != 0 {
		bitDepth = pcm.SourceBitDepth
	}
	scale := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		s := float64(v) / scale
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}
		samples[i] = s
	}

	return &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
	}, nil
}
