// Package wave maps audio samples to frame windows and rasterizes them
// into transparent RGBA frames.
package wave

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Resolution and frame rate limits for a render run.
const (
	MaxWidth  = 8192
	MaxHeight = 4320
	MinFPS    = 24
	MaxFPS    = 120
)

// FrameSpec fixes the output geometry for the whole run.
type FrameSpec struct {
	Width  int
	Height int
	FPS    int
}

// FrameBytes returns the size of one packed RGBA frame.
func (s FrameSpec) FrameBytes() int {
	return s.Width * s.Height * 4
}

// Style controls how the waveform line is drawn.
type Style struct {
	Color         color.NRGBA
	LineWidth     float64
	VerticalScale float64 // (0,1], keeps peaks off the frame edges
}

// ParseHexColor parses #RRGGBB or #RRGGBBAA into a straight-alpha color.
// A missing alpha component means fully opaque.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("color %q: want #RRGGBB or #RRGGBBAA", s)
	}

	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}

	if len(hex) == 6 {
		return color.NRGBA{
			R: uint8(v >> 16),
			G: uint8(v >> 8),
			B: uint8(v),
			A: 0xff,
		}, nil
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
