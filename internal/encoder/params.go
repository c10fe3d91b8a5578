// Package encoder owns the ffmpeg subprocess that turns the raw RGBA frame
// stream into an alpha-capable video container.
package encoder

import "fmt"

// Codec selects the output encoder. Every supported codec preserves the
// alpha channel.
type Codec string

const (
	// CodecProRes is ProRes 4444 in a QuickTime container.
	CodecProRes Codec = "prores"
	// CodecQTRLE is the QuickTime Animation codec, lossless RGBA.
	CodecQTRLE Codec = "qtrle"
	// CodecVP9 is libvpx-vp9 with yuva420p in a WebM container.
	CodecVP9 Codec = "vp9"
)

// Valid reports whether the codec is one of the supported choices.
func (c Codec) Valid() bool {
	switch c {
	case CodecProRes, CodecQTRLE, CodecVP9:
		return true
	}
	return false
}

// Extension returns the container file extension the codec belongs in.
func (c Codec) Extension() string {
	if c == CodecVP9 {
		return ".webm"
	}
	return ".mov"
}

// Params describes one encoder run. The frame stream arrives on stdin as
// packed straight-alpha RGBA, width*height*4 bytes per frame.
type Params struct {
	Width  int
	Height int
	FPS    int

	Codec      Codec
	AudioPath  string // source audio muxed into the container; empty = video only
	OutputPath string
	FFmpegPath string // binary to execute, default "ffmpeg"
}

// FrameBytes returns the size of one raw input frame.
func (p *Params) FrameBytes() int {
	return p.Width * p.Height * 4
}

func (p *Params) binary() string {
	if p.FFmpegPath != "" {
		return p.FFmpegPath
	}
	return "ffmpeg"
}

func (p *Params) String() string {
	return fmt.Sprintf("%dx%d@%dfps %s -> %s", p.Width, p.Height, p.FPS, p.Codec, p.OutputPath)
}
