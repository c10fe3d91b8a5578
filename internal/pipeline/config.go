package pipeline

import (
	"fmt"

	"github.com/smazurov/waveoverlay/internal/encoder"
	"github.com/smazurov/waveoverlay/internal/wave"
)

// Defaults for a render run.
const (
	DefaultWidth         = 1920
	DefaultHeight        = 400
	DefaultFPS           = 30
	DefaultWindowSeconds = 2.5
	DefaultVerticalScale = 0.9
	DefaultLineWidth     = 1.5
	DefaultColor         = "#C04851"
)

// Config describes a complete render run.
type Config struct {
	Inputs        []string
	Output        string
	Width         int
	Height        int
	FPS           int
	WindowSeconds float64
	VerticalScale float64
	LineWidth     float64
	Color         string
	Codec         encoder.Codec
	Workers       int
	FFmpegPath    string
	MuxAudio      bool
}

// ValidationError reports a rejected configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration against renderable limits.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return &ValidationError{Field: "inputs", Reason: "at least one audio file is required"}
	}
	if c.Output == "" {
		return &ValidationError{Field: "output", Reason: "output path is required"}
	}
	if c.Width < 1 || c.Width > wave.MaxWidth {
		return &ValidationError{Field: "width", Reason: fmt.Sprintf("must be between 1 and %d", wave.MaxWidth)}
	}
	if c.Height < 1 || c.Height > wave.MaxHeight {
		return &ValidationError{Field: "height", Reason: fmt.Sprintf("must be between 1 and %d", wave.MaxHeight)}
	}
	if c.FPS < wave.MinFPS || c.FPS > wave.MaxFPS {
		return &ValidationError{Field: "fps", Reason: fmt.Sprintf("must be between %d and %d", wave.MinFPS, wave.MaxFPS)}
	}
	if c.WindowSeconds <= 0 {
		return &ValidationError{Field: "window-seconds", Reason: "must be positive"}
	}
	if c.VerticalScale <= 0 || c.VerticalScale > 1 {
		return &ValidationError{Field: "vertical-scale", Reason: "must be in (0, 1]"}
	}
	if c.LineWidth <= 0 {
		return &ValidationError{Field: "line-width", Reason: "must be positive"}
	}
	if _, err := wave.ParseHexColor(c.Color); err != nil {
		return &ValidationError{Field: "color", Reason: err.Error()}
	}
	if !c.Codec.Valid() {
		return &ValidationError{Field: "codec", Reason: fmt.Sprintf("unsupported codec %q", c.Codec)}
	}
	if c.Workers < 0 {
		return &ValidationError{Field: "workers", Reason: "must be zero or positive"}
	}
	return nil
}
