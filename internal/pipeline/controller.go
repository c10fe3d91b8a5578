package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/smazurov/waveoverlay/internal/audio"
	"github.com/smazurov/waveoverlay/internal/encoder"
	"github.com/smazurov/waveoverlay/internal/events"
	"github.com/smazurov/waveoverlay/internal/metrics"
	"github.com/smazurov/waveoverlay/internal/wave"
)

// FrameSink receives rasterized frames and writes them to the output
// container. Implemented by encoder.Sink.
type FrameSink interface {
	Open() error
	Submit(img *image.RGBA) error
	Close() error
	Alive() bool
}

// Controller orchestrates a render run: load audio, rasterize frames
// through a worker pool, stream them to the encoder, finalize.
type Controller struct {
	cfg     *Config
	logger  *slog.Logger
	bus     *events.Bus
	metrics *metrics.Metrics
	state   *State

	// Seams for tests.
	loadFile func(path string) (*audio.Buffer, error)
	newSink  func(p *encoder.Params) FrameSink
}

// NewController creates a controller for one run of cfg.
func NewController(cfg *Config, logger *slog.Logger, bus *events.Bus, m *metrics.Metrics) *Controller {
	return &Controller{
		cfg:      cfg,
		logger:   logger,
		bus:      bus,
		metrics:  m,
		state:    NewState(),
		loadFile: audio.LoadFile,
		newSink: func(p *encoder.Params) FrameSink {
			return encoder.NewSink(p, logger)
		},
	}
}

// State returns the run's progress tracker.
func (c *Controller) State() *State {
	return c.state
}

func (c *Controller) setPhase(p Phase) {
	c.state.SetPhase(p)
	c.bus.Publish(events.PhaseChangedEvent{Phase: p.String()})
	c.logger.Info("Phase changed", "phase", p.String())
}

// Run executes the pipeline and blocks until the output is finalized
// or the run fails. Cancelling ctx stops frame production at the next
// frame boundary; the container is still finalized with the frames
// written so far.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		c.state.Fail(err)
		return err
	}

	c.setPhase(PhaseLoadingAudio)
	tracks, err := c.loadTracks()
	if err != nil {
		return c.fail(PhaseLoadingAudio, err)
	}

	windowers := make([]*wave.Windower, len(tracks))
	total := 0
	for i, tr := range tracks {
		w := wave.NewWindower(tr.NumFrames(), tr.SampleRate, c.cfg.FPS, c.cfg.WindowSeconds)
		windowers[i] = w
		if n := w.TotalFrames(); n > total {
			total = n
		}
	}
	c.state.SetTotal(total)
	c.metrics.FramesTotal.Set(float64(total))
	c.logger.Info("Audio loaded",
		"tracks", len(tracks),
		"frames", total,
		"duration_seconds", tracks[0].Duration())

	color, err := wave.ParseHexColor(c.cfg.Color)
	if err != nil {
		return c.fail(PhaseLoadingAudio, err)
	}
	spec := wave.FrameSpec{Width: c.cfg.Width, Height: c.cfg.Height, FPS: c.cfg.FPS}
	rast := wave.NewRasterizer(spec, wave.Style{
		Color:         color,
		LineWidth:     c.cfg.LineWidth,
		VerticalScale: c.cfg.VerticalScale,
	})

	params := &encoder.Params{
		Width:      c.cfg.Width,
		Height:     c.cfg.Height,
		FPS:        c.cfg.FPS,
		Codec:      c.cfg.Codec,
		OutputPath: c.cfg.Output,
		FFmpegPath: c.cfg.FFmpegPath,
	}
	if c.cfg.MuxAudio {
		params.AudioPath = c.cfg.Inputs[0]
	}

	sink := c.newSink(params)
	if err := sink.Open(); err != nil {
		return c.fail(PhaseRendering, fmt.Errorf("start encoder: %w", err))
	}
	c.state.SetEncoderAlive(true)

	c.setPhase(PhaseRendering)
	frameBytes := float64(spec.FrameBytes())
	lastProgress := time.Now()

	render := func(index int) (*image.RGBA, error) {
		start := time.Now()
		layers := make([]*image.RGBA, len(tracks))
		for i, tr := range tracks {
			win := windowers[i].WindowFor(index)
			layers[i] = rast.Render(tr.Samples[win.Start:win.End])
		}
		img := wave.Composite(layers...)
		c.metrics.RenderDuration.Observe(time.Since(start).Seconds())
		c.metrics.FramesRendered.Inc()
		return img, nil
	}

	deliver := func(index int, img *image.RGBA) error {
		if err := sink.Submit(img); err != nil {
			return err
		}
		emitted := c.state.FrameEmitted()
		c.metrics.FramesSubmitted.Inc()
		c.metrics.BytesWritten.Add(frameBytes)
		if time.Since(lastProgress) >= time.Second || emitted == total {
			lastProgress = time.Now()
			c.state.SetEncoderAlive(sink.Alive())
			c.bus.Publish(events.ProgressEvent{FramesEmitted: emitted, FramesTotal: total})
			c.logger.Info("Rendering", "frame", emitted, "total", total)
		}
		return nil
	}

	seq := NewSequencer(total, c.cfg.Workers, render, c.logger)
	runErr := seq.Run(ctx, deliver)

	c.setPhase(PhaseFinalizing)
	closeErr := sink.Close()
	c.state.SetEncoderAlive(false)

	if runErr != nil {
		if closeErr != nil {
			c.logger.Warn("Encoder close failed after pipeline error", "error", closeErr)
		}
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			c.state.Fail(runErr)
			c.logger.Warn("Render cancelled, output truncated",
				"frames_written", c.state.Snapshot().FramesEmitted,
				"output", c.cfg.Output)
			return runErr
		}
		return c.fail(PhaseRendering, runErr)
	}
	if closeErr != nil {
		return c.fail(PhaseFinalizing, fmt.Errorf("finalize output: %w", closeErr))
	}

	c.setPhase(PhaseDone)
	c.bus.Publish(events.RunCompletedEvent{Frames: total, Output: c.cfg.Output})
	c.logger.Info("Render complete", "frames", total, "output", c.cfg.Output)
	return nil
}

// loadTracks decodes every input file and mixes each to mono.
func (c *Controller) loadTracks() ([]*audio.Buffer, error) {
	tracks := make([]*audio.Buffer, 0, len(c.cfg.Inputs))
	for _, path := range c.cfg.Inputs {
		buf, err := c.loadFile(path)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("Decoded audio",
			"path", path,
			"sample_rate", buf.SampleRate,
			"channels", buf.Channels,
			"frames", buf.NumFrames())
		tracks = append(tracks, buf.Mono())
	}
	return tracks, nil
}

func (c *Controller) fail(phase Phase, err error) error {
	c.state.Fail(err)
	c.bus.Publish(events.RunFailedEvent{Phase: phase.String(), Error: err.Error()})
	c.logger.Error("Run failed", "phase", phase.String(), "error", err)
	return err
}
