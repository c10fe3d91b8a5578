package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smazurov/waveoverlay/internal/config"
	"github.com/smazurov/waveoverlay/internal/encoder"
	"github.com/smazurov/waveoverlay/internal/events"
	"github.com/smazurov/waveoverlay/internal/logging"
	"github.com/smazurov/waveoverlay/internal/metrics"
	"github.com/smazurov/waveoverlay/internal/pipeline"
)

// RenderOptions holds the render command configuration. Flag variables
// are bound to these fields so config file and env overrides land in
// one place.
type RenderOptions struct {
	Config string

	Inputs        []string `toml:"render.inputs" env:"RENDER_INPUTS"`
	Output        string   `toml:"render.output" env:"RENDER_OUTPUT"`
	Width         int      `toml:"render.width" env:"RENDER_WIDTH"`
	Height        int      `toml:"render.height" env:"RENDER_HEIGHT"`
	Fps           int      `toml:"render.fps" env:"RENDER_FPS"`
	WindowSeconds float64  `toml:"render.window_seconds" env:"RENDER_WINDOW_SECONDS"`
	VerticalScale float64  `toml:"render.vertical_scale" env:"RENDER_VERTICAL_SCALE"`
	LineWidth     float64  `toml:"render.line_width" env:"RENDER_LINE_WIDTH"`
	Color         string   `toml:"render.color" env:"RENDER_COLOR"`
	Codec         string   `toml:"render.codec" env:"RENDER_CODEC"`
	Workers       int      `toml:"render.workers" env:"RENDER_WORKERS"`
	MuxAudio      bool     `toml:"render.mux_audio" env:"RENDER_MUX_AUDIO"`
	FfmpegPath    string   `toml:"encoder.ffmpeg_path" env:"FFMPEG_PATH"`
	MetricsListen string   `toml:"metrics.listen" env:"METRICS_LISTEN"`

	LoggingLevel    string `toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingEncoder  string `toml:"logging.encoder" env:"LOGGING_ENCODER"`
	LoggingPipeline string `toml:"logging.pipeline" env:"LOGGING_PIPELINE"`
	LoggingAudio    string `toml:"logging.audio" env:"LOGGING_AUDIO"`
	LoggingFfmpeg   string `toml:"logging.ffmpeg" env:"LOGGING_FFMPEG"`
}

// loggingConfig merges the config file's logging table with the
// flag-bound overrides. The file may name a level for any module; the
// flags cover the known ones and win when set.
func loggingConfig(opts *RenderOptions) logging.Config {
	cfg := config.LoadLoggingConfig(opts.Config)
	cfg.Level = opts.LoggingLevel
	cfg.Format = opts.LoggingFormat

	for module, level := range map[string]string{
		"encoder":  opts.LoggingEncoder,
		"pipeline": opts.LoggingPipeline,
		"audio":    opts.LoggingAudio,
		"ffmpeg":   opts.LoggingFfmpeg,
	} {
		if level != "" {
			cfg.Modules[module] = level
		}
	}
	return cfg
}

// CreateRenderCmd creates the render command.
func CreateRenderCmd() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a transparent waveform overlay video",
		Long: `Decodes one or more WAV files, rasterizes a scrolling waveform for every ` +
			`video frame and streams the frames to ffmpeg, producing a video with an alpha ` +
			`channel suitable for overlay compositing.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := config.LoadConfig(opts, cmd); err != nil {
				logging.GetLogger("main").Warn("Failed to load config", "error", err)
			}

			logging.Initialize(loggingConfig(opts))
			logger := logging.GetLogger("pipeline")

			m := metrics.New()
			if opts.MetricsListen != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", m.Handler())
					logger.Info("Serving metrics", "listen", opts.MetricsListen)
					if err := http.ListenAndServe(opts.MetricsListen, mux); err != nil {
						logger.Warn("Metrics listener failed", "error", err)
					}
				}()
			}

			cfg := &pipeline.Config{
				Inputs:        opts.Inputs,
				Output:        opts.Output,
				Width:         opts.Width,
				Height:        opts.Height,
				FPS:           opts.Fps,
				WindowSeconds: opts.WindowSeconds,
				VerticalScale: opts.VerticalScale,
				LineWidth:     opts.LineWidth,
				Color:         opts.Color,
				Codec:         encoder.Codec(opts.Codec),
				Workers:       opts.Workers,
				FFmpegPath:    opts.FfmpegPath,
				MuxAudio:      opts.MuxAudio,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			controller := pipeline.NewController(cfg, logger, events.New(), m)
			if err := controller.Run(ctx); err != nil {
				snap := controller.State().Snapshot()
				if errors.Is(err, context.Canceled) {
					logger.Warn("Render cancelled",
						"frames_emitted", snap.FramesEmitted,
						"output", opts.Output)
				} else {
					logger.Error("Render failed",
						"phase", snap.Phase.String(),
						"frames_emitted", snap.FramesEmitted,
						"encoder_alive", snap.EncoderAlive,
						"error", err)
				}
				os.Exit(1)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Config, "config", "c", "config.toml", "Path to configuration file")
	flags.StringSliceVarP(&opts.Inputs, "inputs", "i", nil, "WAV files to render, one waveform layer each")
	flags.StringVarP(&opts.Output, "output", "o", "", "Output video path")
	flags.IntVar(&opts.Width, "width", pipeline.DefaultWidth, "Frame width in pixels")
	flags.IntVar(&opts.Height, "height", pipeline.DefaultHeight, "Frame height in pixels")
	flags.IntVar(&opts.Fps, "fps", pipeline.DefaultFPS, "Output frame rate")
	flags.Float64Var(&opts.WindowSeconds, "window-seconds", pipeline.DefaultWindowSeconds, "Seconds of audio visible per frame")
	flags.Float64Var(&opts.VerticalScale, "vertical-scale", pipeline.DefaultVerticalScale, "Waveform amplitude as a fraction of frame height")
	flags.Float64Var(&opts.LineWidth, "line-width", pipeline.DefaultLineWidth, "Waveform stroke width in pixels")
	flags.StringVar(&opts.Color, "color", pipeline.DefaultColor, "Waveform color (#RRGGBB or #RRGGBBAA)")
	flags.StringVar(&opts.Codec, "codec", string(encoder.CodecProRes), "Output codec (prores, qtrle, vp9)")
	flags.IntVar(&opts.Workers, "workers", 0, "Rasterizer worker count (0 = all CPUs)")
	flags.BoolVar(&opts.MuxAudio, "mux-audio", false, "Mux the first input's audio into the output")
	flags.StringVar(&opts.FfmpegPath, "ffmpeg-path", "", "Path to the ffmpeg binary (default: ffmpeg on PATH)")
	flags.StringVar(&opts.MetricsListen, "metrics-listen", "", "Address for the Prometheus metrics endpoint (empty = disabled)")
	flags.StringVar(&opts.LoggingLevel, "logging-level", "info", "Global logging level (debug, info, warn, error)")
	flags.StringVar(&opts.LoggingFormat, "logging-format", "text", "Logging format (text, json)")
	flags.StringVar(&opts.LoggingEncoder, "logging-encoder", "", "Encoder logging level")
	flags.StringVar(&opts.LoggingPipeline, "logging-pipeline", "", "Pipeline logging level")
	flags.StringVar(&opts.LoggingAudio, "logging-audio", "", "Audio logging level")
	flags.StringVar(&opts.LoggingFfmpeg, "logging-ffmpeg", "", "Relayed ffmpeg output logging level")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}
