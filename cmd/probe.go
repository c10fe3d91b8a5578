package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smazurov/waveoverlay/internal/audio"
	"github.com/smazurov/waveoverlay/internal/logging"
	"github.com/smazurov/waveoverlay/internal/wave"
)

// CreateProbeCmd creates the probe command. It inspects input files and
// the ffmpeg installation without rendering anything.
func CreateProbeCmd() *cobra.Command {
	var fps int
	var windowSeconds float64
	var ffmpegPath string

	cmd := &cobra.Command{
		Use:   "probe [wav-file...]",
		Short: "Inspect WAV inputs and the ffmpeg installation",
		Long: `Decodes each WAV file's header, reports its format and the number of video ` +
			`frames a render would produce, and verifies that ffmpeg can be executed.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			failed := false
			for _, path := range args {
				buf, err := audio.LoadFile(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed = true
					continue
				}
				mono := buf.Mono()
				w := wave.NewWindower(mono.NumFrames(), mono.SampleRate, fps, windowSeconds)
				fmt.Printf("%s: %d Hz, %d channel(s), %.2fs, %d frames at %d fps\n",
					path, buf.SampleRate, buf.Channels, buf.Duration(), w.TotalFrames(), fps)
			}

			if version, err := ffmpegVersion(ffmpegPath); err != nil {
				fmt.Fprintf(os.Stderr, "ffmpeg: %v\n", err)
				failed = true
			} else {
				fmt.Printf("ffmpeg: %s\n", version)
			}

			if failed {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 30, "Frame rate used for the frame count estimate")
	cmd.Flags().Float64Var(&windowSeconds, "window-seconds", 2.5, "Window length used for the estimate")
	cmd.Flags().StringVar(&ffmpegPath, "ffmpeg-path", "ffmpeg", "Path to the ffmpeg binary")

	return cmd
}

// ffmpegVersion runs ffmpeg -version and returns its first output line.
func ffmpegVersion(path string) (string, error) {
	out, err := exec.Command(path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("not runnable: %w", err)
	}
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	return "", fmt.Errorf("no version output")
}
