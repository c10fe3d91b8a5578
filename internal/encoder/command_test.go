package encoder

import (
	"slices"
	"strings"
	"testing"
)

func TestBuildArgsRawInput(t *testing.T) {
	p := &Params{Width: 1920, Height: 400, FPS: 30, Codec: CodecProRes, OutputPath: "out.mov"}
	args := BuildArgs(p)

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-f rawvideo",
		"-pix_fmt rgba",
		"-video_size 1920x400",
		"-framerate 30",
		"-i pipe:0",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}

	if args[len(args)-1] != "out.mov" {
		t.Errorf("output path must be last, got %q", args[len(args)-1])
	}
}

func TestBuildArgsCodecs(t *testing.T) {
	tests := []struct {
		codec Codec
		want  []string
	}{
		{CodecProRes, []string{"-c:v", "prores_ks", "-profile:v", "4444", "-pix_fmt", "yuva444p10le"}},
		{CodecQTRLE, []string{"-c:v", "qtrle", "-pix_fmt", "argb"}},
		{CodecVP9, []string{"-c:v", "libvpx-vp9", "-pix_fmt", "yuva420p"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.codec), func(t *testing.T) {
			p := &Params{Width: 100, Height: 100, FPS: 24, Codec: tt.codec, OutputPath: "o" + tt.codec.Extension()}
			joined := strings.Join(BuildArgs(p), " ")
			if !strings.Contains(joined, strings.Join(tt.want, " ")) {
				t.Errorf("codec %s: args %s missing %v", tt.codec, joined, tt.want)
			}
		})
	}
}

func TestBuildArgsAudioMux(t *testing.T) {
	p := &Params{Width: 100, Height: 100, FPS: 24, Codec: CodecProRes, AudioPath: "in.wav", OutputPath: "out.mov"}
	args := BuildArgs(p)
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "-i in.wav") {
		t.Errorf("audio input missing: %s", joined)
	}
	if !strings.Contains(joined, "-c:a aac") {
		t.Errorf("mov audio codec should be aac: %s", joined)
	}
	if !slices.Contains(args, "-shortest") {
		t.Errorf("-shortest missing: %s", joined)
	}
}

func TestBuildArgsVP9Opus(t *testing.T) {
	p := &Params{Width: 100, Height: 100, FPS: 24, Codec: CodecVP9, AudioPath: "in.wav", OutputPath: "out.webm"}
	joined := strings.Join(BuildArgs(p), " ")
	if !strings.Contains(joined, "-c:a libopus") {
		t.Errorf("webm audio codec should be libopus: %s", joined)
	}
}

func TestBuildArgsNoAudio(t *testing.T) {
	p := &Params{Width: 100, Height: 100, FPS: 24, Codec: CodecProRes, OutputPath: "out.mov"}
	joined := strings.Join(BuildArgs(p), " ")
	if strings.Contains(joined, "-c:a") || strings.Contains(joined, "-shortest") {
		t.Errorf("video-only run must not carry audio flags: %s", joined)
	}
}

func TestCodecValidAndExtension(t *testing.T) {
	if !CodecProRes.Valid() || !CodecQTRLE.Valid() || !CodecVP9.Valid() {
		t.Error("supported codecs must be valid")
	}
	if Codec("h264").Valid() {
		t.Error("h264 cannot carry alpha and must be rejected")
	}
	if CodecVP9.Extension() != ".webm" {
		t.Errorf("vp9 extension = %q, want .webm", CodecVP9.Extension())
	}
	if CodecProRes.Extension() != ".mov" {
		t.Errorf("prores extension = %q, want .mov", CodecProRes.Extension())
	}
}
