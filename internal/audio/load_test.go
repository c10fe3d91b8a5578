package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes a 16-bit PCM WAV file and returns its path.
func writeTestWAV(t *testing.T, sampleRate, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	e := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := e.Write(buf); err != nil {
		t.Fatalf("encoder.Write: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("encoder.Close: %v", err)
	}
	f.Close()
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeTestWAV(t, 8000, 1, []int{0, 16384, -16384, 32767, -32768})

	buf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if buf.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", buf.SampleRate)
	}
	if buf.Channels != 1 {
		t.Errorf("Channels = %d, want 1", buf.Channels)
	}

	want := []float64{0, 0.5, -0.5, 32767.0 / 32768.0, -1}
	if len(buf.Samples) != len(want) {
		t.Fatalf("sample count = %d, want %d", len(buf.Samples), len(want))
	}
	for i, w := range want {
		if math.Abs(buf.Samples[i]-w) > 1e-9 {
			t.Errorf("Samples[%d] = %v, want %v", i, buf.Samples[i], w)
		}
	}
}

func TestLoadFileStereo(t *testing.T) {
	path := writeTestWAV(t, 44100, 2, []int{100, -100, 200, -200})

	buf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if buf.Channels != 2 {
		t.Errorf("Channels = %d, want 2", buf.Channels)
	}
	if buf.NumFrames() != 2 {
		t.Errorf("NumFrames() = %d, want 2", buf.NumFrames())
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("/nonexistent/audio.wav")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("LoadFile error = %T, want *DecodeError", err)
	}
	if de.Path != "/nonexistent/audio.wav" {
		t.Errorf("DecodeError.Path = %q, want input path", de.Path)
	}
}

func TestLoadFileNotWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("this is not audio"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := LoadFile(path)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("LoadFile error = %T, want *DecodeError", err)
	}
	if !errors.Is(err, ErrNotWAV) {
		t.Errorf("error should wrap ErrNotWAV, got %v", err)
	}
}
