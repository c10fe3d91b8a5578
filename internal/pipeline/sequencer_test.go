package pipeline

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"testing"
	"time"

	"github.com/smazurov/waveoverlay/internal/logging"
)

func blankFrame() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func TestSequencerDeliversInOrder(t *testing.T) {
	const total = 200
	render := func(index int) (*image.RGBA, error) {
		// Jitter so workers finish out of order.
		time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
		return blankFrame(), nil
	}

	var delivered []int
	deliver := func(index int, img *image.RGBA) error {
		delivered = append(delivered, index)
		return nil
	}

	seq := NewSequencer(total, 4, render, logging.GetLogger("test"))
	if err := seq.Run(context.Background(), deliver); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(delivered) != total {
		t.Fatalf("delivered %d frames, want %d", len(delivered), total)
	}
	for i, idx := range delivered {
		if idx != i {
			t.Fatalf("frame %d delivered at position %d", idx, i)
		}
	}
}

func TestSequencerSlowFrameThrottlesWorkers(t *testing.T) {
	// Frame 0 renders far slower than its successors. The feeder must
	// stop handing out indices once the in-flight window fills, so the
	// run completes in order instead of aborting.
	const total = 100
	render := func(index int) (*image.RGBA, error) {
		if index == 0 {
			time.Sleep(200 * time.Millisecond)
		}
		return blankFrame(), nil
	}

	var delivered []int
	deliver := func(index int, img *image.RGBA) error {
		delivered = append(delivered, index)
		return nil
	}

	seq := NewSequencer(total, 2, render, logging.GetLogger("test"))
	if err := seq.Run(context.Background(), deliver); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(delivered) != total {
		t.Fatalf("delivered %d frames, want %d", len(delivered), total)
	}
	for i, idx := range delivered {
		if idx != i {
			t.Fatalf("frame %d delivered at position %d", idx, i)
		}
	}
}

func TestSequencerRenderError(t *testing.T) {
	boom := errors.New("boom")
	render := func(index int) (*image.RGBA, error) {
		if index == 10 {
			return nil, boom
		}
		return blankFrame(), nil
	}

	seq := NewSequencer(50, 4, render, logging.GetLogger("test"))
	err := seq.Run(context.Background(), func(int, *image.RGBA) error { return nil })
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want wrapped boom", err)
	}
}

func TestSequencerDeliverErrorStopsRun(t *testing.T) {
	boom := errors.New("sink gone")
	render := func(index int) (*image.RGBA, error) { return blankFrame(), nil }

	delivered := 0
	deliver := func(index int, img *image.RGBA) error {
		delivered++
		if delivered == 5 {
			return boom
		}
		return nil
	}

	seq := NewSequencer(100, 4, render, logging.GetLogger("test"))
	err := seq.Run(context.Background(), deliver)
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want wrapped sink error", err)
	}
	if delivered != 5 {
		t.Errorf("delivered = %d, want 5", delivered)
	}
}

func TestSequencerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	render := func(index int) (*image.RGBA, error) { return blankFrame(), nil }
	deliver := func(index int, img *image.RGBA) error {
		if index == 3 {
			cancel()
		}
		return nil
	}

	seq := NewSequencer(10000, 2, render, logging.GetLogger("test"))
	err := seq.Run(ctx, deliver)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestSequencerZeroFrames(t *testing.T) {
	seq := NewSequencer(0, 4,
		func(int) (*image.RGBA, error) { t.Fatal("render must not be called"); return nil, nil },
		logging.GetLogger("test"))
	if err := seq.Run(context.Background(), func(int, *image.RGBA) error { return nil }); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestSequencerRunsOnce(t *testing.T) {
	render := func(index int) (*image.RGBA, error) { return blankFrame(), nil }
	seq := NewSequencer(1, 1, render, logging.GetLogger("test"))
	if err := seq.Run(context.Background(), func(int, *image.RGBA) error { return nil }); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := seq.Run(context.Background(), func(int, *image.RGBA) error { return nil }); err == nil {
		t.Error("second Run should fail")
	}
}

func TestReorderBufferContiguousRelease(t *testing.T) {
	buf := newReorderBuffer(8)

	ready, err := buf.Add(renderedFrame{index: 2, img: blankFrame()})
	if err != nil || len(ready) != 0 {
		t.Fatalf("out-of-order frame must be held, got %d ready, err %v", len(ready), err)
	}

	ready, err = buf.Add(renderedFrame{index: 0, img: blankFrame()})
	if err != nil || len(ready) != 1 || ready[0].index != 0 {
		t.Fatalf("frame 0 should release alone, got %v, err %v", ready, err)
	}

	ready, err = buf.Add(renderedFrame{index: 1, img: blankFrame()})
	if err != nil || len(ready) != 2 || ready[0].index != 1 || ready[1].index != 2 {
		t.Fatalf("frames 1 and 2 should release together, got %v, err %v", ready, err)
	}
	if buf.Held() != 0 {
		t.Errorf("Held() = %d, want 0", buf.Held())
	}
}

func TestReorderBufferOverflow(t *testing.T) {
	buf := newReorderBuffer(2)
	if _, err := buf.Add(renderedFrame{index: 5, img: blankFrame()}); err == nil {
		t.Error("frame beyond the reorder window must be rejected")
	}
}
