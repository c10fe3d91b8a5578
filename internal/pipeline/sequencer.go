package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RenderFunc rasterizes a single frame by index.
type RenderFunc func(index int) (*image.RGBA, error)

// DeliverFunc receives frames strictly in index order.
type DeliverFunc func(index int, img *image.RGBA) error

// Sequencer fans frame rendering out across a worker pool and delivers
// the results in order. A Sequencer runs once.
type Sequencer struct {
	total   int
	workers int
	render  RenderFunc
	logger  *slog.Logger

	started bool
}

// NewSequencer creates a sequencer for total frames. workers <= 0
// selects GOMAXPROCS; the pool never exceeds the frame count.
func NewSequencer(total, workers int, render RenderFunc, logger *slog.Logger) *Sequencer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > total {
		workers = total
	}
	return &Sequencer{
		total:   total,
		workers: workers,
		render:  render,
		logger:  logger,
	}
}

// Run renders all frames and calls deliver for each, in order. It
// returns the first error from rendering, delivery, or context
// cancellation. Frames already rendered when an error occurs are
// discarded.
func (s *Sequencer) Run(ctx context.Context, deliver DeliverFunc) error {
	if s.started {
		return fmt.Errorf("sequencer already ran")
	}
	s.started = true
	if s.total == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)

	indices := make(chan int)
	results := make(chan renderedFrame, s.workers)

	// Tokens bound how many frames may be handed out but not yet
	// delivered. A slow frame blocks the feeder here once the window
	// fills, instead of letting faster workers run ahead unbounded.
	capacity := 2*s.workers + 1
	tokens := make(chan struct{}, capacity)

	g.Go(func() error {
		defer close(indices)
		for i := 0; i < s.total; i++ {
			select {
			case tokens <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case indices <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for w := 0; w < s.workers; w++ {
		g.Go(func() error {
			defer wg.Done()
			for i := range indices {
				img, err := s.render(i)
				if err != nil {
					return fmt.Errorf("render frame %d: %w", i, err)
				}
				select {
				case results <- renderedFrame{index: i, img: img}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g.Go(func() error {
		// The token window guarantees every arriving index is within
		// capacity of the lowest undelivered one, so Add cannot overflow.
		buf := newReorderBuffer(capacity)
		for f := range results {
			ready, err := buf.Add(f)
			if err != nil {
				return err
			}
			for _, r := range ready {
				if err := deliver(r.index, r.img); err != nil {
					return fmt.Errorf("deliver frame %d: %w", r.index, err)
				}
				<-tokens
			}
		}
		return nil
	})

	err := g.Wait()
	if err != nil {
		s.logger.Debug("Frame sequencing aborted", "error", err)
	}
	return err
}
