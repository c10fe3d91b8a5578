package pipeline

import (
	"fmt"
	"image"
)

type renderedFrame struct {
	index int
	img   *image.RGBA
}

// reorderBuffer restores frame order behind a pool of workers that
// finish out of order. Frames are held until every predecessor has
// arrived; capacity bounds how far ahead workers may run.
type reorderBuffer struct {
	next     int
	capacity int
	pending  map[int]*image.RGBA
}

func newReorderBuffer(capacity int) *reorderBuffer {
	return &reorderBuffer{
		capacity: capacity,
		pending:  map[int]*image.RGBA{},
	}
}

// Add inserts a completed frame and returns the contiguous run of
// frames now ready for delivery, in ascending index order.
func (b *reorderBuffer) Add(f renderedFrame) ([]renderedFrame, error) {
	if f.index < b.next {
		return nil, fmt.Errorf("frame %d delivered twice", f.index)
	}
	if f.index >= b.next+b.capacity {
		return nil, fmt.Errorf("frame %d outruns reorder window of %d", f.index, b.capacity)
	}
	b.pending[f.index] = f.img

	var ready []renderedFrame
	for {
		img, ok := b.pending[b.next]
		if !ok {
			break
		}
		delete(b.pending, b.next)
		ready = append(ready, renderedFrame{index: b.next, img: img})
		b.next++
	}
	return ready, nil
}

// Held reports how many frames are buffered out of order.
func (b *reorderBuffer) Held() int {
	return len(b.pending)
}
