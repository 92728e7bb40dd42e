package edu

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

const (
	// DefaultInitialSlides is how many slides the initial detail request asks for.
	DefaultInitialSlides = 3
	// DefaultBatchSize bounds the fan-out of background slide fetches.
	DefaultBatchSize = 5
)

// SlideSource is the slice of the API client the loader needs.
type SlideSource interface {
	// SlideshowDetail fetches a slideshow. When initial > 0 the response
	// carries only the first initial slides plus the IDs of the rest.
	SlideshowDetail(ctx context.Context, id, initial int) (*SlideshowDetail, error)

	// Slide fetches a single slide by ID.
	Slide(ctx context.Context, showID, slideID int) (*Slide, error)
}

// Loader fetches slideshows progressively: the metadata and first few slides
// up front, the remainder in bounded background batches.
type Loader struct {
	src       SlideSource
	initial   int
	batchSize int
	logger    Logger
}

// NewLoader creates a Loader with the default initial-slide count and batch size.
func NewLoader(src SlideSource, logger Logger) *Loader {
	return &Loader{
		src:       src,
		initial:   DefaultInitialSlides,
		batchSize: DefaultBatchSize,
		logger:    logger,
	}
}

// Load fetches the slideshow's metadata and initial slides synchronously.
// On success it returns a Deck and starts filling in the remaining slides in
// the background; canceling ctx stops the background fetches. On failure no
// Deck is returned and nothing runs in the background.
//
// Each call returns a fresh Deck sharing no state with previous loads, so a
// caller that switches slideshows simply abandons the old deck.
func (l *Loader) Load(ctx context.Context, id int) (*Deck, error) {
	detail, err := l.src.SlideshowDetail(ctx, id, l.initial)
	if err != nil {
		return nil, fmt.Errorf("loading slideshow %d: %w", id, err)
	}

	d := &Deck{
		Show:   detail.Slideshow,
		slides: make(map[int]Slide, detail.SlideCount),
		failed: make(map[int]error),
		done:   make(chan struct{}),
	}
	for _, s := range detail.Slides {
		d.slides[s.Order] = s
	}

	l.logger.Debug("slideshow loaded", "id", id, "initial", len(detail.Slides), "remaining", len(detail.RemainingSlideIDs))

	if len(detail.RemainingSlideIDs) == 0 {
		close(d.done)
		return d, nil
	}

	go l.fill(ctx, d, id, detail.RemainingSlideIDs, len(detail.Slides))
	return d, nil
}

// fill fetches the remaining slides in sequential batches. Fetches within a
// batch run concurrently; batch n+1 does not start until batch n's settled
// results are merged, so observable deck growth is batch-ordered.
func (l *Loader) fill(ctx context.Context, d *Deck, showID int, remaining []int, startOrder int) {
	defer close(d.done)

	for start := 0; start < len(remaining); start += l.batchSize {
		if ctx.Err() != nil {
			return
		}

		end := start + l.batchSize
		if end > len(remaining) {
			end = len(remaining)
		}

		type result struct {
			order int
			slide *Slide
			err   error
		}
		results := make([]result, end-start)

		var wg sync.WaitGroup
		for i, slideID := range remaining[start:end] {
			wg.Add(1)
			go func(i, slideID, order int) {
				defer wg.Done()
				s, err := l.src.Slide(ctx, showID, slideID)
				results[i] = result{order: order, slide: s, err: err}
			}(i, slideID, startOrder+start+i)
		}
		wg.Wait()

		// Merge the settled batch atomically: build a new snapshot and swap
		// it in, so readers never see a half-merged batch.
		d.mu.Lock()
		next := make(map[int]Slide, len(d.slides)+len(results))
		for k, v := range d.slides {
			next[k] = v
		}
		for _, r := range results {
			if r.err != nil {
				// A single failed slide never aborts the batch; the slide
				// stays absent and is not retried.
				d.failed[r.order] = r.err
				l.logger.Warn("slide fetch failed", "show", showID, "order", r.order, "error", r.err)
				continue
			}
			next[r.slide.Order] = *r.slide
		}
		d.slides = next
		d.mu.Unlock()
	}
}

// Deck is a progressively filling, order-indexed projection of a slideshow's
// slides. Absence of an index means "not yet fetched", not "does not exist".
type Deck struct {
	Show Slideshow

	mu     sync.RWMutex
	slides map[int]Slide
	failed map[int]error
	done   chan struct{}
}

// Slide returns the slide at the given order index, if it has been fetched.
func (d *Deck) Slide(order int) (Slide, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.slides[order]
	return s, ok
}

// Slides returns the current snapshot of fetched slides keyed by order.
// The returned map is never mutated after being returned.
func (d *Deck) Slides() map[int]Slide {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slides
}

// SlidesInOrder returns the fetched slides sorted by order index. Gaps from
// unfetched or failed slides are skipped.
func (d *Deck) SlidesInOrder() []Slide {
	d.mu.RLock()
	defer d.mu.RUnlock()
	orders := make([]int, 0, len(d.slides))
	for o := range d.slides {
		orders = append(orders, o)
	}
	sort.Ints(orders)
	slides := make([]Slide, 0, len(orders))
	for _, o := range orders {
		slides = append(slides, d.slides[o])
	}
	return slides
}

// Loaded returns how many slides have been fetched so far.
func (d *Deck) Loaded() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.slides)
}

// FailedOrders returns the order indices whose background fetch failed.
// Failed slides are not retried; they stay absent from the deck.
func (d *Deck) FailedOrders() []int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	orders := make([]int, 0, len(d.failed))
	for o := range d.failed {
		orders = append(orders, o)
	}
	return orders
}

// Done returns a channel closed once background loading has finished,
// whether or not every slide fetch succeeded.
func (d *Deck) Done() <-chan struct{} { return d.done }

// Complete reports whether background loading has finished.
func (d *Deck) Complete() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}
