package edu

// Navigator tracks the current slide index during a presentation.
// Every mutation clamps the index to [0, count-1]. The slide count may be
// re-supplied while a deck is still loading; the index re-clamps whenever
// the count changes. All operations are pure arithmetic with no I/O.
type Navigator struct {
	index int
	count int
}

// NewNavigator creates a Navigator for a deck of count slides, positioned
// at the first slide.
func NewNavigator(count int) *Navigator {
	n := &Navigator{}
	n.SetCount(count)
	return n
}

// SetCount updates the slide count and re-clamps the current index.
// A non-positive count pins the index at 0.
func (n *Navigator) SetCount(count int) {
	if count < 0 {
		count = 0
	}
	n.count = count
	n.index = n.clamp(n.index)
}

// Index returns the current slide index.
func (n *Navigator) Index() int { return n.index }

// Count returns the slide count last supplied via SetCount.
func (n *Navigator) Count() int { return n.count }

// Next advances by one slide.
func (n *Navigator) Next() { n.index = n.clamp(n.index + 1) }

// Prev retreats by one slide.
func (n *Navigator) Prev() { n.index = n.clamp(n.index - 1) }

// JumpTo moves to an absolute index.
func (n *Navigator) JumpTo(i int) { n.index = n.clamp(i) }

// First moves to the first slide.
func (n *Navigator) First() { n.index = n.clamp(0) }

// Last moves to the last slide.
func (n *Navigator) Last() { n.index = n.clamp(n.count - 1) }

func (n *Navigator) clamp(i int) int {
	if n.count <= 0 || i < 0 {
		return 0
	}
	if i > n.count-1 {
		return n.count - 1
	}
	return i
}
