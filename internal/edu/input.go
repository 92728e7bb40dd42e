package edu

// Key identifies a discrete, non-printing input key.
type Key int

const (
	// KeyRune is a printable key; the rune carries the character.
	KeyRune Key = iota
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
	KeySpace
	KeyBackspace
	KeyEscape
	KeyHome
	KeyEnd
)

// KeyEvent is one key press.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// SwipeEvent is a completed touch/drag gesture with its total displacement.
type SwipeEvent struct {
	DX int
	DY int
}

// DefaultSwipeThreshold is the horizontal displacement a swipe must exceed
// to page.
const DefaultSwipeThreshold = 50

// CommandKind enumerates the presentation commands input can map to.
type CommandKind int

const (
	CmdNext CommandKind = iota
	CmdPrev
	CmdFirst
	CmdLast
	CmdJump
	CmdToggleFullscreen
	CmdToggleNotes
	CmdExitFullscreen
	CmdExit
)

// Command is a mapped presentation command. Index is only meaningful for
// CmdJump.
type Command struct {
	Kind  CommandKind
	Index int
}

// Mapper translates discrete input events into presentation commands.
//
// The caller keeps SlideCount, FullscreenActive and TextInputFocused in sync
// with its own state: digit jumps past the deck are suppressed, escape exits
// fullscreen before it exits the presentation, and all mapping is suspended
// while a text input has focus or while Disabled is set.
type Mapper struct {
	Disabled         bool
	TextInputFocused bool
	SlideCount       int
	FullscreenActive bool
	SwipeThreshold   int
}

// Map translates an input event. ok is false when the event maps to nothing.
func (m *Mapper) Map(ev any) (cmd Command, ok bool) {
	if m.Disabled || m.TextInputFocused {
		return Command{}, false
	}

	switch e := ev.(type) {
	case KeyEvent:
		return m.mapKey(e)
	case SwipeEvent:
		return m.mapSwipe(e)
	default:
		return Command{}, false
	}
}

func (m *Mapper) mapKey(e KeyEvent) (Command, bool) {
	switch e.Key {
	case KeyArrowRight, KeyArrowDown, KeySpace:
		return Command{Kind: CmdNext}, true
	case KeyArrowLeft, KeyArrowUp, KeyBackspace:
		return Command{Kind: CmdPrev}, true
	case KeyHome:
		return Command{Kind: CmdFirst}, true
	case KeyEnd:
		return Command{Kind: CmdLast}, true
	case KeyEscape:
		if m.FullscreenActive {
			return Command{Kind: CmdExitFullscreen}, true
		}
		return Command{Kind: CmdExit}, true
	case KeyRune:
		return m.mapRune(e.Rune)
	default:
		return Command{}, false
	}
}

func (m *Mapper) mapRune(r rune) (Command, bool) {
	switch {
	case r >= '1' && r <= '9':
		index := int(r - '1')
		if index >= m.SlideCount {
			return Command{}, false
		}
		return Command{Kind: CmdJump, Index: index}, true
	case r == 'f':
		return Command{Kind: CmdToggleFullscreen}, true
	case r == 'n':
		return Command{Kind: CmdToggleNotes}, true
	case r == ' ':
		return Command{Kind: CmdNext}, true
	default:
		return Command{}, false
	}
}

func (m *Mapper) mapSwipe(e SwipeEvent) (Command, bool) {
	threshold := m.SwipeThreshold
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}

	dx, dy := e.DX, e.DY
	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}
	// Mostly-vertical drags are scrolls, not page gestures.
	if abs(dx) <= threshold || abs(dx) <= abs(dy) {
		return Command{}, false
	}
	if dx < 0 {
		return Command{Kind: CmdNext}, true
	}
	return Command{Kind: CmdPrev}, true
}
