package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"unicode/utf8"

	"edulite-cli/internal/edu"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var presentCmd = &cobra.Command{
	Use:   "present ID",
	Short: "Present a slideshow in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid slideshow id: %s", args[0])
		}

		a, err := newApp("Present")
		if err != nil {
			return err
		}
		defer a.Close()

		deck, err := a.LoadSlideshow(cmd.Context(), id)
		if err != nil {
			return err
		}
		prefs, err := a.Preferences()
		if err != nil {
			return err
		}

		p := &presenter{
			deck:      deck,
			nav:       edu.NewNavigator(deck.Show.SlideCount),
			mapper:    edu.Mapper{SlideCount: deck.Show.SlideCount},
			showNotes: !prefs.AutoHideNotes,
			showBar:   !prefs.AutoHideToolbar,
			out:       os.Stdout,
		}
		return p.run()
	},
}

// presenter drives a slideshow on a raw-mode terminal. Keys are decoded into
// events, mapped to commands, and applied to the navigator; the screen is
// redrawn after every command and whenever a background slide batch lands.
type presenter struct {
	deck      *edu.Deck
	nav       *edu.Navigator
	mapper    edu.Mapper
	showNotes bool
	showBar   bool
	out       *os.File
}

func (p *presenter) run() error {
	fd := int(syscall.Stdin)
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)
	defer fmt.Fprint(p.out, "\x1b[2J\x1b[H\x1b[?25h")

	keys := make(chan edu.KeyEvent)
	go readKeys(os.Stdin, keys)

	p.render()
	done := p.deck.Done()
	for {
		select {
		case <-done:
			// The deck stopped growing; redraw in case the current
			// slide just arrived.
			done = nil
			p.render()
		case ev, open := <-keys:
			if !open {
				return nil
			}
			cmd, ok := p.mapper.Map(ev)
			if !ok {
				continue
			}
			if done := p.apply(cmd); done {
				return nil
			}
			p.render()
		}
	}
}

func (p *presenter) apply(cmd edu.Command) (done bool) {
	switch cmd.Kind {
	case edu.CmdNext:
		p.nav.Next()
	case edu.CmdPrev:
		p.nav.Prev()
	case edu.CmdFirst:
		p.nav.First()
	case edu.CmdLast:
		p.nav.Last()
	case edu.CmdJump:
		p.nav.JumpTo(cmd.Index)
	case edu.CmdToggleFullscreen:
		p.mapper.FullscreenActive = !p.mapper.FullscreenActive
	case edu.CmdExitFullscreen:
		p.mapper.FullscreenActive = false
	case edu.CmdToggleNotes:
		p.showNotes = !p.showNotes
	case edu.CmdExit:
		return true
	}
	return false
}

func (p *presenter) render() {
	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H\x1b[?25l")

	slide, ok := p.deck.Slide(p.nav.Index())
	switch {
	case ok:
		if slide.Title != "" {
			b.WriteString("\x1b[1m" + slide.Title + "\x1b[0m\r\n\r\n")
		}
		writeIndented(&b, slide.Content)
		if p.showNotes && slide.Notes != "" {
			b.WriteString("\r\n\x1b[2m-- notes --\r\n")
			writeIndented(&b, slide.Notes)
			b.WriteString("\x1b[0m")
		}
	case p.deck.Complete():
		b.WriteString("\x1b[2m(slide unavailable)\x1b[0m\r\n")
	default:
		b.WriteString("\x1b[2m(slide still loading)\x1b[0m\r\n")
	}

	if p.showBar && !p.mapper.FullscreenActive {
		b.WriteString(fmt.Sprintf("\r\n\x1b[7m %s | %d/%d \x1b[0m",
			p.deck.Show.Title, p.nav.Index()+1, p.nav.Count()))
	}
	fmt.Fprint(p.out, b.String())
}

// writeIndented writes text with raw-mode line endings.
func writeIndented(b *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(strings.TrimRight(line, "\r"))
		b.WriteString("\r\n")
	}
}

// readKeys decodes raw terminal input into key events. Escape sequences for
// a key arrive in a single read, so a lone 0x1b byte is a real escape press.
func readKeys(in *os.File, out chan<- edu.KeyEvent) {
	defer close(out)
	buf := make([]byte, 8)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		if n == 1 && (buf[0] == 0x03 || buf[0] == 'q') {
			// Ctrl-C and q always quit, raw mode has no signal handling.
			return
		}
		if ev, ok := decodeKey(buf[:n]); ok {
			out <- ev
		}
	}
}

func decodeKey(b []byte) (edu.KeyEvent, bool) {
	if len(b) == 0 {
		return edu.KeyEvent{}, false
	}

	if b[0] == 0x1b {
		if len(b) == 1 {
			return edu.KeyEvent{Key: edu.KeyEscape}, true
		}
		if len(b) >= 3 && b[1] == '[' {
			switch b[2] {
			case 'A':
				return edu.KeyEvent{Key: edu.KeyArrowUp}, true
			case 'B':
				return edu.KeyEvent{Key: edu.KeyArrowDown}, true
			case 'C':
				return edu.KeyEvent{Key: edu.KeyArrowRight}, true
			case 'D':
				return edu.KeyEvent{Key: edu.KeyArrowLeft}, true
			case 'H':
				return edu.KeyEvent{Key: edu.KeyHome}, true
			case 'F':
				return edu.KeyEvent{Key: edu.KeyEnd}, true
			case '1':
				if len(b) >= 4 && b[3] == '~' {
					return edu.KeyEvent{Key: edu.KeyHome}, true
				}
			case '4':
				if len(b) >= 4 && b[3] == '~' {
					return edu.KeyEvent{Key: edu.KeyEnd}, true
				}
			}
		}
		return edu.KeyEvent{}, false
	}

	switch b[0] {
	case ' ':
		return edu.KeyEvent{Key: edu.KeySpace}, true
	case 0x7f, 0x08:
		return edu.KeyEvent{Key: edu.KeyBackspace}, true
	}

	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return edu.KeyEvent{}, false
	}
	return edu.KeyEvent{Key: edu.KeyRune, Rune: r}, true
}

func init() {
	rootCmd.AddCommand(presentCmd)
}
