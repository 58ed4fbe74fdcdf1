package ui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

const clearLine = "\r\x1b[2K"

// Spinner animates a "Thinking" indicator on its own line. It does nothing
// when output is not a terminal.
type Spinner struct {
	term   *Terminal
	frames []string
	fps    time.Duration
	text   string

	mu     sync.Mutex
	active bool
	stop   chan struct{}
	done   chan struct{}
}

// NewSpinner creates a spinner using the bubbles Dot frames.
func NewSpinner(term *Terminal, text string) *Spinner {
	return &Spinner{
		term:   term,
		frames: spinner.Dot.Frames,
		fps:    spinner.Dot.FPS,
		text:   text,
	}
}

// Start begins the animation. Starting an active spinner is a no-op.
func (s *Spinner) Start() {
	if !s.term.IsTTY() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

// Stop halts the animation and clears the spinner line. It must not be
// called while holding the terminal lock.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.term.Write(clearLine)
}

// Active reports whether the spinner is shown.
func (s *Spinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.fps)
	defer ticker.Stop()

	frame := 0
	for {
		s.draw(frame)
		select {
		case <-stop:
			return
		case <-ticker.C:
			frame = (frame + 1) % len(s.frames)
		}
	}
}

func (s *Spinner) draw(frame int) {
	style := s.term.Styles().Spinner
	s.term.Write(clearLine + style.Render(s.frames[frame]+s.text))
}
