package utils

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Spinner shows progress on a single console line while a slow call
// (Azure CLI token, paging) is in flight. Nothing else may write to the
// same writer between Start and Stop.
type Spinner struct {
	mu       sync.Mutex
	msg      string
	frames   []string
	interval time.Duration
	out      io.Writer
	ansi     bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	active   bool
}

// SpinnerOption configures a Spinner
type SpinnerOption func(*Spinner)

// WithSpinnerInterval sets the frame interval
func WithSpinnerInterval(d time.Duration) SpinnerOption {
	return func(s *Spinner) { s.interval = d }
}

// WithSpinnerANSI forces ANSI line clearing on or off
func WithSpinnerANSI(enabled bool) SpinnerOption {
	return func(s *Spinner) { s.ansi = enabled }
}

// NewSpinner creates a stopped spinner writing to out
func NewSpinner(out io.Writer, message string, opts ...SpinnerOption) *Spinner {
	s := &Spinner{
		msg:      message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 90 * time.Millisecond,
		out:      out,
		ansi:     runtime.GOOS != "windows",
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.ansi {
		s.frames = []string{"-", "\\", "|", "/"}
	}
	return s
}

// Start begins drawing. Calling it twice has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			frame := s.frames[i%len(s.frames)]
			if s.ansi {
				fmt.Fprintf(s.out, "\r\x1b[2K\x1b[36m%s\x1b[0m %s", frame, msg)
			} else {
				fmt.Fprintf(s.out, "\r%s %s", frame, msg)
			}

			select {
			case <-s.stopCh:
				if s.ansi {
					fmt.Fprint(s.out, "\r\x1b[2K")
				} else {
					fmt.Fprint(s.out, "\r"+strings.Repeat(" ", len([]rune(msg))+2)+"\r")
				}
				return
			case <-ticker.C:
			}
		}
	}()
}

// SetMessage replaces the text shown next to the spinner
func (s *Spinner) SetMessage(m string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = m
}

// Stop clears the spinner line and waits for the drawing goroutine to exit
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}
