package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/freightdesk/gridkit/internal/ui/styles"
)

// Spinner provides a simple animated spinner for long operations. It
// draws on stderr so piped stdout stays clean.
type Spinner struct {
	message string
	out     io.Writer
	done    chan struct{}
	stopped sync.WaitGroup
	once    sync.Once
	animate bool
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		out:     os.Stderr,
		done:    make(chan struct{}),
		animate: !styles.IsAccessible() && term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start begins the spinner animation in the background
func (s *Spinner) Start() {
	if !s.animate {
		fmt.Fprintln(s.out, s.message+"...")
		return
	}

	s.stopped.Add(1)
	go func() {
		defer s.stopped.Done()
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		style := lipgloss.NewStyle().Foreground(styles.Accent)
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				frame := styles.Render(style, frames[i%len(frames)])
				fmt.Fprintf(s.out, "\r%s %s", frame, s.message)
				i++
			}
		}
	}()
}

// Stop stops the spinner and waits for the line to clear
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	s.stopped.Wait()
}

// Success stops the spinner and shows a success message
func (s *Spinner) Success(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, styles.SuccessMsg(msg))
}

// Error stops the spinner and shows an error message
func (s *Spinner) Error(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, styles.ErrorMsg(msg))
}
