package util

import (
	"context"

	"github.com/charmbracelet/huh/spinner"
)

// Spinner shows an animated title on the terminal until stopped.
type Spinner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSpinner(c context.Context, msg string) *Spinner {
	ctx, cancel := context.WithCancel(c)
	s := &Spinner{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		spinner.New().Context(ctx).Title(msg).Run()
	}()
	return s
}

// Stop the spinner and wait for it to clear its line.
func (s *Spinner) Stop() {
	s.cancel()
	<-s.done
}

// RunTaskWithSpinner runs task while a spinner shows msg. The spinner is skipped when quiet is true,
// e.g. when debug logging would interleave with it.
func RunTaskWithSpinner(ctx context.Context, msg string, quiet bool, task func() error) error {
	if quiet {
		return task()
	}
	s := NewSpinner(ctx, msg)
	defer s.Stop()
	return task()
}
