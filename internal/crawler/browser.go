// Package crawler provides the browser the pipeline drives: a Browser
// interface, a chromedp-backed and an HTTP-backed implementation, and the
// Session that owns exactly one live Browser at a time.
package crawler

import (
	"context"
	"errors"
	"fmt"

	"clustrmaps-go-crawler/pkg/logger"
)

// Browser is a stateful page loader. Title and PageMarkup describe the page
// loaded by the most recent Navigate.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	PageMarkup(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, path string) error
	Quit() error
}

// Launcher starts a fresh Browser.
type Launcher func(ctx context.Context) (Browser, error)

var ErrNoBrowser = errors.New("no browser running")

// Session owns the single Browser of a run. It is not safe for concurrent use.
type Session struct {
	launch   Launcher
	log      *logger.Logger
	current  Browser
	launches int
}

func NewSession(launch Launcher, log *logger.Logger) *Session {
	return &Session{launch: launch, log: log}
}

// Start launches a browser unless one is already running.
func (s *Session) Start(ctx context.Context) (Browser, error) {
	if s.current != nil {
		return s.current, nil
	}
	b, err := s.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	s.current = b
	s.launches++
	return b, nil
}

// Current returns the running browser, or ErrNoBrowser.
func (s *Session) Current() (Browser, error) {
	if s.current == nil {
		return nil, ErrNoBrowser
	}
	return s.current, nil
}

// Restart quits the running browser, waits for pause (if any) and launches a
// new one.
func (s *Session) Restart(ctx context.Context, pause func(context.Context) error) error {
	s.log.Infof("Restarting browser...")
	if err := s.Release(); err != nil {
		s.log.Warnf("quit browser: %v", err)
	}
	if pause != nil {
		if err := pause(ctx); err != nil {
			return err
		}
	}
	_, err := s.Start(ctx)
	return err
}

// Release quits the running browser. It is safe to call more than once.
func (s *Session) Release() error {
	if s.current == nil {
		return nil
	}
	b := s.current
	s.current = nil
	return b.Quit()
}

// Launches counts browsers started over the session's lifetime.
func (s *Session) Launches() int { return s.launches }
