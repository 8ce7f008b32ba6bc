package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/devilmonastery/jobfinder/internal/session"
)

// ErrScreenUnavailable is returned when navigating outside the current group
var ErrScreenUnavailable = errors.New("screen not available in current group")

// Renderer draws a group. It is called only when the group changes and
// never concurrently with itself.
type Renderer interface {
	Render(group Group, snap session.Snapshot)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(group Group, snap session.Snapshot)

// Render implements Renderer
func (f RendererFunc) Render(group Group, snap session.Snapshot) {
	f(group, snap)
}

// StateSource is the part of session.Resolver the shell consumes
type StateSource interface {
	Current() session.Snapshot
	OnChange(listener session.Listener) (unsubscribe func())
}

// Shell keeps exactly one group on screen, following the session state
type Shell struct {
	source   StateSource
	renderer Renderer
	log      *slog.Logger

	mu          sync.Mutex
	group       Group
	screen      Screen
	version     uint64
	rendered    bool
	unsubscribe func()
}

// NewShell creates a shell; nothing is rendered until Start
func NewShell(source StateSource, renderer Renderer) *Shell {
	return &Shell{
		source:   source,
		renderer: renderer,
		log:      slog.Default().With(slog.String("component", "navigation")),
		group:    GroupLoading,
		screen:   ScreenLoading,
	}
}

// Start subscribes to the session and renders the current group
func (s *Shell) Start() {
	unsubscribe := s.source.OnChange(s.apply)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	s.apply(s.source.Current())
}

// Stop unsubscribes from the session
func (s *Shell) Stop() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Group returns the group on screen
func (s *Shell) Group() Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group
}

// Screen returns the active screen within the current group
func (s *Shell) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// Navigate switches screens within the current group
func (s *Shell) Navigate(screen Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.group.Has(screen) {
		return fmt.Errorf("%w: %s in %s", ErrScreenUnavailable, screen, s.group)
	}
	s.screen = screen
	return nil
}

func (s *Shell) apply(snap session.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Start reads Current concurrently with notifications; keep the newest
	if s.rendered && snap.Version < s.version {
		return
	}
	s.version = snap.Version

	group := GroupFor(snap.State)
	if s.rendered && group == s.group {
		return
	}

	s.log.Debug("switching screen group",
		slog.String("from", s.group.String()),
		slog.String("to", group.String()),
		slog.String("state", snap.State.String()))

	s.group = group
	s.screen = group.Initial()
	s.rendered = true
	s.renderer.Render(group, snap)
}
