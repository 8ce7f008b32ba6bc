package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// AuthListener is called by an AuthStateSource on every auth change.
// identity is nil when signed out; err is non-nil when the source failed.
type AuthListener func(identity *entities.Identity, err error)

// AuthStateSource publishes the signed-in identity
type AuthStateSource interface {
	Subscribe(listener AuthListener) (unsubscribe func())
}

// ProfileChecker reports whether a profile record exists for an identity
type ProfileChecker interface {
	ProfileExists(ctx context.Context, identityID string) (bool, error)
}

// Listener is notified with the new snapshot after every change.
// Listeners run on the resolver's event loop. They may call Observe and Close.
type Listener func(Snapshot)

// Option configures a Resolver
type Option func(*Resolver)

// WithCheckTimeout bounds how long a profile check may run before the
// session falls back to AuthenticatedIncompleteProfile. Zero means no bound.
func WithCheckTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithReporter sets where recovered errors are reported
func WithReporter(reporter ErrorReporter) Option {
	return func(r *Resolver) {
		r.reporter = reporter
	}
}

// WithLogger sets the resolver's logger
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// Resolver combines auth state changes and profile existence checks into a
// single Snapshot. All transitions happen on one event loop goroutine, so
// listeners see them in order. Each profile check is tagged with the
// identity generation it was issued for; results from an older generation
// are dropped.
type Resolver struct {
	checker  ProfileChecker
	reporter ErrorReporter
	timeout  time.Duration
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// event queue, appended by any goroutine and drained by run
	qmu    sync.Mutex
	queue  []event
	closed bool
	wake   chan struct{}

	done    chan struct{}
	stopped chan struct{}
	checks  sync.WaitGroup

	// set while the event loop is running listeners
	notifying atomic.Bool

	// guarded by mu; written only by the event loop
	mu            sync.RWMutex
	current       Snapshot
	listeners     []listenerEntry
	nextListener  int
	unsubscribers []func()

	// owned by the event loop
	generation uint64

	discarded atomic.Uint64
}

type listenerEntry struct {
	id int
	fn Listener
}

type event interface{}

type authEvent struct {
	identity *entities.Identity
	err      error
}

type checkResult struct {
	generation uint64
	identityID string
	exists     bool
	err        error
}

type flushEvent struct {
	done chan struct{}
}

// NewResolver creates a resolver in the Checking state and starts its event loop.
// Call Close when the session ends.
func NewResolver(checker ProfileChecker, opts ...Option) *Resolver {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		checker: checker,
		ctx:     ctx,
		cancel:  cancel,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		current: Snapshot{State: Checking},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	r.log = r.log.With(slog.String("component", "session_resolver"))
	if r.reporter == nil {
		r.reporter = NewLogReporter(r.log)
	}

	go r.run()
	return r
}

// Attach subscribes the resolver to source. The subscription is also
// released by Close.
func (r *Resolver) Attach(source AuthStateSource) (unsubscribe func()) {
	var once sync.Once
	unsub := source.Subscribe(func(identity *entities.Identity, err error) {
		if err != nil {
			r.ObserveError(err)
			return
		}
		r.Observe(identity)
	})
	release := func() {
		once.Do(unsub)
	}

	r.mu.Lock()
	r.unsubscribers = append(r.unsubscribers, release)
	r.mu.Unlock()
	return release
}

// Observe records an auth state change. nil means signed out.
// It never blocks and is safe to call from a Listener.
func (r *Resolver) Observe(identity *entities.Identity) {
	r.enqueue(authEvent{identity: identity})
}

// ObserveError records a failure of the auth state source itself.
// The session is treated as signed out and the error is reported.
func (r *Resolver) ObserveError(err error) {
	r.enqueue(authEvent{err: err})
}

// Current returns the latest snapshot
func (r *Resolver) Current() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// OnChange registers a listener for future changes. The current value is
// not replayed; read it with Current after registering.
func (r *Resolver) OnChange(listener Listener) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners = append(r.listeners, listenerEntry{id: id, fn: listener})
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close stops the event loop, abandons outstanding checks and releases
// attached sources. The last snapshot stays readable.
//
// Close waits for the loop and any outstanding checks to finish, except while
// listeners are being notified: a Close from a Listener returns as soon as the
// loop has been told to stop, and the loop exits after the listener returns.
func (r *Resolver) Close() {
	r.qmu.Lock()
	first := !r.closed
	r.closed = true
	r.queue = nil
	r.qmu.Unlock()

	if first {
		r.mu.Lock()
		unsubscribers := r.unsubscribers
		r.unsubscribers = nil
		r.mu.Unlock()
		for _, unsub := range unsubscribers {
			unsub()
		}

		r.cancel()
		close(r.done)
	}

	if r.notifying.Load() {
		return
	}
	<-r.stopped
	r.checks.Wait()
}

func (r *Resolver) enqueue(ev event) {
	r.qmu.Lock()
	if r.closed {
		r.qmu.Unlock()
		return
	}
	r.queue = append(r.queue, ev)
	r.qmu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Resolver) next() (event, bool) {
	r.qmu.Lock()
	defer r.qmu.Unlock()
	if len(r.queue) == 0 {
		return nil, false
	}
	ev := r.queue[0]
	r.queue[0] = nil
	r.queue = r.queue[1:]
	return ev, true
}

func (r *Resolver) run() {
	defer close(r.stopped)
	for {
		select {
		case <-r.done:
			return
		case <-r.wake:
		}

		for {
			select {
			case <-r.done:
				return
			default:
			}
			ev, ok := r.next()
			if !ok {
				break
			}
			r.handle(ev)
		}
	}
}

func (r *Resolver) handle(ev event) {
	switch ev := ev.(type) {
	case authEvent:
		if ev.err != nil {
			r.reporter.ReportError(ContextAuthSignal, &AuthSignalError{Err: ev.err})
			r.signedOut()
			return
		}
		if ev.identity == nil {
			r.signedOut()
			return
		}
		r.signedIn(ev.identity)
	case checkResult:
		r.resolved(ev)
	case flushEvent:
		close(ev.done)
	}
}

func (r *Resolver) signedOut() {
	// any outstanding check is now stale
	r.generation++
	if r.current.State == Unauthenticated {
		return
	}
	r.set(Unauthenticated, nil)
}

func (r *Resolver) signedIn(identity *entities.Identity) {
	cur := r.current
	if cur.State != Unauthenticated && cur.Identity.Same(identity) {
		r.log.Debug("identity unchanged, skipping profile check",
			slog.String("identity_id", identity.ID),
			slog.String("state", cur.State.String()))
		return
	}

	r.generation++
	observed := *identity
	r.set(Checking, &observed)

	r.checks.Add(1)
	go r.check(r.generation, observed.ID)
}

func (r *Resolver) check(generation uint64, identityID string) {
	defer r.checks.Done()

	ctx := r.ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	type outcome struct {
		exists bool
		err    error
	}
	out := make(chan outcome, 1)
	start := time.Now()
	go func() {
		exists, err := r.checker.ProfileExists(ctx, identityID)
		out <- outcome{exists: exists, err: err}
	}()

	var res outcome
	select {
	case res = <-out:
	case <-ctx.Done():
		res = outcome{err: ctx.Err()}
	}

	label := "missing"
	switch {
	case res.err != nil:
		label = "error"
	case res.exists:
		label = "exists"
	}
	metrics.SessionCheckDuration.WithLabelValues(label).Observe(float64(time.Since(start).Milliseconds()))

	r.enqueue(checkResult{
		generation: generation,
		identityID: identityID,
		exists:     res.exists,
		err:        res.err,
	})
}

func (r *Resolver) resolved(res checkResult) {
	if res.generation != r.generation {
		r.discarded.Add(1)
		metrics.SessionStaleResults.Inc()
		r.log.Debug("discarding stale profile check result",
			slog.String("identity_id", res.identityID),
			slog.Uint64("generation", res.generation),
			slog.Uint64("latest_generation", r.generation))
		return
	}

	identity := r.current.Identity
	if res.err != nil {
		r.reporter.ReportError(ContextProfileCheck, &ProfileCheckError{IdentityID: res.identityID, Err: res.err})
		r.set(AuthenticatedIncompleteProfile, identity)
		return
	}
	if res.exists {
		r.set(AuthenticatedComplete, identity)
		return
	}
	r.set(AuthenticatedIncompleteProfile, identity)
}

// set publishes a new snapshot and notifies listeners in registration order
func (r *Resolver) set(state State, identity *entities.Identity) {
	r.mu.Lock()
	r.current = Snapshot{
		State:    state,
		Identity: identity,
		Version:  r.current.Version + 1,
	}
	snap := r.current
	listeners := make([]listenerEntry, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	metrics.SessionTransitions.WithLabelValues(state.String()).Inc()
	r.log.Debug("session state changed",
		slog.String("state", state.String()),
		slog.String("identity_id", identity.String()),
		slog.Uint64("version", snap.Version))

	r.notifying.Store(true)
	defer r.notifying.Store(false)
	for _, l := range listeners {
		l.fn(snap)
	}
}

// flush blocks until every event queued before the call has been handled
func (r *Resolver) flush() {
	done := make(chan struct{})
	r.enqueue(flushEvent{done: done})
	select {
	case <-done:
	case <-r.stopped:
	}
}
