package swipe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the capture state of a Session.
type State int

const (
	StateIdle    State = iota // nothing buffered
	StateReading              // at least one key buffered, timer pending
	StateBusy                 // an emitted swipe is being processed by the handler
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Event is one captured swipe.
type Event struct {
	ID            uuid.UUID
	Raw           string
	LooksLikeCard bool
	At            time.Time
	Source        string // name of the session that captured it
}

// Fingerprint returns a short hash of the raw payload, safe to log.
func (e Event) Fingerprint() string {
	sum := sha256.Sum256([]byte(e.Raw))
	return hex.EncodeToString(sum[:4])
}

// Handler processes an emitted swipe. The session stays busy until it
// returns or ctx ends (busy timeout or Stop). Handlers must not update
// caller state once ctx is done.
type Handler func(ctx context.Context, ev Event)

// Config controls how a Session buffers and classifies input.
type Config struct {
	// Debounce is the quiet period after the last key before the buffer
	// is finalized.
	Debounce time.Duration

	// MinLength is the shortest payload treated as a swipe. Shorter
	// payloads are discarded silently.
	MinLength int

	// EnterTerminates makes Enter finalize the buffer immediately. In
	// this mode the inactivity timeout only discards stray typing.
	EnterTerminates bool

	// RequireCardFormat drops payloads without magstripe delimiters.
	RequireCardFormat bool

	// BusyTimeout bounds how long a handler may hold the session busy.
	// It does not cancel the handler.
	BusyTimeout time.Duration
}

const (
	DefaultDebounce    = 100 * time.Millisecond
	DefaultMinLength   = 5
	DefaultBusyTimeout = 10 * time.Second
)

// PageConfig is the login-screen listener: finalized by the inactivity
// timeout and only emitted when the payload looks like a card.
func PageConfig() Config {
	return Config{
		Debounce:          DefaultDebounce,
		MinLength:         DefaultMinLength,
		RequireCardFormat: true,
		BusyTimeout:       DefaultBusyTimeout,
	}
}

// ModalConfig is the card-link listener: finalized by Enter and always
// emitted, leaving business rules to the handler.
func ModalConfig() Config {
	return Config{
		Debounce:        DefaultDebounce,
		MinLength:       DefaultMinLength,
		EnterTerminates: true,
		BusyTimeout:     DefaultBusyTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.MinLength <= 0 {
		c.MinLength = DefaultMinLength
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
	return c
}

// Session buffers keystrokes from a keyboard-wedge card reader and turns
// bursts of input into swipe events.
//
// All methods are safe to call from any goroutine. The handler runs on
// its own goroutine, never with the session lock held.
type Session struct {
	name    string
	cfg     Config
	handler Handler
	sched   Scheduler
	now     func() time.Time

	mu      sync.Mutex
	running bool
	state   State
	buf     strings.Builder
	timer   Timer
	gen     uint64 // bumped whenever the pending timer or busy owner changes
	ctx     context.Context
	stop    context.CancelFunc
}

// NewSession creates a stopped session. Call Start to begin capturing.
func NewSession(name string, cfg Config, handler Handler) *Session {
	return &Session{
		name:    name,
		cfg:     cfg.withDefaults(),
		handler: handler,
		sched:   WallClock,
		now:     time.Now,
	}
}

// SetScheduler replaces the timer source. Must be called before Start.
func (s *Session) SetScheduler(sched Scheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched = sched
}

// SetClock replaces the timestamp source used for events.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// Config returns the effective configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Start begins accepting keys. Starting a running session is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.ctx, s.stop = context.WithCancel(context.Background())
	s.running = true
	s.state = StateIdle
	s.buf.Reset()
}

// Stop cancels any pending timer, clears the buffer and cancels the
// context of an in-flight handler with context.Canceled. No event is emitted after Stop
// returns. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.resetLocked()
	if s.stop != nil {
		s.stop()
	}
}

// Reset discards buffered input without stopping the session. A busy
// session stays busy.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateBusy && s.running {
		return
	}
	s.resetLocked()
}

// State returns the current capture state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether the session is started.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Buffered returns the number of bytes currently buffered.
func (s *Session) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// KeyDown feeds one key press into the session.
func (s *Session) KeyDown(k Key) {
	if k == "" || IsModifier(k) {
		return
	}

	s.mu.Lock()
	if !s.running || s.state == StateBusy {
		s.mu.Unlock()
		return
	}

	if k == KeyEnter {
		if !s.cfg.EnterTerminates {
			// Readers in page mode terminate with a pause, not Enter.
			s.mu.Unlock()
			return
		}
		s.cancelTimerLocked()
		raw := strings.TrimSpace(s.buf.String())
		s.buf.Reset()
		s.state = StateIdle
		s.emitLocked(raw)
		return
	}

	s.buf.WriteString(string(k))
	s.state = StateReading
	s.cancelTimerLocked()
	gen := s.gen
	s.timer = s.sched.AfterFunc(s.cfg.Debounce, func() { s.fire(gen) })
	s.mu.Unlock()
}

// fire runs when the debounce window elapses.
func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if !s.running || gen != s.gen || s.state != StateReading {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.gen++
	raw := s.buf.String()
	s.buf.Reset()
	s.state = StateIdle

	if s.cfg.EnterTerminates {
		// Stray typing in front of an Enter-terminated reader.
		s.mu.Unlock()
		return
	}
	s.emitLocked(raw)
}

// emitLocked classifies raw and hands it to the handler. It is called
// with s.mu held and releases it.
func (s *Session) emitLocked(raw string) {
	if len(raw) < s.cfg.MinLength {
		s.mu.Unlock()
		return
	}
	looks := LooksLikeCard(raw)
	if s.cfg.RequireCardFormat && !looks {
		s.mu.Unlock()
		return
	}
	if s.handler == nil {
		s.mu.Unlock()
		return
	}

	ev := Event{
		ID:            uuid.New(),
		Raw:           raw,
		LooksLikeCard: looks,
		At:            s.now(),
		Source:        s.name,
	}

	s.gen++
	token := s.gen
	s.state = StateBusy
	ctx := s.ctx
	s.mu.Unlock()

	log.Printf("Swipe: %s captured %d chars (%s)", s.name, len(raw), ev.Fingerprint())
	go s.run(ctx, ev, token)
}

// run holds the session busy until the handler returns, the session
// stops or BusyTimeout passes. The handler's ctx is only cancelled by
// Stop, so a handler outliving the busy window may still finish.
func (s *Session) run(ctx context.Context, ev Event, token uint64) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.handler(ctx, ev)
	}()

	busy := time.NewTimer(s.cfg.BusyTimeout)
	defer busy.Stop()
	select {
	case <-done:
	case <-ctx.Done():
	case <-busy.C:
		log.Printf("Swipe: %s handler exceeded %v, releasing", s.name, s.cfg.BusyTimeout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == token && s.state == StateBusy {
		s.state = StateIdle
		s.buf.Reset()
	}
}

func (s *Session) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Session) resetLocked() {
	s.cancelTimerLocked()
	s.buf.Reset()
	s.state = StateIdle
}
