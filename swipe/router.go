package swipe

import (
	"log"
	"sync"
)

// Router owns the keyboard and delivers keys to exactly one session: the
// most recently pushed one. A modal pushes its session over the login
// listener and the login listener gets the keyboard back on release, so
// one swipe can never be submitted twice.
type Router struct {
	mu       sync.Mutex
	stack    []*Session
	onChange func(owner string)
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// SetChangeCallback sets a callback invoked with the new owner's name
// (or "" when empty) whenever ownership changes.
func (r *Router) SetChangeCallback(fn func(owner string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Push starts s and makes it the key owner. The previous owner keeps
// running but its partial buffer is discarded. The returned release
// function stops s, removes it and hands ownership back; it is safe to
// call more than once.
func (r *Router) Push(s *Session) (release func()) {
	r.mu.Lock()
	if top := r.topLocked(); top != nil {
		top.Reset()
	}
	r.stack = append(r.stack, s)
	s.Start()
	owner, cb := s.Name(), r.onChange
	r.mu.Unlock()

	log.Printf("Swipe: %s owns the reader", owner)
	if cb != nil {
		cb(owner)
	}

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(s) })
	}
}

func (r *Router) remove(s *Session) {
	s.Stop()

	r.mu.Lock()
	for i, cur := range r.stack {
		if cur == s {
			r.stack = append(r.stack[:i], r.stack[i+1:]...)
			break
		}
	}
	owner := ""
	if top := r.topLocked(); top != nil {
		top.Reset()
		owner = top.Name()
	}
	cb := r.onChange
	r.mu.Unlock()

	if owner != "" {
		log.Printf("Swipe: %s released, %s owns the reader", s.Name(), owner)
	}
	if cb != nil {
		cb(owner)
	}
}

// KeyDown delivers k to the current owner, if any.
func (r *Router) KeyDown(k Key) {
	r.mu.Lock()
	top := r.topLocked()
	r.mu.Unlock()
	if top != nil {
		top.KeyDown(k)
	}
}

// Owner returns the current owning session, or nil.
func (r *Router) Owner() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topLocked()
}

// Close stops every session and empties the router.
func (r *Router) Close() {
	r.mu.Lock()
	stack := r.stack
	r.stack = nil
	r.mu.Unlock()

	for _, s := range stack {
		s.Stop()
	}
}

func (r *Router) topLocked() *Session {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}
