package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mbolis/assistance-intake/log"
)

var ErrDraftNotFound = errors.New("draft not found")

type session struct {
	mu      sync.Mutex
	form    *Form
	touched time.Time
}

// Registry keeps one Form per client, addressed by a random id. Calls on the
// same form are serialized.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	newForm  func() *Form
	now      func() time.Time
}

func NewRegistry(newForm func() *Form) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		newForm:  newForm,
		now:      time.Now,
	}
}

func (r *Registry) Create() (id string, form *Form) {
	id = uuid.NewString()
	form = r.newForm()

	r.mu.Lock()
	r.sessions[id] = &session{form: form, touched: r.now()}
	r.mu.Unlock()
	return
}

// Do runs fn on the form registered under id.
func (r *Registry) Do(id string, fn func(*Form) error) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrDraftNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = r.now()
	return fn(s.form)
}

func (r *Registry) Discard(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep discards the forms untouched for longer than ttl and returns how many
// were dropped.
func (r *Registry) Sweep(ttl time.Duration) (n int) {
	deadline := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.mu.Lock()
		expired := s.touched.Before(deadline)
		s.mu.Unlock()
		if expired {
			delete(r.sessions, id)
			n++
		}
	}
	return
}

// RunSweeper sweeps every ttl/2 until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, ttl time.Duration, onSweep func(dropped int)) {
	interval := ttl / 2
	if interval <= 0 {
		interval = ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := r.Sweep(ttl)
			if n > 0 {
				log.Debugf("wizard.sweep: dropped %d idle drafts", n)
			}
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}
