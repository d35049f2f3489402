package clock

import (
	"sync"
	"time"
)

// Clock provee la hora actual al motor. Los tests inyectan un reloj fijo.
type Clock interface {
	Now() time.Time
}

// System reloj real; siempre devuelve UTC.
type System struct{}

// Now implementa Clock.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed reloj determinista para tests.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixed construye un reloj fijo en t (convertido a UTC).
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t.UTC()}
}

// Now implementa Clock.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Set mueve el reloj a t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t.UTC()
	f.mu.Unlock()
}

// Advance adelanta el reloj d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}
