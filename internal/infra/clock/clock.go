// Package clock implements domain.Clock for production and tests.
package clock

import (
	"sync"
	"time"
	_ "time/tzdata" // zone names resolve without host zoneinfo
)

// System reads the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock whose calendar days follow loc.
// A nil loc means UTC.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

// Now returns the current instant in the clock's location.
func (c System) Now() time.Time { return time.Now().In(c.loc) }

// Location returns the calendar location.
func (c System) Location() *time.Location { return c.loc }

// LoadLocation resolves an IANA zone name. Empty and "Local" map to the
// process zone.
func LoadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local":
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// ─── Fake ───────────────────────────────────────────────────────────────────

// Fake is a manually advanced clock. Safe for concurrent use.
type Fake struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

// NewFake returns a clock frozen at now, using now's location.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now, loc: now.Location()}
}

// Now returns the frozen instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Location returns the calendar location.
func (f *Fake) Location() *time.Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loc
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// AdvanceDays moves the clock forward by n calendar days in its location.
func (f *Fake) AdvanceDays(n int) {
	f.mu.Lock()
	f.now = f.now.In(f.loc).AddDate(0, 0, n)
	f.mu.Unlock()
}
