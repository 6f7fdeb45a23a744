package dice

import (
	"errors"
	"sync"
)

// ErrNoPendingRoll is returned when a value is supplied but nobody asked for one.
var ErrNoPendingRoll = errors.New("no roll is pending")

// ErrRollOutOfRange is returned for supplied d20 values outside 1..20.
var ErrRollOutOfRange = errors.New("roll must be between 1 and 20")

// RollSource supplies the d20 that resolves a pending action. It may call
// onResolved before returning or at any later time.
type RollSource interface {
	RequestRoll(onResolved func(value int))
}

// Immediate resolves every request synchronously from a Source.
type Immediate struct {
	Src Source
}

func (i Immediate) RequestRoll(onResolved func(int)) {
	onResolved(D20(i.Src))
}

// Deferred parks a request until Resolve is called, for animated dice in a
// front end. Only one request is held at a time; a new request replaces the
// old one.
type Deferred struct {
	mu      sync.Mutex
	pending func(int)
}

func (d *Deferred) RequestRoll(onResolved func(int)) {
	d.mu.Lock()
	d.pending = onResolved
	d.mu.Unlock()
}

// Pending reports whether a request is waiting for a value.
func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Resolve delivers value to the waiting request.
func (d *Deferred) Resolve(value int) error {
	if value < 1 || value > 20 {
		return ErrRollOutOfRange
	}
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()
	if fn == nil {
		return ErrNoPendingRoll
	}
	fn(value)
	return nil
}

// Cancel drops the waiting request, if any.
func (d *Deferred) Cancel() {
	d.mu.Lock()
	d.pending = nil
	d.mu.Unlock()
}

// Script is a Source that replays fixed die faces, mostly for tests. Each
// value v makes the next Intn(n) return (v-1) mod n, so Die(src, n) yields v
// whenever v <= n. It cycles when exhausted.
type Script struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewScript returns a Script replaying values.
func NewScript(values ...int) *Script {
	return &Script{values: values}
}

func (s *Script) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 || n <= 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	r := (v - 1) % n
	if r < 0 {
		r += n
	}
	return r
}

// Push appends more faces to the script.
func (s *Script) Push(values ...int) {
	s.mu.Lock()
	s.values = append(s.values, values...)
	s.mu.Unlock()
}
