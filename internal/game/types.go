package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskventure/internal/character"
	"taskventure/internal/progression"
)

var (
	// ErrInvalidTransition rejects an operation the current phase does not support.
	ErrInvalidTransition = errors.New("operation not allowed in the current phase")
	// ErrUnknownReference rejects unknown quest ids, advantage actions, spells
	// and class features the character lacks.
	ErrUnknownReference = errors.New("unknown quest, action or feature")
	// ErrOutOfRange rejects option indexes and action names outside bounds.
	ErrOutOfRange = errors.New("input out of range")
	// ErrRollPending rejects new input while a die roll is awaited.
	ErrRollPending = errors.New("a roll is already pending")
)

// ProfileStore reads the character sheet. ok is false when no profile exists.
type ProfileStore interface {
	Profile(ctx context.Context) (character.Profile, bool, error)
}

// LedgerStore reads and replaces the progression ledger. A missing ledger
// reads as the zero value.
type LedgerStore interface {
	Ledger(ctx context.Context) (progression.Ledger, error)
	SaveLedger(ctx context.Context, l progression.Ledger) error
}

// CompletionStore tracks finished quest ids.
type CompletionStore interface {
	Completed(ctx context.Context) (map[string]bool, error)
	MarkCompleted(ctx context.Context, questID string) error
}

// QuestCommitter writes a completion reward and the completed id in one
// step. A LedgerStore that also implements it is used for completions.
type QuestCommitter interface {
	CommitQuest(ctx context.Context, l progression.Ledger, questID string) error
}

// Sink receives a view after every transition.
type Sink interface {
	Render(View)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(View)

func (f SinkFunc) Render(v View) { f(v) }

// Phase is the quest session state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseNarrative
	PhaseAdvantage
	PhaseCombat
	PhaseCompleted
	PhaseAbandoned
	PhaseDefeated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseNarrative:
		return "narrative"
	case PhaseAdvantage:
		return "advantage"
	case PhaseCombat:
		return "combat"
	case PhaseCompleted:
		return "completed"
	case PhaseAbandoned:
		return "abandoned"
	case PhaseDefeated:
		return "defeated"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the phase ends a quest.
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseCompleted, PhaseAbandoned, PhaseDefeated:
		return true
	default:
		return false
	}
}

// IsActive reports whether a quest is in progress.
func (p Phase) IsActive() bool {
	switch p {
	case PhaseNarrative, PhaseAdvantage, PhaseCombat:
		return true
	default:
		return false
	}
}

// Clock abstracts time for the daily quest.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is deterministic and test-friendly.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{t: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
