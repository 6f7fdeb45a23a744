// Package memory keeps player state in process memory. It backs tests and
// the default server configuration.
package memory

import (
	"context"
	"slices"

	"taskventure/internal/character"
	"taskventure/internal/progression"
	"taskventure/internal/quest"
	"taskventure/internal/session"
)

type Store struct {
	profiles    *session.MemoryStore[character.Profile]
	ledgers     *session.MemoryStore[progression.Ledger]
	completions *session.MemoryStore[[]string]
	dailies     *session.MemoryStore[quest.DailyMarker]
}

func New() *Store {
	return &Store{
		profiles:    session.NewMemoryStore[character.Profile](),
		ledgers:     session.NewMemoryStore[progression.Ledger](),
		completions: session.NewMemoryStore[[]string](),
		dailies:     session.NewMemoryStore[quest.DailyMarker](),
	}
}

// ForPlayer returns a view of the store scoped to one player id.
func (s *Store) ForPlayer(id string) *Player {
	return &Player{s: s, id: id}
}

type Player struct {
	s  *Store
	id string
}

func (p *Player) ID() string { return p.id }

func (p *Player) Profile(ctx context.Context) (character.Profile, bool, error) {
	prof, ok, err := p.s.profiles.Get(ctx, p.id)
	if err != nil || !ok {
		return character.Profile{}, ok, err
	}
	return cloneProfile(prof), true, nil
}

func (p *Player) SaveProfile(ctx context.Context, prof character.Profile) error {
	return p.s.profiles.Put(ctx, p.id, cloneProfile(prof))
}

func (p *Player) Ledger(ctx context.Context) (progression.Ledger, error) {
	l, _, err := p.s.ledgers.Get(ctx, p.id)
	if err != nil {
		return progression.Ledger{}, err
	}
	return cloneLedger(l), nil
}

func (p *Player) SaveLedger(ctx context.Context, l progression.Ledger) error {
	return p.s.ledgers.Put(ctx, p.id, cloneLedger(l))
}

func (p *Player) Completed(ctx context.Context) (map[string]bool, error) {
	ids, _, err := p.s.completions.Get(ctx, p.id)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (p *Player) MarkCompleted(ctx context.Context, questID string) error {
	return p.s.completions.Update(ctx, p.id, func(cur []string, _ bool) ([]string, error) {
		if slices.Contains(cur, questID) {
			return cur, nil
		}
		next := make([]string, 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, questID), nil
	})
}

// CommitQuest records a completed quest and its rewarded ledger. Memory
// writes cannot fail once the completion is in.
func (p *Player) CommitQuest(ctx context.Context, l progression.Ledger, questID string) error {
	if err := p.MarkCompleted(ctx, questID); err != nil {
		return err
	}
	return p.SaveLedger(ctx, l)
}

func (p *Player) Daily(ctx context.Context) (quest.DailyMarker, bool, error) {
	return p.s.dailies.Get(ctx, p.id)
}

func (p *Player) SetDaily(ctx context.Context, m quest.DailyMarker) error {
	return p.s.dailies.Put(ctx, p.id, m)
}

func cloneProfile(p character.Profile) character.Profile {
	if p.Scores != nil {
		scores := make(map[character.Ability]int, len(p.Scores))
		for k, v := range p.Scores {
			scores[k] = v
		}
		p.Scores = scores
	}
	return p
}

func cloneLedger(l progression.Ledger) progression.Ledger {
	l.Cards = slices.Clone(l.Cards)
	l.Inventory = slices.Clone(l.Inventory)
	l.QuestItems = slices.Clone(l.QuestItems)
	return l
}
