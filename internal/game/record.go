package game

import (
	"time"

	"taskventure/internal/quest"
)

// Record is the journal entry of the last finished quest.
type Record struct {
	QuestID    string
	Title      string
	Daily      bool
	Outcome    Phase
	Stops      []Stop
	Log        []string
	Rewards    *RewardSummary
	FinishedAt time.Time
}

// Stop is one scene the player passed through.
type Stop struct {
	Narration string
	Scenery   string
	Combat    bool
}

func newRecord(s *QuestSession, outcome Phase, rewards *RewardSummary, at time.Time) *Record {
	r := &Record{
		QuestID:    s.Quest.ID,
		Title:      s.Quest.Title,
		Daily:      s.Quest.Daily,
		Outcome:    outcome,
		Log:        append([]string(nil), s.Log...),
		Rewards:    rewards,
		FinishedAt: at,
	}
	for _, idx := range s.Trail {
		sc := s.Quest.Scenes[idx]
		_, fight := sc.(*quest.CombatScene)
		r.Stops = append(r.Stops, Stop{Narration: sc.Narration(), Scenery: sc.Backdrop(), Combat: fight})
	}
	return r
}

// LastRecord returns the most recently finished quest.
func (e *Engine) LastRecord() (Record, bool) {
	if e.record == nil {
		return Record{}, false
	}
	return *e.record, true
}
