package game

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"taskventure/internal/character"
	"taskventure/internal/progression"
	"taskventure/internal/quest"
)

var printer = message.NewPrinter(language.English)

// View is the render request pushed to the Sink after each transition.
type View struct {
	Phase      Phase
	QuestID    string
	QuestTitle string
	Narration  string
	Scenery    string
	Options    []OptionView
	Advantage  []AdvantageOption
	Combat     *CombatView
	Actions    []ActionView
	Awaiting   string // label of the pending roll, empty when none
	Log        []string
	Message    string
	Rewards    *RewardSummary
	// Pause asks the presentation to linger before showing this view.
	Pause time.Duration
}

// OptionView is one choice of a narrative scene.
type OptionView struct {
	Index   int
	Text    string
	Ability character.Ability
	DC      int
}

// CombatView carries the health bars of a fight.
type CombatView struct {
	Enemy       string
	EnemyHP     int
	EnemyMaxHP  int
	EnemyAC     int
	PlayerHP    int
	PlayerMaxHP int
	Outcome     Outcome
	Spells      []character.Spell
}

// ActionView is one combat button.
type ActionView struct {
	Action  Action
	Label   string
	Enabled bool
}

// RewardSummary describes what a completed quest granted.
type RewardSummary struct {
	XP       int
	Coins    int
	Items    []string
	Cards    []progression.Card
	LevelUp  bool
	NewLevel int
}

// Text renders the summary with grouped thousands.
func (r *RewardSummary) Text() string {
	if r == nil {
		return ""
	}
	out := printer.Sprintf("You earned %d XP and %d coins.", r.XP, r.Coins)
	if r.LevelUp {
		out += printer.Sprintf(" You reached level %d!", r.NewLevel)
	}
	return out
}

// View builds the current render request.
func (e *Engine) View() View {
	v := View{Phase: e.phase, Message: e.message}
	if e.pending != nil {
		v.Awaiting = e.pending.label
	}

	s := e.session
	if s == nil {
		if e.phase.IsTerminal() && e.record != nil {
			v.QuestID = e.record.QuestID
			v.QuestTitle = e.record.Title
			v.Log = append([]string(nil), e.record.Log...)
			v.Rewards = e.record.Rewards
		}
		return v
	}

	v.QuestID = s.Quest.ID
	v.QuestTitle = s.Quest.Title
	v.Log = append([]string(nil), s.Log...)
	if sc := s.current(); sc != nil {
		v.Narration = sc.Narration()
		v.Scenery = sc.Backdrop()
	}

	switch e.phase {
	case PhaseNarrative:
		if sc, ok := s.current().(*quest.ChoiceScene); ok {
			for i, o := range sc.Options {
				v.Options = append(v.Options, OptionView{Index: i, Text: o.Text, Ability: o.Ability, DC: o.DC})
			}
		}
	case PhaseAdvantage:
		v.Advantage = AdvantageOptions()
	case PhaseCombat:
		c := s.combat
		v.Combat = &CombatView{
			Enemy:       c.Enemy.Name,
			EnemyHP:     c.EnemyHP,
			EnemyMaxHP:  c.EnemyMaxHP,
			EnemyAC:     c.Enemy.AC,
			PlayerHP:    e.playerHP,
			PlayerMaxHP: PlayerMaxHP,
			Outcome:     c.Outcome,
		}
		if s.profile.Class.HasFeature(character.FeatureSpellcasting) {
			v.Combat.Spells = character.Spells
		}
		enabled := e.pending == nil && !c.Over()
		for _, a := range Actions {
			v.Actions = append(v.Actions, ActionView{Action: a, Label: a.Label(), Enabled: enabled})
		}
	}
	return v
}

func (e *Engine) emit(pause time.Duration) {
	if e.Sink == nil {
		return
	}
	v := e.View()
	v.Pause = pause
	e.Sink.Render(v)
}
