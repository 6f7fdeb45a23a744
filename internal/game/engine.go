package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskventure/internal/character"
	"taskventure/internal/dice"
	"taskventure/internal/progression"
	"taskventure/internal/quest"
)

const (
	// maxSuccessfulActions caps the consecutive-success counter.
	maxSuccessfulActions = 3
	// checkRewardXP is granted for every successful non-combat check.
	checkRewardXP = 5
	// PlayerMaxHP is the hit point pool a player starts every engine with.
	PlayerMaxHP = 100
)

// Engine runs one player's quests. It is not safe for concurrent use; the
// caller serializes operations.
type Engine struct {
	Catalog     *quest.Catalog
	Profiles    ProfileStore
	Ledger      LedgerStore
	Completions CompletionStore
	Rolls       dice.RollSource
	Dice        dice.Source
	Sink        Sink
	Clock       Clock
	Logger      *log.Logger
	// Pause is the pacing hint attached to views that follow a victory or
	// defeat message.
	Pause time.Duration

	phase    Phase
	session  *QuestSession
	playerHP int
	hpReady  bool
	pending  *pendingRoll
	gen      int
	record   *Record
	message  string
}

// QuestSession is the mutable state of the active quest.
type QuestSession struct {
	Quest     quest.Definition
	Scene     int
	Successes int
	Checks    int
	Trail     []int
	Log       []string

	profile character.Profile
	level   int
	combat  *CombatState
}

type pendingRoll struct {
	label  string
	action Action
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Session returns the active quest session, or nil.
func (e *Engine) Session() *QuestSession { return e.session }

// PlayerHP returns current and maximum player hit points.
func (e *Engine) PlayerHP() (int, int) {
	e.ensureHP()
	return e.playerHP, PlayerMaxHP
}

// Awaiting reports whether a die roll is pending.
func (e *Engine) Awaiting() bool { return e.pending != nil }

// Available lists the quests the player can start now.
func (e *Engine) Available(ctx context.Context) ([]quest.Definition, error) {
	led, err := e.readLedger(ctx)
	if err != nil {
		return nil, err
	}
	done, err := e.Completions.Completed(ctx)
	if err != nil {
		return nil, fmt.Errorf("read completed quests: %w", err)
	}
	return e.Catalog.Available(ctx, led.Level, done, e.clock().Now())
}

// StartQuest begins the quest with id. It is allowed only when no quest is
// in progress and id is in the available list.
func (e *Engine) StartQuest(ctx context.Context, id string) error {
	if e.phase.IsActive() {
		return e.reject(ErrInvalidTransition, "a quest is already in progress")
	}
	avail, err := e.Available(ctx)
	if err != nil {
		return err
	}
	var def *quest.Definition
	for i := range avail {
		if avail[i].ID == id {
			def = &avail[i]
			break
		}
	}
	if def == nil {
		return e.reject(ErrUnknownReference, fmt.Sprintf("quest %q is not available", id))
	}
	led, err := e.readLedger(ctx)
	if err != nil {
		return err
	}

	e.ensureHP()
	e.cancelPending()
	e.message = ""
	e.session = &QuestSession{
		Quest:   *def,
		profile: e.readProfile(ctx),
		level:   led.Level,
	}
	e.logger().Printf("quest %s started", def.ID)
	e.enterScene(ctx, 0)
	return nil
}

// Choose resolves option index of the current choice scene.
func (e *Engine) Choose(ctx context.Context, index int) error {
	if e.pending != nil {
		return ErrRollPending
	}
	if e.phase != PhaseNarrative {
		return ErrInvalidTransition
	}
	sc, ok := e.session.current().(*quest.ChoiceScene)
	if !ok {
		return ErrInvalidTransition
	}
	if index < 0 || index >= len(sc.Options) {
		return ErrOutOfRange
	}
	opt := sc.Options[index]
	bg := context.WithoutCancel(ctx)
	e.request(pendingRoll{label: opt.Text}, func(roll int) {
		e.resolveCheck(bg, opt.Text, opt.Ability, opt.DC, roll)
	})
	return nil
}

// Advantage resolves a choice offered between a success and the fight.
func (e *Engine) Advantage(ctx context.Context, action string) error {
	if e.pending != nil {
		return ErrRollPending
	}
	if e.phase != PhaseAdvantage {
		return ErrInvalidTransition
	}
	if action == AdvantageCombat {
		e.proceedToCombat(ctx)
		return nil
	}
	opt, ok := findAdvantage(action)
	if !ok {
		return e.reject(ErrUnknownReference, fmt.Sprintf("unknown advantage action %q", action))
	}
	bg := context.WithoutCancel(ctx)
	e.request(pendingRoll{label: opt.Text}, func(roll int) {
		e.resolveCheck(bg, opt.Text, opt.Ability, opt.DC, roll)
	})
	return nil
}

// Abandon drops the active quest without rewards and returns to the list.
func (e *Engine) Abandon(ctx context.Context) error {
	if !e.phase.IsActive() {
		return ErrInvalidTransition
	}
	e.cancelPending()
	e.session.logf("You abandon %s.", e.session.Quest.Title)
	e.finish(PhaseAbandoned, nil)
	e.phase = PhaseIdle
	e.emit(0)
	return nil
}

// ReturnToList leaves a finished quest's summary screen.
func (e *Engine) ReturnToList() error {
	if !e.phase.IsTerminal() {
		return ErrInvalidTransition
	}
	e.phase = PhaseIdle
	e.message = ""
	e.emit(0)
	return nil
}

func (e *Engine) resolveCheck(ctx context.Context, label string, ability character.Ability, dc, roll int) {
	s := e.session
	mod := s.profile.Mod(ability)
	total := roll + mod
	if total < dc {
		s.logf("%s (%s): rolled %d%+d = %d vs DC %d. Failure.", label, ability, roll, mod, total, dc)
		e.handleFailure(ctx)
		return
	}

	s.logf("%s (%s): rolled %d%+d = %d vs DC %d. Success!", label, ability, roll, mod, total, dc)
	s.Checks++
	if s.Successes < maxSuccessfulActions {
		s.Successes++
	}
	e.grantCheckReward(ctx)

	if s.Successes < maxSuccessfulActions && len(s.Quest.Scenes)-s.Scene > 1 {
		e.phase = PhaseAdvantage
		e.emit(0)
		return
	}
	e.advance(ctx)
}

// handleFailure escalates to the quest's fight when there is one; otherwise
// the player stays on the scene to retry or abandon.
func (e *Engine) handleFailure(ctx context.Context) {
	s := e.session
	if idx := s.Quest.CombatIndex(s.Scene); idx >= 0 {
		s.logf("The situation turns hostile!")
		e.enterScene(ctx, idx)
		return
	}
	e.phase = PhaseNarrative
	e.emit(0)
}

func (e *Engine) advance(ctx context.Context) {
	next := e.session.Scene + 1
	if next >= len(e.session.Quest.Scenes) {
		e.completeQuest(ctx)
		return
	}
	e.enterScene(ctx, next)
}

func (e *Engine) proceedToCombat(ctx context.Context) {
	idx := e.session.Quest.CombatIndex(e.session.Scene + 1)
	if idx < 0 {
		e.completeQuest(ctx)
		return
	}
	e.enterScene(ctx, idx)
}

func (e *Engine) enterScene(ctx context.Context, idx int) {
	s := e.session
	s.Scene = idx
	if n := len(s.Trail); n == 0 || s.Trail[n-1] != idx {
		s.Trail = append(s.Trail, idx)
	}
	switch sc := s.current().(type) {
	case *quest.ChoiceScene:
		e.phase = PhaseNarrative
		e.emit(0)
	case *quest.CombatScene:
		e.enterCombat(idx, sc)
	default:
		e.logger().Printf("quest %s scene %d has no handler; completing", s.Quest.ID, idx)
		e.completeQuest(ctx)
	}
}

func (e *Engine) grantCheckReward(ctx context.Context) {
	led, err := e.readLedger(ctx)
	if err != nil {
		e.logger().Printf("check reward skipped: %v", err)
		return
	}
	next, _ := led.Apply(progression.Award{XP: checkRewardXP})
	if err := e.Ledger.SaveLedger(ctx, next); err != nil {
		e.logger().Printf("check reward skipped: save ledger: %v", err)
		return
	}
	e.session.logf("+%d XP for quick thinking.", checkRewardXP)
}

// completeQuest applies the whole reward bundle, then renders the summary.
func (e *Engine) completeQuest(ctx context.Context) {
	s := e.session
	def := s.Quest
	led, err := e.readLedger(ctx)
	if err != nil {
		e.logger().Printf("complete quest %s: %v", def.ID, err)
		e.message = "Your rewards could not be recorded."
		e.finish(PhaseCompleted, nil)
		e.emit(e.Pause)
		return
	}
	next, leveled := led.Apply(progression.Award{
		XP:     def.Rewards.XP,
		Coins:  def.Rewards.Coins,
		Items:  def.Rewards.Items,
		Source: def.Title,
	})
	if err := e.commitQuest(ctx, led, next, def.ID); err != nil {
		e.logger().Printf("complete quest %s: %v", def.ID, err)
		e.message = "Your rewards could not be recorded."
		e.finish(PhaseCompleted, nil)
		e.emit(e.Pause)
		return
	}

	summary := &RewardSummary{
		XP:       def.Rewards.XP,
		Coins:    def.Rewards.Coins,
		Items:    append([]string(nil), def.Rewards.Items...),
		Cards:    append([]progression.Card(nil), next.Cards[len(led.Cards):]...),
		LevelUp:  leveled,
		NewLevel: next.Level,
	}
	s.logf("Quest complete: %s", def.Title)
	e.logger().Printf("quest %s completed (+%d xp, +%d coins)", def.ID, def.Rewards.XP, def.Rewards.Coins)
	e.finish(PhaseCompleted, summary)
	e.emit(e.Pause)
}

// commitQuest persists the new ledger together with the completed id.
// Without a QuestCommitter the ledger is written first and restored to prev
// when the completion cannot be recorded.
func (e *Engine) commitQuest(ctx context.Context, prev, next progression.Ledger, questID string) error {
	if c, ok := e.Ledger.(QuestCommitter); ok {
		if err := c.CommitQuest(ctx, next, questID); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	}
	if err := e.Ledger.SaveLedger(ctx, next); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	if err := e.Completions.MarkCompleted(ctx, questID); err != nil {
		if rerr := e.Ledger.SaveLedger(ctx, prev); rerr != nil {
			e.logger().Printf("restore ledger after failed completion of %s: %v", questID, rerr)
		}
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// finish records the outcome and clears the session.
func (e *Engine) finish(phase Phase, summary *RewardSummary) {
	s := e.session
	e.record = newRecord(s, phase, summary, e.clock().Now())
	e.phase = phase
	e.session = nil
}

// request parks the pending roll and asks the roll source for a value.
// Callbacks from a cancelled request are ignored.
func (e *Engine) request(p pendingRoll, resolve func(roll int)) {
	e.gen++
	gen := e.gen
	e.pending = &p
	e.message = ""
	e.rolls().RequestRoll(func(v int) {
		if e.pending == nil || gen != e.gen {
			e.logger().Printf("ignoring stale roll %d", v)
			return
		}
		e.pending = nil
		if v < 1 {
			v = 1
		} else if v > 20 {
			v = 20
		}
		resolve(v)
	})
	if e.pending != nil && gen == e.gen {
		e.emit(0)
	}
}

func (e *Engine) cancelPending() {
	if e.pending == nil {
		return
	}
	e.pending = nil
	e.gen++
	if c, ok := e.Rolls.(interface{ Cancel() }); ok {
		c.Cancel()
	}
}

func (e *Engine) reject(err error, msg string) error {
	e.logger().Printf("rejected: %s", msg)
	e.message = msg
	return err
}

func (e *Engine) readLedger(ctx context.Context) (progression.Ledger, error) {
	led, err := e.Ledger.Ledger(ctx)
	if err != nil {
		return progression.Ledger{}, fmt.Errorf("read ledger: %w", err)
	}
	return led.Normalize(), nil
}

func (e *Engine) readProfile(ctx context.Context) character.Profile {
	if e.Profiles == nil {
		return character.Profile{}
	}
	p, ok, err := e.Profiles.Profile(ctx)
	if err != nil {
		e.logger().Printf("read profile: %v; using default scores", err)
		return character.Profile{}
	}
	if !ok {
		return character.Profile{}
	}
	return p
}

func (e *Engine) ensureHP() {
	if !e.hpReady {
		e.playerHP = PlayerMaxHP
		e.hpReady = true
	}
}

func (e *Engine) rolls() dice.RollSource {
	if e.Rolls == nil {
		e.Rolls = dice.Immediate{Src: e.source()}
	}
	return e.Rolls
}

func (e *Engine) source() dice.Source {
	if e.Dice == nil {
		seed, err := dice.NewSeed()
		if err != nil {
			seed = time.Now().UnixNano()
		}
		e.Dice = dice.NewSource(seed)
	}
	return e.Dice
}

func (e *Engine) clock() Clock {
	if e.Clock == nil {
		return RealClock{}
	}
	return e.Clock
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

func (s *QuestSession) current() quest.Scene {
	if s == nil || s.Scene < 0 || s.Scene >= len(s.Quest.Scenes) {
		return nil
	}
	return s.Quest.Scenes[s.Scene]
}

func (s *QuestSession) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}
