package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskventure/internal/character"
	"taskventure/internal/dice"
)

func TestStartQuest_Gating(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)

	avail, err := h.eng.Available(ctx)
	require.NoError(t, err)
	var ids []string
	for _, q := range avail {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"cellar", "archive", "gauntlet", "ambush"}, ids[:4])
	require.Len(t, ids, 5)
	assert.Contains(t, ids[4], "daily_rats-")

	assert.ErrorIs(t, h.eng.StartQuest(ctx, "veteran"), ErrUnknownReference)
	assert.ErrorIs(t, h.eng.StartQuest(ctx, "nope"), ErrUnknownReference)
	assert.Contains(t, h.eng.View().Message, "not available")

	h.start(t, "cellar")
	assert.Equal(t, PhaseNarrative, h.eng.Phase())
	assert.ErrorIs(t, h.eng.StartQuest(ctx, "archive"), ErrInvalidTransition)

	v := h.last()
	assert.Equal(t, "cellar", v.QuestID)
	assert.Equal(t, "The door is ajar.", v.Narration)
	assert.Equal(t, "cave", v.Scenery)
	require.Len(t, v.Options, 2)
	assert.Equal(t, character.STR, v.Options[1].Ability)
}

func TestSkillCheck_Deterministic(t *testing.T) {
	tests := []struct {
		name    string
		roll    int
		success bool
	}{
		{name: "meets DC", roll: 8, success: true},
		{name: "one short", roll: 7, success: false},
		{name: "natural 20", roll: 20, success: true},
		{name: "natural 1", roll: 1, success: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prof := character.Profile{Scores: map[character.Ability]int{character.DEX: 14}}
			for range 2 {
				h := newHarness(t, tt.roll, withProfile(prof))
				h.start(t, "cellar")
				require.NoError(t, h.eng.Choose(context.Background(), 0))

				if tt.success {
					assert.Equal(t, PhaseAdvantage, h.eng.Phase())
					assert.Equal(t, 1, h.eng.Session().Successes)
					assert.True(t, h.logContains("Success!"))
				} else {
					assert.Equal(t, PhaseCombat, h.eng.Phase())
					assert.Equal(t, 0, h.eng.Session().Successes)
					assert.True(t, h.logContains("Failure."))
				}
			}
		})
	}
}

func TestFailure_WithoutCombatStaysOnScene(t *testing.T) {
	h := newHarness(t, 5)
	h.start(t, "archive")

	require.NoError(t, h.eng.Choose(context.Background(), 0))
	assert.Equal(t, PhaseNarrative, h.eng.Phase())
	assert.Equal(t, 0, h.eng.Session().Scene)
	assert.Zero(t, h.ledger(t).XP)
}

func TestChoose_Errors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)

	assert.ErrorIs(t, h.eng.Choose(ctx, 0), ErrInvalidTransition)

	h.start(t, "cellar")
	assert.ErrorIs(t, h.eng.Choose(ctx, -1), ErrOutOfRange)
	assert.ErrorIs(t, h.eng.Choose(ctx, 2), ErrOutOfRange)

	require.NoError(t, h.eng.Choose(ctx, 0))
	require.Equal(t, PhaseAdvantage, h.eng.Phase())
	assert.ErrorIs(t, h.eng.Choose(ctx, 0), ErrInvalidTransition)
	assert.ErrorIs(t, h.eng.Advantage(ctx, "dance"), ErrUnknownReference)
	assert.Contains(t, h.eng.View().Message, "dance")
}

func TestCheckSuccess_GrantsMicroReward(t *testing.T) {
	h := newHarness(t, 15)
	h.start(t, "cellar")
	require.NoError(t, h.eng.Choose(context.Background(), 0))

	l := h.ledger(t)
	assert.Equal(t, 5, l.XP)
	assert.Equal(t, 1, l.Level)
	assert.True(t, h.logContains("+5 XP"))
}

func TestAdvantage_CombatJumpsToFight(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)
	h.start(t, "cellar")
	require.NoError(t, h.eng.Choose(ctx, 0))

	v := h.last()
	assert.Equal(t, PhaseAdvantage, v.Phase)
	assert.Len(t, v.Advantage, 3)

	require.NoError(t, h.eng.Advantage(ctx, AdvantageCombat))
	assert.Equal(t, PhaseCombat, h.eng.Phase())
	assert.Equal(t, 1, h.eng.Session().Scene)
	require.NotNil(t, h.last().Combat)
	assert.Equal(t, "Goblin", h.last().Combat.Enemy)
}

func TestAdvantage_CombatWithoutFightCompletes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)
	h.start(t, "archive")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.Equal(t, PhaseAdvantage, h.eng.Phase())

	require.NoError(t, h.eng.Advantage(ctx, AdvantageCombat))
	assert.Equal(t, PhaseCompleted, h.eng.Phase())
	assert.Equal(t, 45, h.ledger(t).XP)
}

func TestAdvantage_SuccessCapAndLevelUp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15, withDice(4))
	h.start(t, "gauntlet")

	require.NoError(t, h.eng.Choose(ctx, 0))
	assert.Equal(t, PhaseAdvantage, h.eng.Phase())
	require.NoError(t, h.eng.Advantage(ctx, "scout"))
	assert.Equal(t, PhaseAdvantage, h.eng.Phase())
	assert.Equal(t, 2, h.eng.Session().Successes)
	require.NoError(t, h.eng.Advantage(ctx, "rally"))

	// capped: no more advantage rounds
	s := h.eng.Session()
	assert.Equal(t, PhaseNarrative, h.eng.Phase())
	assert.Equal(t, 1, s.Scene)
	assert.Equal(t, maxSuccessfulActions, s.Successes)

	for scene := 2; scene <= 4; scene++ {
		require.NoError(t, h.eng.Choose(ctx, 0))
		assert.Equal(t, maxSuccessfulActions, h.eng.Session().Successes)
		assert.Equal(t, scene, h.eng.Session().Scene)
	}
	assert.Equal(t, 6, h.eng.Session().Checks)
	require.Equal(t, PhaseCombat, h.eng.Phase())

	require.NoError(t, h.eng.Act(ctx, Command{Action: ActionMelee}))
	assert.Equal(t, PhaseCompleted, h.eng.Phase())

	l := h.ledger(t)
	assert.Equal(t, 530, l.XP)
	assert.Equal(t, 4, l.Level)

	rewards := h.last().Rewards
	require.NotNil(t, rewards)
	assert.True(t, rewards.LevelUp)
	assert.Equal(t, 4, rewards.NewLevel)
	assert.Contains(t, rewards.Text(), "You reached level 4!")
}

func TestBasicVictory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15, withDice(6, 1))
	h.start(t, "cellar")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.NoError(t, h.eng.Advantage(ctx, AdvantageCombat))

	require.NoError(t, h.eng.Act(ctx, Command{Action: ActionMelee}))
	require.Equal(t, PhaseCombat, h.eng.Phase())
	assert.Equal(t, 3, h.eng.Session().combat.EnemyHP)
	assert.True(t, h.logContains("Miss."))

	require.NoError(t, h.eng.Act(ctx, Command{Action: ActionMelee}))
	assert.Equal(t, PhaseCompleted, h.eng.Phase())
	assert.Nil(t, h.eng.Session())

	require.GreaterOrEqual(t, len(h.views), 2)
	victory := h.views[len(h.views)-2]
	require.NotNil(t, victory.Combat)
	assert.Equal(t, OutcomeVictory, victory.Combat.Outcome)
	assert.Zero(t, victory.Combat.EnemyHP)
	assert.Zero(t, victory.Pause)

	final := h.last()
	assert.Equal(t, PhaseCompleted, final.Phase)
	assert.Equal(t, 2*time.Second, final.Pause)
	require.NotNil(t, final.Rewards)
	assert.Equal(t, 50, final.Rewards.XP)
	assert.Equal(t, "You earned 50 XP and 15 coins.", final.Rewards.Text())
	require.Len(t, final.Rewards.Cards, 1)
	assert.Equal(t, "Cheese Shield", final.Rewards.Cards[0].Name)

	l := h.ledger(t)
	assert.Equal(t, 55, l.XP)
	assert.Equal(t, 15, l.Coins)
	assert.Equal(t, []string{"Cheese Shield"}, l.Inventory)
	assert.Equal(t, []string{"Cheese Shield"}, l.QuestItems)
	require.Len(t, l.Cards, 1)
	assert.Equal(t, "A keepsake from The Cellar.", l.Cards[0].Effect)

	done, err := h.player.Completed(ctx)
	require.NoError(t, err)
	assert.True(t, done["cellar"])

	rec, ok := h.eng.LastRecord()
	require.True(t, ok)
	assert.Equal(t, PhaseCompleted, rec.Outcome)
	require.Len(t, rec.Stops, 2)
	assert.False(t, rec.Stops[0].Combat)
	assert.True(t, rec.Stops[1].Combat)
	assert.Equal(t, "Quest complete: The Cellar", rec.Log[len(rec.Log)-1])
	assert.Equal(t, testStart, rec.FinishedAt)
}

func TestTerminalPhaseRejectsActions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)
	h.start(t, "archive")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.NoError(t, h.eng.Advantage(ctx, AdvantageCombat))
	require.Equal(t, PhaseCompleted, h.eng.Phase())

	assert.ErrorIs(t, h.eng.Choose(ctx, 0), ErrInvalidTransition)
	assert.ErrorIs(t, h.eng.Advantage(ctx, "scout"), ErrInvalidTransition)
	assert.ErrorIs(t, h.eng.Act(ctx, Command{Action: ActionMelee}), ErrInvalidTransition)
	assert.ErrorIs(t, h.eng.Retreat(ctx), ErrInvalidTransition)
	assert.ErrorIs(t, h.eng.Abandon(ctx), ErrInvalidTransition)
	assert.ErrorIs(t, h.eng.StartQuest(ctx, "archive"), ErrUnknownReference)
	assert.Equal(t, PhaseCompleted, h.eng.Phase())

	v := h.eng.View()
	assert.Equal(t, "archive", v.QuestID)
	assert.NotEmpty(t, v.Log)

	require.NoError(t, h.eng.ReturnToList())
	assert.Equal(t, PhaseIdle, h.eng.Phase())
	assert.ErrorIs(t, h.eng.ReturnToList(), ErrInvalidTransition)
}

func TestCompletion_LedgerFailureGrantsNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)
	h.eng.Ledger = failingLedger{h.player}
	h.start(t, "archive")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.NoError(t, h.eng.Advantage(ctx, AdvantageCombat))

	assert.Equal(t, PhaseCompleted, h.eng.Phase())
	assert.Nil(t, h.last().Rewards)
	assert.Equal(t, "Your rewards could not be recorded.", h.last().Message)

	l := h.ledger(t)
	assert.Zero(t, l.XP)
	assert.Empty(t, l.Cards)
	done, err := h.player.Completed(ctx)
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestCompletion_MarkFailureRestoresLedger(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)
	stores := failingMark{h.player, h.player}
	h.eng.Ledger = stores
	h.eng.Completions = stores

	h.start(t, "archive")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.NoError(t, h.eng.Advantage(ctx, AdvantageCombat))

	assert.Equal(t, PhaseCompleted, h.eng.Phase())
	assert.Nil(t, h.last().Rewards)
	assert.Equal(t, "Your rewards could not be recorded.", h.last().Message)

	// Only the check reward remains.
	l := h.ledger(t)
	assert.Equal(t, checkRewardXP, l.XP)
	assert.Zero(t, l.Coins)

	// A replay grants the bundle exactly once.
	require.NoError(t, h.eng.ReturnToList())
	h.eng.Ledger = h.player
	h.eng.Completions = h.player
	h.start(t, "archive")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.NoError(t, h.eng.Advantage(ctx, AdvantageCombat))
	require.NotNil(t, h.last().Rewards)
	assert.Equal(t, 2*checkRewardXP+40, h.ledger(t).XP)
	assert.Equal(t, 20, h.ledger(t).Coins)

	require.NoError(t, h.eng.ReturnToList())
	assert.ErrorIs(t, h.eng.StartQuest(ctx, "archive"), ErrUnknownReference)
}

func TestCompletion_CommitFailureGrantsNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)
	h.eng.Ledger = failingCommit{h.player}

	h.start(t, "archive")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.NoError(t, h.eng.Advantage(ctx, AdvantageCombat))

	assert.Equal(t, PhaseCompleted, h.eng.Phase())
	assert.Nil(t, h.last().Rewards)
	assert.Equal(t, checkRewardXP, h.ledger(t).XP)
	done, err := h.player.Completed(ctx)
	require.NoError(t, err)
	assert.Empty(t, done)
}

func TestAbandon(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)
	assert.ErrorIs(t, h.eng.Abandon(ctx), ErrInvalidTransition)

	h.start(t, "cellar")
	require.NoError(t, h.eng.Abandon(ctx))
	assert.Equal(t, PhaseIdle, h.eng.Phase())
	assert.Nil(t, h.eng.Session())

	rec, ok := h.eng.LastRecord()
	require.True(t, ok)
	assert.Equal(t, PhaseAbandoned, rec.Outcome)
	assert.Nil(t, rec.Rewards)

	h.start(t, "cellar")
	assert.Equal(t, PhaseNarrative, h.eng.Phase())
}

func TestDeferredRolls(t *testing.T) {
	ctx := context.Background()
	rolls := &dice.Deferred{}
	h := newHarness(t, 15, withRolls(rolls))
	h.start(t, "cellar")

	require.NoError(t, h.eng.Choose(ctx, 0))
	assert.True(t, h.eng.Awaiting())
	assert.True(t, rolls.Pending())
	assert.Equal(t, "Sneak down", h.last().Awaiting)
	assert.Equal(t, PhaseNarrative, h.eng.Phase())
	assert.ErrorIs(t, h.eng.Choose(ctx, 0), ErrRollPending)

	require.NoError(t, rolls.Resolve(15))
	assert.False(t, h.eng.Awaiting())
	assert.Equal(t, PhaseAdvantage, h.eng.Phase())
	assert.Empty(t, h.last().Awaiting)

	require.NoError(t, h.eng.Advantage(ctx, "scout"))
	require.True(t, h.eng.Awaiting())
	require.NoError(t, h.eng.Abandon(ctx))
	assert.False(t, rolls.Pending())
	assert.ErrorIs(t, rolls.Resolve(10), dice.ErrNoPendingRoll)
	assert.Equal(t, PhaseIdle, h.eng.Phase())
}

func TestStaleRollIsIgnored(t *testing.T) {
	ctx := context.Background()
	rolls := &captureRolls{}
	h := newHarness(t, 15, withRolls(rolls))

	h.start(t, "cellar")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.NoError(t, h.eng.Abandon(ctx))

	h.start(t, "cellar")
	require.NoError(t, h.eng.Choose(ctx, 0))
	require.Len(t, rolls.fns, 2)

	rolls.fns[0](20)
	assert.True(t, h.eng.Awaiting())
	assert.Equal(t, PhaseNarrative, h.eng.Phase())

	rolls.fns[1](25)
	assert.False(t, h.eng.Awaiting())
	assert.Equal(t, PhaseAdvantage, h.eng.Phase())
	assert.True(t, h.logContains("rolled 20+0 = 20"))

	rolls.fns[1](1)
	assert.Equal(t, PhaseAdvantage, h.eng.Phase())
}

func TestDailyQuest_StableWithinDay(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 15)

	first, err := h.eng.Available(ctx)
	require.NoError(t, err)
	second, err := h.eng.Available(ctx)
	require.NoError(t, err)
	dailyID := first[len(first)-1].ID
	assert.Equal(t, dailyID, second[len(second)-1].ID)
	assert.True(t, first[len(first)-1].Daily)

	h.clock.Advance(24 * time.Hour)
	next, err := h.eng.Available(ctx)
	require.NoError(t, err)
	tomorrowID := next[len(next)-1].ID
	assert.NotEqual(t, dailyID, tomorrowID)

	h.start(t, tomorrowID)
	require.Equal(t, PhaseCombat, h.eng.Phase())
	require.NoError(t, h.eng.Act(ctx, Command{Action: ActionMelee}))
	require.Equal(t, PhaseCompleted, h.eng.Phase())

	after, err := h.eng.Available(ctx)
	require.NoError(t, err)
	for _, q := range after {
		assert.NotEqual(t, tomorrowID, q.ID)
	}
	rec, _ := h.eng.LastRecord()
	assert.True(t, rec.Daily)
}
