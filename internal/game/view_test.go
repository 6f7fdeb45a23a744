package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardSummary_Text(t *testing.T) {
	var none *RewardSummary
	assert.Empty(t, none.Text())

	r := &RewardSummary{XP: 1200, Coins: 35000, LevelUp: true, NewLevel: 6}
	assert.Equal(t, "You earned 1,200 XP and 35,000 coins. You reached level 6!", r.Text())
}

func TestPhase(t *testing.T) {
	assert.Equal(t, "advantage", PhaseAdvantage.String())
	assert.True(t, PhaseDefeated.IsTerminal())
	assert.False(t, PhaseCombat.IsTerminal())
	assert.True(t, PhaseCombat.IsActive())
	assert.False(t, PhaseIdle.IsActive())
}

func TestIdleView(t *testing.T) {
	e := &Engine{}
	v := e.View()
	assert.Equal(t, PhaseIdle, v.Phase)
	assert.Empty(t, v.QuestID)
	assert.Nil(t, v.Combat)
}
