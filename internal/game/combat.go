package game

import (
	"context"
	"fmt"

	"taskventure/internal/character"
	"taskventure/internal/dice"
	"taskventure/internal/quest"
)

// Action is a combat action name.
type Action string

const (
	ActionMelee         Action = "melee"
	ActionRanged        Action = "ranged"
	ActionSpell         Action = "spell"
	ActionDash          Action = "dash"
	ActionDisengage     Action = "disengage"
	ActionDodge         Action = "dodge"
	ActionHide          Action = "hide"
	ActionGrapple       Action = "grapple"
	ActionHelp          Action = "help"
	ActionBonusSpell    Action = "bonus_spell"
	ActionCunningAction Action = "cunning_action"
	ActionSecondWind    Action = "second_wind"
)

// Actions lists every combat action in display order.
var Actions = []Action{
	ActionMelee, ActionRanged, ActionSpell, ActionDash, ActionDisengage, ActionDodge,
	ActionHide, ActionGrapple, ActionHelp, ActionBonusSpell, ActionCunningAction, ActionSecondWind,
}

var actionLabels = map[Action]string{
	ActionMelee:         "Melee Attack",
	ActionRanged:        "Ranged Attack",
	ActionSpell:         "Cast Spell",
	ActionDash:          "Dash",
	ActionDisengage:     "Disengage",
	ActionDodge:         "Dodge",
	ActionHide:          "Hide",
	ActionGrapple:       "Grapple",
	ActionHelp:          "Help",
	ActionBonusSpell:    "Bonus Spell",
	ActionCunningAction: "Cunning Action",
	ActionSecondWind:    "Second Wind",
}

// requiredFeature gates class-specific actions.
var requiredFeature = map[Action]character.Feature{
	ActionSpell:         character.FeatureSpellcasting,
	ActionBonusSpell:    character.FeatureSpellcasting,
	ActionCunningAction: character.FeatureCunningAction,
	ActionSecondWind:    character.FeatureSecondWind,
}

// Label returns the display name of the action.
func (a Action) Label() string { return actionLabels[a] }

// Command is one player turn. Spell selects the spell for ActionSpell.
type Command struct {
	Action Action
	Spell  string
}

// Outcome is the terminal result of a fight.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

// CombatState is the fight inside a quest session.
type CombatState struct {
	SceneIndex int
	Enemy      quest.Enemy
	EnemyHP    int
	EnemyMaxHP int
	Outcome    Outcome
	Pending    Action

	advantage         bool
	hiddenAdvantage   bool
	enemyDisadvantage bool
	tempAC            int
	disengaged        bool
	grappled          bool
	untargetable      bool
	secondWindUsed    bool
}

// Over reports whether the fight has a terminal outcome.
func (c *CombatState) Over() bool { return c.Outcome != OutcomeNone }

// enterCombat is idempotent for the scene it was started on: HP already
// dealt is kept.
func (e *Engine) enterCombat(idx int, sc *quest.CombatScene) {
	s := e.session
	e.phase = PhaseCombat
	e.ensureHP()
	if s.combat != nil && s.combat.SceneIndex == idx {
		e.emit(0)
		return
	}
	s.combat = &CombatState{
		SceneIndex: idx,
		Enemy:      sc.Enemy,
		EnemyHP:    sc.Enemy.HP,
		EnemyMaxHP: sc.Enemy.HP,
	}
	s.logf("%s blocks your way! (HP %d, AC %d)", sc.Enemy.Name, sc.Enemy.HP, sc.Enemy.AC)
	e.emit(0)
}

// Act selects the player's action for this turn and waits for its roll.
func (e *Engine) Act(ctx context.Context, cmd Command) error {
	if e.pending != nil {
		return ErrRollPending
	}
	if e.phase != PhaseCombat || e.session == nil || e.session.combat == nil {
		return ErrInvalidTransition
	}
	s := e.session
	c := s.combat
	if c.Over() {
		return ErrInvalidTransition
	}
	if _, ok := actionLabels[cmd.Action]; !ok {
		return ErrOutOfRange
	}
	if f, gated := requiredFeature[cmd.Action]; gated && !s.profile.Class.HasFeature(f) {
		s.logf("You don't know how to %s.", cmd.Action.Label())
		e.emit(0)
		return e.reject(ErrUnknownReference, fmt.Sprintf("class %q lacks %s", s.profile.Class, f))
	}

	var spell character.Spell
	if cmd.Action == ActionSpell {
		id := cmd.Spell
		if id == "" {
			id = character.Spells[0].ID
		}
		var ok bool
		if spell, ok = character.FindSpell(id); !ok {
			return e.reject(ErrUnknownReference, fmt.Sprintf("unknown spell %q", cmd.Spell))
		}
	}
	if cmd.Action == ActionSecondWind && c.secondWindUsed {
		s.logf("You have already used your Second Wind on this quest.")
		e.emit(0)
		return ErrInvalidTransition
	}

	c.Pending = cmd.Action
	bg := context.WithoutCancel(ctx)
	e.request(pendingRoll{label: cmd.Action.Label(), action: cmd.Action}, func(roll int) {
		c.Pending = ""
		e.resolveAction(bg, cmd.Action, spell, roll)
	})
	return nil
}

// Retreat flees the fight. It always succeeds and restores the player.
func (e *Engine) Retreat(_ context.Context) error {
	if e.phase != PhaseCombat || e.session == nil {
		return ErrInvalidTransition
	}
	e.cancelPending()
	e.session.logf("You retreat to safety.")
	e.playerHP = PlayerMaxHP
	e.finish(PhaseAbandoned, nil)
	e.emit(0)
	return nil
}

// resolveAction applies the player's action, then the enemy's reply. The
// over-check runs after every HP change.
func (e *Engine) resolveAction(ctx context.Context, a Action, spell character.Spell, roll int) {
	switch a {
	case ActionMelee:
		e.weaponAttack(e.session.profile.Class.MeleeWeapon(), roll)
	case ActionRanged:
		e.weaponAttack(e.session.profile.Class.RangedWeapon(), roll)
	case ActionSpell:
		e.castSpell(spell, roll)
	case ActionDash:
		e.dash()
	case ActionDisengage:
		e.disengage(roll)
	case ActionDodge:
		e.dodge(roll)
	case ActionHide:
		e.hide(roll)
	case ActionGrapple:
		e.grapple(roll)
	case ActionHelp:
		e.help(roll)
	case ActionBonusSpell:
		e.bonusSpell()
	case ActionCunningAction:
		e.cunningAction(roll)
	case ActionSecondWind:
		e.secondWind()
	}
	if e.combatOver(ctx) {
		return
	}
	e.enemyTurn()
	if e.combatOver(ctx) {
		return
	}
	e.emit(0)
}

// combatOver ends the fight when either side is at 0 HP.
func (e *Engine) combatOver(ctx context.Context) bool {
	s := e.session
	c := s.combat
	switch {
	case c.EnemyHP <= 0:
		c.Outcome = OutcomeVictory
		s.logf("%s is defeated! Victory!", c.Enemy.Name)
		e.emit(0)
		e.completeQuest(ctx)
		return true
	case e.playerHP <= 0:
		c.Outcome = OutcomeDefeat
		s.logf("You have been defeated by %s.", c.Enemy.Name)
		e.emit(0)
		e.playerHP = PlayerMaxHP
		e.finish(PhaseDefeated, nil)
		e.emit(e.Pause)
		return true
	default:
		return false
	}
}

// attackRoll applies advantage and returns the d20 used and whether
// advantage applied. Advantage flags are consumed.
func (e *Engine) attackRoll(roll int) (int, bool) {
	c := e.session.combat
	if !c.advantage && !c.hiddenAdvantage {
		return roll, false
	}
	c.advantage = false
	c.hiddenAdvantage = false
	return dice.Higher(e.source(), roll), true
}

func (e *Engine) weaponAttack(w character.Weapon, roll int) {
	s := e.session
	c := s.combat
	mod := s.profile.Mod(w.Ability)
	d20, adv := e.attackRoll(roll)
	total := d20 + mod + character.ProficiencyBonus(s.level) + s.Successes
	if total < c.Enemy.AC {
		s.logf("You swing your %s: %d vs AC %d. Miss.", w.Name, total, c.Enemy.AC)
		return
	}
	dmg := w.Damage.Roll(e.source()).Total() + mod + s.Successes
	if adv && s.profile.Class.HasFeature(character.FeatureSneakAttack) {
		dmg += dice.Die(e.source(), 6)
		s.logf("Sneak attack!")
	}
	dmg = max(dmg, 0)
	s.logf("You hit with your %s: %d vs AC %d for %d %s damage.", w.Name, total, c.Enemy.AC, dmg, w.DamageType)
	e.damageEnemy(dmg)
}

func (e *Engine) castSpell(sp character.Spell, roll int) {
	s := e.session
	c := s.combat
	ability, _ := s.profile.Class.SpellAbility()
	mod := s.profile.Mod(ability)
	prof := character.ProficiencyBonus(s.level)

	switch {
	case sp.AutoHit:
		s.logf("%s streaks unerringly toward %s.", sp.Name, c.Enemy.Name)
	case sp.Save != "":
		save := dice.D20(e.source()) + 2
		dc := 8 + prof + mod
		if save >= dc {
			s.logf("%s resists %s (%s save %d vs DC %d).", c.Enemy.Name, sp.Name, sp.Save, save, dc)
			return
		}
		s.logf("%s fails its %s save (%d vs DC %d).", c.Enemy.Name, sp.Save, save, dc)
	default:
		d20, _ := e.attackRoll(roll)
		total := d20 + mod + prof + s.Successes
		if total < c.Enemy.AC {
			s.logf("Your %s misses: %d vs AC %d.", sp.Name, total, c.Enemy.AC)
			return
		}
	}
	dmg := max(sp.Damage.Roll(e.source()).Total()+mod+s.Successes, 0)
	s.logf("%s deals %d %s damage.", sp.Name, dmg, sp.DamageType)
	e.damageEnemy(dmg)
}

func (e *Engine) dash() {
	c := e.session.combat
	c.advantage = true
	c.enemyDisadvantage = true
	e.session.logf("You dash around %s, looking for an opening.", c.Enemy.Name)
}

func (e *Engine) disengage(roll int) {
	s := e.session
	c := s.combat
	total := roll + s.profile.Mod(character.DEX)
	if total < 12 {
		s.logf("You try to disengage but stumble (%d vs 12).", total)
		return
	}
	c.advantage = true
	c.disengaged = true
	s.logf("You slip out of reach (%d vs 12).", total)
}

func (e *Engine) dodge(roll int) {
	s := e.session
	c := s.combat
	bonus := floorDiv(roll+s.profile.Mod(character.DEX), 3) + 2
	c.tempAC = bonus
	c.enemyDisadvantage = true
	s.logf("You take a defensive stance (+%d AC).", bonus)
}

func (e *Engine) hide(roll int) {
	s := e.session
	c := s.combat
	total := roll + s.profile.Mod(character.DEX)
	if total < 15 {
		s.logf("You fail to find cover (%d vs 15).", total)
		return
	}
	c.hiddenAdvantage = true
	c.untargetable = true
	s.logf("You vanish into the shadows (%d vs 15).", total)
}

func (e *Engine) grapple(roll int) {
	s := e.session
	c := s.combat
	total := roll + s.profile.Mod(character.STR)
	defense := dice.D20(e.source()) + 3
	if total < defense {
		s.logf("%s breaks free of your grip (%d vs %d).", c.Enemy.Name, total, defense)
		return
	}
	c.advantage = true
	c.enemyDisadvantage = true
	c.grappled = true
	s.logf("You grapple %s (%d vs %d).", c.Enemy.Name, total, defense)
}

func (e *Engine) help(roll int) {
	c := e.session.combat
	healed := e.healPlayer(roll/5 + 1)
	c.advantage = true
	e.session.logf("You catch your breath and recover %d HP.", healed)
}

func (e *Engine) bonusSpell() {
	s := e.session
	ability, _ := s.profile.Class.SpellAbility()
	amount := max(dice.Die(e.source(), 4)+s.profile.Mod(ability), 1)
	healed := e.healPlayer(amount)
	s.logf("A quick healing word restores %d HP.", healed)
}

func (e *Engine) cunningAction(roll int) {
	s := e.session
	c := s.combat
	total := roll + s.profile.Mod(character.DEX)
	if total < 10 {
		s.logf("Your feint fools no one (%d vs 10).", total)
		return
	}
	c.advantage = true
	c.enemyDisadvantage = true
	s.logf("You feint and reposition (%d vs 10).", total)
}

func (e *Engine) secondWind() {
	s := e.session
	s.combat.secondWindUsed = true
	healed := e.healPlayer(dice.Die(e.source(), 10) + s.level)
	s.logf("Second Wind restores %d HP.", healed)
}

// enemyTurn runs the enemy's attack unless the player disengaged or hid.
func (e *Engine) enemyTurn() {
	s := e.session
	c := s.combat
	if c.disengaged || c.untargetable {
		c.disengaged = false
		c.untargetable = false
		s.logf("%s cannot reach you this turn.", c.Enemy.Name)
		return
	}

	roll := dice.D20(e.source())
	if c.enemyDisadvantage {
		roll = dice.Lower(e.source(), roll)
		c.enemyDisadvantage = false
	}
	total := roll + quest.EnemyAttackBonus
	ac := s.profile.ArmorClass() + c.tempAC
	c.tempAC = 0
	if total < ac {
		s.logf("%s attacks: %d vs AC %d. Miss.", c.Enemy.Name, total, ac)
		return
	}
	dmg := c.Enemy.Damage.Roll(e.source()).Total()
	if c.grappled {
		dmg /= 2
		c.grappled = false
	}
	dmg = max(dmg, 0)
	e.damagePlayer(dmg)
	s.logf("%s hits: %d vs AC %d for %d damage.", c.Enemy.Name, total, ac, dmg)
}

func (e *Engine) damageEnemy(n int) {
	c := e.session.combat
	c.EnemyHP = clamp(c.EnemyHP-n, 0, c.EnemyMaxHP)
}

func (e *Engine) damagePlayer(n int) {
	e.playerHP = clamp(e.playerHP-n, 0, PlayerMaxHP)
}

func (e *Engine) healPlayer(n int) int {
	before := e.playerHP
	e.playerHP = clamp(e.playerHP+n, 0, PlayerMaxHP)
	return e.playerHP - before
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
