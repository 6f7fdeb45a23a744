// Package quest holds quest definitions and the catalog that decides which
// quests a player may start.
package quest

import (
	"taskventure/internal/character"
	"taskventure/internal/dice"
)

// Difficulty is the coarse tier shown on the quest board.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// EnemyAttackBonus is added to every enemy attack roll.
const EnemyAttackBonus = 4

// DefaultEnemyDamage applies when an enemy does not set a damage expression.
var DefaultEnemyDamage = dice.Expr{Count: 1, Sides: 6, Bonus: 3}

// Rewards is the bundle granted once when a quest completes.
type Rewards struct {
	XP    int      `yaml:"xp"`
	Coins int      `yaml:"coins"`
	Items []string `yaml:"items"`
}

// Definition is an immutable quest template.
type Definition struct {
	ID          string
	Title       string
	Description string
	Difficulty  Difficulty
	MinLevel    int
	Rewards     Rewards
	Scenes      []Scene
	Daily       bool
}

// CombatIndex returns the index of the first combat scene at or after from,
// or -1 when the rest of the quest is narrative only.
func (d *Definition) CombatIndex(from int) int {
	for i := from; i < len(d.Scenes); i++ {
		if _, ok := d.Scenes[i].(*CombatScene); ok {
			return i
		}
	}
	return -1
}

// HasCombat reports whether any scene is a fight.
func (d *Definition) HasCombat() bool { return d.CombatIndex(0) >= 0 }

// Scene is one narrative unit: a *ChoiceScene or a *CombatScene.
type Scene interface {
	Narration() string
	Backdrop() string
	scene()
}

// Option is one skill-check choice.
type Option struct {
	Text    string
	Ability character.Ability
	DC      int
}

// ChoiceScene offers options resolved by skill checks.
type ChoiceScene struct {
	Text    string
	Scenery string
	Options []Option
}

func (s *ChoiceScene) Narration() string { return s.Text }
func (s *ChoiceScene) Backdrop() string  { return s.Scenery }
func (*ChoiceScene) scene()              {}

// Enemy is the opponent of a combat scene.
type Enemy struct {
	Name   string
	HP     int
	AC     int
	Damage dice.Expr
}

// CombatScene is a fight against a single enemy.
type CombatScene struct {
	Text    string
	Scenery string
	Enemy   Enemy
}

func (s *CombatScene) Narration() string { return s.Text }
func (s *CombatScene) Backdrop() string  { return s.Scenery }
func (*CombatScene) scene()              {}
