// Package character describes the read-only player profile the quest engine
// consults: ability scores, class, race and equipped armor.
package character

import (
	"math"
	"strings"
)

// Ability is a three-letter ability code.
type Ability string

const (
	STR Ability = "STR"
	DEX Ability = "DEX"
	CON Ability = "CON"
	INT Ability = "INT"
	WIS Ability = "WIS"
	CHA Ability = "CHA"
)

// DefaultScore is assumed for any ability the profile does not list.
const DefaultScore = 10

// ParseAbility normalizes codes such as "dex" or "Dexterity".
func ParseAbility(s string) (Ability, bool) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) > 3 {
		code = code[:3]
	}
	switch Ability(code) {
	case STR, DEX, CON, INT, WIS, CHA:
		return Ability(code), true
	default:
		return "", false
	}
}

// Class is a character class name.
type Class string

const (
	Barbarian Class = "Barbarian"
	Bard      Class = "Bard"
	Cleric    Class = "Cleric"
	Druid     Class = "Druid"
	Fighter   Class = "Fighter"
	Monk      Class = "Monk"
	Paladin   Class = "Paladin"
	Ranger    Class = "Ranger"
	Rogue     Class = "Rogue"
	Sorcerer  Class = "Sorcerer"
	Warlock   Class = "Warlock"
	Wizard    Class = "Wizard"
)

// Armor is the equipped armor category.
type Armor string

const (
	ArmorNone    Armor = ""
	ArmorLeather Armor = "leather"
	ArmorChain   Armor = "chain"
	ArmorPlate   Armor = "plate"
)

// Bonus returns the armor class bonus of the armor category.
func (a Armor) Bonus() int {
	switch a {
	case ArmorLeather:
		return 1
	case ArmorChain:
		return 3
	case ArmorPlate:
		return 6
	default:
		return 0
	}
}

// Profile is the player's character sheet.
type Profile struct {
	Name   string          `json:"name"`
	Race   string          `json:"race"`
	Gender string          `json:"gender"`
	Class  Class           `json:"class"`
	Armor  Armor           `json:"armor,omitempty"`
	Scores map[Ability]int `json:"scores"`
}

// Score returns the ability score, or DefaultScore when it is absent.
func (p Profile) Score(a Ability) int {
	if v, ok := p.Scores[a]; ok && v > 0 {
		return v
	}
	return DefaultScore
}

// Mod returns the ability modifier for a.
func (p Profile) Mod(a Ability) int {
	return Modifier(p.Score(a))
}

// ArmorClass is 10 + DEX modifier + armor bonus.
func (p Profile) ArmorClass() int {
	return 10 + p.Mod(DEX) + p.Armor.Bonus()
}

// Modifier is floor((score - 10) / 2).
func Modifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}

// ProficiencyBonus is ceil(level/4) + 1.
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return (level+3)/4 + 1
}
