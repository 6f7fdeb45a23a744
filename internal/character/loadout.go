package character

import "taskventure/internal/dice"

// Weapon is a cosmetic name plus the dice and ability that drive it.
type Weapon struct {
	Name       string
	Damage     dice.Expr
	DamageType string
	Ability    Ability
}

// Spell is an attack cantrip or spell available to casters.
type Spell struct {
	ID         string
	Name       string
	Damage     dice.Expr
	DamageType string
	AutoHit    bool
	Save       Ability // enemy saving throw instead of an attack roll
}

// Feature is a class-gated combat option.
type Feature string

const (
	FeatureSpellcasting  Feature = "spellcasting"
	FeatureCunningAction Feature = "cunning_action"
	FeatureSecondWind    Feature = "second_wind"
	FeatureSneakAttack   Feature = "sneak_attack"
)

var casterAbility = map[Class]Ability{
	Wizard:   INT,
	Sorcerer: CHA,
	Warlock:  CHA,
	Bard:     CHA,
	Cleric:   WIS,
	Druid:    WIS,
}

// Spells every caster can use in combat.
var Spells = []Spell{
	{ID: "fire_bolt", Name: "Fire Bolt", Damage: dice.MustParse("1d10"), DamageType: "fire"},
	{ID: "magic_missile", Name: "Magic Missile", Damage: dice.MustParse("3d4+3"), DamageType: "force", AutoHit: true},
	{ID: "sacred_flame", Name: "Sacred Flame", Damage: dice.MustParse("1d8"), DamageType: "radiant", Save: DEX},
}

// FindSpell looks a spell up by id.
func FindSpell(id string) (Spell, bool) {
	for _, s := range Spells {
		if s.ID == id {
			return s, true
		}
	}
	return Spell{}, false
}

// HasFeature reports whether the class grants f.
func (c Class) HasFeature(f Feature) bool {
	switch f {
	case FeatureSpellcasting:
		_, ok := casterAbility[c]
		return ok
	case FeatureCunningAction, FeatureSneakAttack:
		return c == Rogue
	case FeatureSecondWind:
		return c == Fighter
	default:
		return false
	}
}

// SpellAbility returns the casting ability for the class.
func (c Class) SpellAbility() (Ability, bool) {
	a, ok := casterAbility[c]
	return a, ok
}

// MeleeWeapon returns the class's default melee weapon.
func (c Class) MeleeWeapon() Weapon {
	switch c {
	case Barbarian:
		return Weapon{Name: "Greataxe", Damage: dice.MustParse("1d12"), DamageType: "slashing", Ability: STR}
	case Fighter, Paladin:
		return Weapon{Name: "Longsword", Damage: dice.MustParse("1d8"), DamageType: "slashing", Ability: STR}
	case Rogue, Monk:
		return Weapon{Name: "Shortsword", Damage: dice.MustParse("1d6"), DamageType: "piercing", Ability: DEX}
	case Wizard, Sorcerer, Warlock:
		return Weapon{Name: "Quarterstaff", Damage: dice.MustParse("1d6"), DamageType: "bludgeoning", Ability: STR}
	default:
		return Weapon{Name: "Mace", Damage: dice.MustParse("1d6"), DamageType: "bludgeoning", Ability: STR}
	}
}

// RangedWeapon returns the class's default ranged weapon.
func (c Class) RangedWeapon() Weapon {
	switch c {
	case Ranger, Fighter:
		return Weapon{Name: "Longbow", Damage: dice.MustParse("1d8"), DamageType: "piercing", Ability: DEX}
	case Rogue, Bard:
		return Weapon{Name: "Hand Crossbow", Damage: dice.MustParse("1d6"), DamageType: "piercing", Ability: DEX}
	default:
		return Weapon{Name: "Shortbow", Damage: dice.MustParse("1d6"), DamageType: "piercing", Ability: DEX}
	}
}
