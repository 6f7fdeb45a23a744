package web

import (
	"taskventure/internal/character"
	"taskventure/internal/game"
	"taskventure/internal/progression"
	"taskventure/internal/quest"
)

// Page is the data of layout.html; exactly one of the page fields is set.
type Page struct {
	Title   string
	Hero    HeroView
	Quests  *QuestsViewModel
	Play    *PlayViewModel
	Profile *ProfileViewModel
}

// HeroView is the sidebar summary of the player.
type HeroView struct {
	Name   string
	Class  character.Class
	Level  int
	XP     int
	NextXP int
	Coins  int
	Cards  int
	HP     int
	MaxHP  int
}

type QuestsViewModel struct {
	Quests     []QuestOption
	Cards      []progression.Card
	HasJournal bool
	Message    string
}

type QuestOption struct {
	ID          string
	Title       string
	Description string
	Difficulty  quest.Difficulty
	MinLevel    int
	Daily       bool
	Fight       bool
	XP          int
	Coins       int
}

type PlayViewModel struct {
	View       game.View
	Manual     bool
	Terminal   bool
	HasJournal bool
	RewardText string
	Spells     []character.Spell
	// PauseMS asks the page to hold the result on screen before the next
	// input is enabled.
	PauseMS int64
}

type ProfileViewModel struct {
	Profile   character.Profile
	Classes   []character.Class
	Armors    []character.Armor
	Abilities []ScoreField
	Message   string
}

type ScoreField struct {
	Ability character.Ability
	Score   int
}

var allClasses = []character.Class{
	character.Barbarian, character.Bard, character.Cleric, character.Druid,
	character.Fighter, character.Monk, character.Paladin, character.Ranger,
	character.Rogue, character.Sorcerer, character.Warlock, character.Wizard,
}

var allArmors = []character.Armor{
	character.ArmorNone, character.ArmorLeather, character.ArmorChain, character.ArmorPlate,
}

var allAbilities = []character.Ability{
	character.STR, character.DEX, character.CON, character.INT, character.WIS, character.CHA,
}

func questOption(d quest.Definition) QuestOption {
	return QuestOption{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Difficulty:  d.Difficulty,
		MinLevel:    d.MinLevel,
		Daily:       d.Daily,
		Fight:       d.HasCombat(),
		XP:          d.Rewards.XP,
		Coins:       d.Rewards.Coins,
	}
}

func profileViewModel(p character.Profile, msg string) *ProfileViewModel {
	vm := &ProfileViewModel{Profile: p, Classes: allClasses, Armors: allArmors, Message: msg}
	for _, a := range allAbilities {
		vm.Abilities = append(vm.Abilities, ScoreField{Ability: a, Score: p.Score(a)})
	}
	return vm
}
