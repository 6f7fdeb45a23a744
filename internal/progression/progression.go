// Package progression owns the XP curve and the append-only ledger of XP,
// coins, inventory and collectible cards.
package progression

import (
	"fmt"

	"github.com/google/uuid"
)

// levelThresholds[i] is the cumulative XP needed to reach level i+1.
var levelThresholds = []int{
	0, 100, 250, 450, 700, 1000, 1400, 1900, 2500, 3200,
	4000, 5000, 6200, 7600, 9200, 11000, 13000, 15500, 18500, 22000,
}

// MaxLevel is the highest level on the curve.
var MaxLevel = len(levelThresholds)

// XPForLevel returns the cumulative XP threshold for level.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelThresholds[level-1]
}

// LevelForXP returns the highest level whose threshold xp meets.
func LevelForXP(xp int) int {
	level := 1
	for i, need := range levelThresholds {
		if xp >= need {
			level = i + 1
		}
	}
	return level
}

// RarityUncommon is the rarity of cards minted from quest items.
const RarityUncommon = "Uncommon"

// Card is a collectible.
type Card struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity string `json:"rarity"`
	Effect string `json:"effect"`
}

// Ledger is the player's running totals. Quest code only ever appends.
type Ledger struct {
	XP         int      `json:"xp"`
	Coins      int      `json:"coins"`
	Level      int      `json:"level"`
	Cards      []Card   `json:"cards"`
	Inventory  []string `json:"inventory"`
	QuestItems []string `json:"questItems"`
}

// Award is one reward bundle to append.
type Award struct {
	XP     int
	Coins  int
	Items  []string
	Source string // quest title referenced by minted cards
}

// Normalize fills defaults for a ledger read from storage.
func (l Ledger) Normalize() Ledger {
	if l.Level < 1 {
		l.Level = 1
	}
	if l.XP < 0 {
		l.XP = 0
	}
	return l
}

// Apply returns a new ledger with a appended and reports whether the level
// went up. The receiver is not modified.
func (l Ledger) Apply(a Award) (Ledger, bool) {
	out := l.Normalize()
	out.Cards = append([]Card(nil), l.Cards...)
	out.Inventory = append([]string(nil), l.Inventory...)
	out.QuestItems = append([]string(nil), l.QuestItems...)

	out.XP += a.XP
	out.Coins += a.Coins
	for _, item := range a.Items {
		out.Inventory = append(out.Inventory, item)
		out.QuestItems = append(out.QuestItems, item)
		out.Cards = append(out.Cards, QuestCard(item, a.Source))
	}

	leveled := false
	if lv := LevelForXP(out.XP); lv > out.Level {
		out.Level = lv
		leveled = true
	}
	return out, leveled
}

// QuestCard mints the collectible for an item earned on a quest.
func QuestCard(item, questTitle string) Card {
	return Card{
		ID:     uuid.NewString(),
		Name:   item,
		Rarity: RarityUncommon,
		Effect: fmt.Sprintf("A keepsake from %s.", questTitle),
	}
}
