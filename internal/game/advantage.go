package game

import "taskventure/internal/character"

// AdvantageCombat ends the advantage round and starts the fight.
const AdvantageCombat = "combat"

// AdvantageOption is a flavor choice offered after a successful check.
type AdvantageOption struct {
	Action  string
	Text    string
	Ability character.Ability
	DC      int
}

var advantageOptions = []AdvantageOption{
	{Action: "scout", Text: "Scout the path ahead", Ability: character.WIS, DC: 12},
	{Action: "ambush", Text: "Prepare an ambush", Ability: character.DEX, DC: 13},
	{Action: "rally", Text: "Rally your resolve", Ability: character.CHA, DC: 11},
}

// AdvantageOptions returns the flavor choices of an advantage round.
func AdvantageOptions() []AdvantageOption {
	return append([]AdvantageOption(nil), advantageOptions...)
}

func findAdvantage(action string) (AdvantageOption, bool) {
	for _, o := range advantageOptions {
		if o.Action == action {
			return o, true
		}
	}
	return AdvantageOption{}, false
}
