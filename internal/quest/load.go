package quest

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"taskventure/internal/character"
	"taskventure/internal/dice"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Library is the full set of quest templates and the daily pool.
type Library struct {
	Quests []Definition
	Daily  []Definition
}

type libraryYAML struct {
	Quests []questYAML `yaml:"quests"`
	Daily  []questYAML `yaml:"daily"`
}

type questYAML struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Difficulty  Difficulty  `yaml:"difficulty"`
	MinLevel    int         `yaml:"min_level"`
	Rewards     Rewards     `yaml:"rewards"`
	Scenes      []sceneYAML `yaml:"scenes"`
}

type sceneYAML struct {
	Text    string       `yaml:"text"`
	Scenery string       `yaml:"scenery"`
	Options []optionYAML `yaml:"options"`
	Enemy   *enemyYAML   `yaml:"enemy"`
}

type optionYAML struct {
	Text    string `yaml:"text"`
	Ability string `yaml:"ability"`
	DC      int    `yaml:"dc"`
}

type enemyYAML struct {
	Name   string    `yaml:"name"`
	HP     int       `yaml:"hp"`
	AC     int       `yaml:"ac"`
	Damage dice.Expr `yaml:"damage"`
}

// DefaultLibrary returns the catalog compiled into the binary.
func DefaultLibrary() (*Library, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile loads a catalog from a YAML file.
func LoadFile(path string) (*Library, error) {
	cleanPath := filepath.Clean(path)
	f, err := os.Open(cleanPath) //nolint:gosec // operator-supplied catalog path
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Library, error) {
	var raw libraryYAML
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	lib := &Library{}
	seen := map[string]bool{}
	for _, q := range raw.Quests {
		def, err := q.build(false)
		if err != nil {
			return nil, err
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("quest %q: duplicate id", def.ID)
		}
		seen[def.ID] = true
		lib.Quests = append(lib.Quests, def)
	}
	for _, q := range raw.Daily {
		def, err := q.build(true)
		if err != nil {
			return nil, err
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("quest %q: duplicate id", def.ID)
		}
		seen[def.ID] = true
		lib.Daily = append(lib.Daily, def)
	}
	return lib, nil
}

func (q questYAML) build(daily bool) (Definition, error) {
	id := strings.TrimSpace(q.ID)
	if id == "" {
		return Definition{}, fmt.Errorf("quest %q: missing id", q.Title)
	}
	if len(q.Scenes) == 0 {
		return Definition{}, fmt.Errorf("quest %q: no scenes", id)
	}
	switch q.Difficulty {
	case Easy, Medium, Hard:
	case "":
		q.Difficulty = Easy
	default:
		return Definition{}, fmt.Errorf("quest %q: unknown difficulty %q", id, q.Difficulty)
	}
	if q.MinLevel < 1 {
		q.MinLevel = 1
	}

	def := Definition{
		ID:          id,
		Title:       q.Title,
		Description: q.Description,
		Difficulty:  q.Difficulty,
		MinLevel:    q.MinLevel,
		Rewards:     q.Rewards,
		Daily:       daily,
	}
	for i, s := range q.Scenes {
		sc, err := s.build()
		if err != nil {
			return Definition{}, fmt.Errorf("quest %q scene %d: %w", id, i, err)
		}
		def.Scenes = append(def.Scenes, sc)
	}
	return def, nil
}

func (s sceneYAML) build() (Scene, error) {
	switch {
	case s.Enemy != nil && len(s.Options) > 0:
		return nil, fmt.Errorf("scene has both options and an enemy")
	case s.Enemy != nil:
		e := s.Enemy
		if e.HP <= 0 {
			return nil, fmt.Errorf("enemy %q needs positive hp", e.Name)
		}
		enemy := Enemy{Name: e.Name, HP: e.HP, AC: e.AC, Damage: e.Damage}
		if enemy.Damage.IsZero() {
			enemy.Damage = DefaultEnemyDamage
		}
		return &CombatScene{Text: s.Text, Scenery: s.Scenery, Enemy: enemy}, nil
	case len(s.Options) > 0:
		sc := &ChoiceScene{Text: s.Text, Scenery: s.Scenery}
		for _, o := range s.Options {
			ab, ok := character.ParseAbility(o.Ability)
			if !ok {
				return nil, fmt.Errorf("option %q: unknown ability %q", o.Text, o.Ability)
			}
			if o.DC <= 0 {
				return nil, fmt.Errorf("option %q: dc must be positive", o.Text)
			}
			sc.Options = append(sc.Options, Option{Text: o.Text, Ability: ab, DC: o.DC})
		}
		return sc, nil
	default:
		return nil, fmt.Errorf("scene needs options or an enemy")
	}
}
