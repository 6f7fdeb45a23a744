package game

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskventure/internal/character"
	"taskventure/internal/dice"
	"taskventure/internal/progression"
	"taskventure/internal/quest"
	"taskventure/internal/storage/memory"
)

const testCatalog = `
quests:
  - id: cellar
    title: The Cellar
    rewards: {xp: 50, coins: 15, items: [Cheese Shield]}
    scenes:
      - text: The door is ajar.
        scenery: cave
        options:
          - {text: Sneak down, ability: DEX, dc: 10}
          - {text: Kick the door, ability: STR, dc: 25}
      - text: A goblin attacks.
        scenery: cave
        enemy: {name: Goblin, hp: 10, ac: 11, damage: 1d6+1}
  - id: archive
    title: The Archive
    rewards: {xp: 40, coins: 20}
    scenes:
      - text: Dusty shelves.
        options:
          - {text: Read the labels, ability: INT, dc: 12}
      - text: A locked chest.
        options:
          - {text: Pick the lock, ability: DEX, dc: 12}
  - id: gauntlet
    title: The Gauntlet
    rewards: {xp: 500, coins: 5}
    scenes:
      - text: One.
        options: [{text: Step, ability: STR, dc: 5}]
      - text: Two.
        options: [{text: Step, ability: STR, dc: 5}]
      - text: Three.
        options: [{text: Step, ability: STR, dc: 5}]
      - text: Four.
        options: [{text: Step, ability: STR, dc: 5}]
      - text: The keeper.
        enemy: {name: Keeper, hp: 1, ac: 1}
  - id: ambush
    title: Ambush
    rewards: {xp: 10}
    scenes:
      - text: An ogre!
        enemy: {name: Ogre, hp: 30, ac: 30, damage: 10d10+100}
  - id: veteran
    title: Veterans Only
    min_level: 5
    scenes:
      - text: Nope.
        options: [{text: Try, ability: STR, dc: 5}]
daily:
  - id: daily_rats
    title: Rat Patrol
    rewards: {xp: 35, coins: 8}
    scenes:
      - text: A giant rat.
        enemy: {name: Giant Rat, hp: 1, ac: 1}
`

var testStart = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

type harness struct {
	eng    *Engine
	player *memory.Player
	clock  *FakeClock
	views  []View
}

type harnessOpt func(*testing.T, *harness)

func withProfile(p character.Profile) harnessOpt {
	return func(t *testing.T, h *harness) {
		require.NoError(t, h.player.SaveProfile(context.Background(), p))
	}
}

func withRolls(r dice.RollSource) harnessOpt {
	return func(_ *testing.T, h *harness) { h.eng.Rolls = r }
}

func withDice(faces ...int) harnessOpt {
	return func(_ *testing.T, h *harness) { h.eng.Dice = dice.NewScript(faces...) }
}

// newHarness builds an engine over the test catalog. Unless overridden,
// every d20 request resolves to roll.
func newHarness(t *testing.T, roll int, opts ...harnessOpt) *harness {
	t.Helper()
	lib, err := quest.Load(strings.NewReader(testCatalog))
	require.NoError(t, err)

	player := memory.New().ForPlayer("p1")
	h := &harness{player: player, clock: NewFakeClock(testStart)}
	h.eng = &Engine{
		Catalog:     quest.NewCatalog(lib, player, dice.NewSource(1)),
		Profiles:    player,
		Ledger:      player,
		Completions: player,
		Rolls:       dice.Immediate{Src: dice.NewScript(roll)},
		Dice:        dice.NewScript(1),
		Clock:       h.clock,
		Logger:      log.New(io.Discard, "", 0),
		Pause:       2 * time.Second,
		Sink:        SinkFunc(func(v View) { h.views = append(h.views, v) }),
	}
	for _, o := range opts {
		o(t, h)
	}
	return h
}

func (h *harness) start(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, h.eng.StartQuest(context.Background(), id))
}

func (h *harness) last() View {
	if len(h.views) == 0 {
		return View{}
	}
	return h.views[len(h.views)-1]
}

func (h *harness) ledger(t *testing.T) progression.Ledger {
	t.Helper()
	l, err := h.player.Ledger(context.Background())
	require.NoError(t, err)
	return l
}

func (h *harness) logContains(sub string) bool {
	s := h.eng.Session()
	if s == nil {
		return false
	}
	for _, line := range s.Log {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

// captureRolls keeps every callback so a test can resolve them out of order.
type captureRolls struct {
	fns []func(int)
}

func (c *captureRolls) RequestRoll(fn func(int)) { c.fns = append(c.fns, fn) }

var errDiskFull = errors.New("disk full")

// failingLedger refuses writes.
type failingLedger struct {
	LedgerStore
}

func (failingLedger) SaveLedger(context.Context, progression.Ledger) error { return errDiskFull }

// failingMark saves ledgers but cannot record completions. It offers no
// combined commit, so the engine writes each store in turn.
type failingMark struct {
	LedgerStore
	CompletionStore
}

func (failingMark) MarkCompleted(context.Context, string) error { return errDiskFull }

// failingCommit rejects the combined completion write.
type failingCommit struct {
	*memory.Player
}

func (failingCommit) CommitQuest(context.Context, progression.Ledger, string) error { return errDiskFull }
