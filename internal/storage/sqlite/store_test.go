package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskventure/internal/character"
	"taskventure/internal/progression"
	"taskventure/internal/quest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "taskventure.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskventure.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	var n int
	require.NoError(t, second.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestApplyMigrations_SkipsEmptyUp(t *testing.T) {
	store := openTestStore(t)
	fsys := fstest.MapFS{
		"900_noop.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\n\n-- +migrate Down\nDROP TABLE x;")},
	}
	require.NoError(t, applyMigrations(context.Background(), store.db, fsys))

	var n int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = '900_noop.sql'`).Scan(&n))
	assert.Zero(t, n)
}

func TestUpSection(t *testing.T) {
	assert.Equal(t, "\nCREATE TABLE a(x);\n", upSection("-- +migrate Up\nCREATE TABLE a(x);\n-- +migrate Down\nDROP TABLE a;"))
	assert.Equal(t, "CREATE TABLE b(x);", upSection("CREATE TABLE b(x);"))
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := openTestStore(t).ForPlayer("p1")

	_, ok, err := p.Profile(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := character.Profile{
		Name:   "Ash",
		Race:   "Halfling",
		Gender: "nonbinary",
		Class:  character.Rogue,
		Armor:  character.ArmorLeather,
		Scores: map[character.Ability]int{character.DEX: 16, character.CHA: 12},
	}
	require.NoError(t, p.SaveProfile(ctx, want))
	want.Name = "Ash the Quick"
	require.NoError(t, p.SaveProfile(ctx, want))

	got, ok, err := p.Profile(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := store.ForPlayer("p1")

	empty, err := p.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, progression.Ledger{}, empty)

	l, _ := progression.Ledger{}.Apply(progression.Award{XP: 120, Coins: 40, Items: []string{"Troll Tooth Charm", "Riddle Book"}, Source: "Troll Toll"})
	require.NoError(t, p.SaveLedger(ctx, l))

	got, err := p.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, l, got)

	l2, _ := got.Apply(progression.Award{XP: 5})
	l2.Cards = l2.Cards[:1]
	require.NoError(t, p.SaveLedger(ctx, l2))
	got, err = p.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 125, got.XP)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "Troll Tooth Charm", got.Cards[0].Name)

	other, err := store.ForPlayer("p2").Ledger(ctx)
	require.NoError(t, err)
	assert.Zero(t, other.XP)
}

func TestCompletedAndDaily(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := store.ForPlayer("p1")

	require.NoError(t, p.MarkCompleted(ctx, "goblin_cellar"))
	require.NoError(t, p.MarkCompleted(ctx, "goblin_cellar"))
	require.NoError(t, p.MarkCompleted(ctx, "lost_ledger"))

	done, err := p.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"goblin_cellar": true, "lost_ledger": true}, done)

	none, err := store.ForPlayer("p2").Completed(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, ok, err := p.Daily(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	m := quest.DailyMarker{Date: "2026-10-18", TemplateID: "daily_rats", QuestID: "daily_rats-1"}
	require.NoError(t, p.SetDaily(ctx, m))
	m.Date = "2026-10-19"
	m.QuestID = "daily_rats-2"
	require.NoError(t, p.SetDaily(ctx, m))

	got, ok, err := p.Daily(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, m, got)
}

func TestCommitQuest(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := store.ForPlayer("p1")

	l, _ := progression.Ledger{}.Apply(progression.Award{XP: 40, Coins: 20, Items: []string{"Brass Key"}, Source: "The Archive"})
	require.NoError(t, p.CommitQuest(ctx, l, "archive"))

	got, err := p.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, l, got)
	done, err := p.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"archive": true}, done)
}

func TestCommitQuest_RollsBackLedger(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	p := store.ForPlayer("p1")

	_, err := store.db.ExecContext(ctx, `DROP TABLE completed_quests`)
	require.NoError(t, err)

	l, _ := progression.Ledger{}.Apply(progression.Award{XP: 40, Items: []string{"Brass Key"}, Source: "The Archive"})
	require.Error(t, p.CommitQuest(ctx, l, "archive"))

	got, err := p.Ledger(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.XP)
	assert.Empty(t, got.Cards)
}
