// Package sqlite persists player state in a SQLite database through the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskventure/internal/character"
	"taskventure/internal/progression"
	"taskventure/internal/quest"
	"taskventure/internal/storage/sqlite/migrations"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens and migrates the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ForPlayer returns a view of the store scoped to one player id.
func (s *Store) ForPlayer(id string) *Player {
	return &Player{s: s, id: id}
}

type Player struct {
	s  *Store
	id string
}

func (p *Player) ID() string { return p.id }

func (p *Player) Profile(ctx context.Context) (character.Profile, bool, error) {
	row := p.s.db.QueryRowContext(ctx,
		`SELECT name, race, gender, class, armor, scores_json FROM profiles WHERE player_id = ?`, p.id)
	var prof character.Profile
	var class, armor, scores string
	if err := row.Scan(&prof.Name, &prof.Race, &prof.Gender, &class, &armor, &scores); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return character.Profile{}, false, nil
		}
		return character.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}
	prof.Class = character.Class(class)
	prof.Armor = character.Armor(armor)
	if err := json.Unmarshal([]byte(scores), &prof.Scores); err != nil {
		return character.Profile{}, false, fmt.Errorf("decode profile scores: %w", err)
	}
	return prof, true, nil
}

func (p *Player) SaveProfile(ctx context.Context, prof character.Profile) error {
	scores, err := json.Marshal(prof.Scores)
	if err != nil {
		return fmt.Errorf("encode profile scores: %w", err)
	}
	_, err = p.s.db.ExecContext(ctx,
		`INSERT INTO profiles (player_id, name, race, gender, class, armor, scores_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
		    name = excluded.name,
		    race = excluded.race,
		    gender = excluded.gender,
		    class = excluded.class,
		    armor = excluded.armor,
		    scores_json = excluded.scores_json`,
		p.id, prof.Name, prof.Race, prof.Gender, string(prof.Class), string(prof.Armor), string(scores),
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// Ledger reads the ledger and its cards in one transaction. A player with
// no row reads as the zero ledger.
func (p *Player) Ledger(ctx context.Context) (progression.Ledger, error) {
	tx, err := p.s.db.BeginTx(ctx, nil)
	if err != nil {
		return progression.Ledger{}, fmt.Errorf("begin ledger read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var l progression.Ledger
	var inv, items string
	err = tx.QueryRowContext(ctx,
		`SELECT xp, coins, level, inventory_json, quest_items_json FROM ledgers WHERE player_id = ?`, p.id,
	).Scan(&l.XP, &l.Coins, &l.Level, &inv, &items)
	if errors.Is(err, sql.ErrNoRows) {
		return progression.Ledger{}, nil
	}
	if err != nil {
		return progression.Ledger{}, fmt.Errorf("get ledger: %w", err)
	}
	if err := json.Unmarshal([]byte(inv), &l.Inventory); err != nil {
		return progression.Ledger{}, fmt.Errorf("decode inventory: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &l.QuestItems); err != nil {
		return progression.Ledger{}, fmt.Errorf("decode quest items: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT card_id, name, rarity, effect FROM cards WHERE player_id = ? ORDER BY seq`, p.id)
	if err != nil {
		return progression.Ledger{}, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c progression.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.Rarity, &c.Effect); err != nil {
			return progression.Ledger{}, fmt.Errorf("scan card: %w", err)
		}
		l.Cards = append(l.Cards, c)
	}
	if err := rows.Err(); err != nil {
		return progression.Ledger{}, fmt.Errorf("list cards: %w", err)
	}
	return l, nil
}

// SaveLedger replaces the ledger and its cards atomically.
func (p *Player) SaveLedger(ctx context.Context, l progression.Ledger) error {
	tx, err := p.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := p.writeLedger(ctx, tx, l); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}
	return nil
}

// CommitQuest stores the rewarded ledger and the completed quest id in one
// transaction.
func (p *Player) CommitQuest(ctx context.Context, l progression.Ledger, questID string) error {
	tx, err := p.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin quest commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := p.writeLedger(ctx, tx, l); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO completed_quests (player_id, quest_id, completed_at) VALUES (?, ?, ?)`,
		p.id, questID, p.s.now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("mark quest completed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit quest: %w", err)
	}
	return nil
}

func (p *Player) writeLedger(ctx context.Context, tx *sql.Tx, l progression.Ledger) error {
	inv, err := json.Marshal(nonNil(l.Inventory))
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	items, err := json.Marshal(nonNil(l.QuestItems))
	if err != nil {
		return fmt.Errorf("encode quest items: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledgers (player_id, xp, coins, level, inventory_json, quest_items_json)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
		    xp = excluded.xp,
		    coins = excluded.coins,
		    level = excluded.level,
		    inventory_json = excluded.inventory_json,
		    quest_items_json = excluded.quest_items_json`,
		p.id, l.XP, l.Coins, l.Level, string(inv), string(items),
	); err != nil {
		return fmt.Errorf("put ledger: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE player_id = ?`, p.id); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}
	for i, c := range l.Cards {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (player_id, seq, card_id, name, rarity, effect) VALUES (?, ?, ?, ?, ?, ?)`,
			p.id, i, c.ID, c.Name, c.Rarity, c.Effect,
		); err != nil {
			return fmt.Errorf("put card %s: %w", c.ID, err)
		}
	}
	return nil
}

func (p *Player) Completed(ctx context.Context) (map[string]bool, error) {
	rows, err := p.s.db.QueryContext(ctx, `SELECT quest_id FROM completed_quests WHERE player_id = ?`, p.id)
	if err != nil {
		return nil, fmt.Errorf("list completed quests: %w", err)
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan completed quest: %w", err)
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list completed quests: %w", err)
	}
	return out, nil
}

func (p *Player) MarkCompleted(ctx context.Context, questID string) error {
	_, err := p.s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO completed_quests (player_id, quest_id, completed_at) VALUES (?, ?, ?)`,
		p.id, questID, p.s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("mark quest completed: %w", err)
	}
	return nil
}

func (p *Player) Daily(ctx context.Context) (quest.DailyMarker, bool, error) {
	var m quest.DailyMarker
	err := p.s.db.QueryRowContext(ctx,
		`SELECT date, template_id, quest_id FROM daily_markers WHERE player_id = ?`, p.id,
	).Scan(&m.Date, &m.TemplateID, &m.QuestID)
	if errors.Is(err, sql.ErrNoRows) {
		return quest.DailyMarker{}, false, nil
	}
	if err != nil {
		return quest.DailyMarker{}, false, fmt.Errorf("get daily marker: %w", err)
	}
	return m, true, nil
}

func (p *Player) SetDaily(ctx context.Context, m quest.DailyMarker) error {
	_, err := p.s.db.ExecContext(ctx,
		`INSERT INTO daily_markers (player_id, date, template_id, quest_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
		    date = excluded.date,
		    template_id = excluded.template_id,
		    quest_id = excluded.quest_id`,
		p.id, m.Date, m.TemplateID, m.QuestID,
	)
	if err != nil {
		return fmt.Errorf("put daily marker: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
