package quest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"taskventure/internal/dice"
)

// dateLayout keys the daily quest to a calendar day.
const dateLayout = "2006-01-02"

// DailyMarker records which daily quest was generated on which day.
type DailyMarker struct {
	Date       string `json:"date"`
	TemplateID string `json:"templateId"`
	QuestID    string `json:"questId"`
}

// DailyStore persists the daily marker.
type DailyStore interface {
	Daily(ctx context.Context) (DailyMarker, bool, error)
	SetDaily(ctx context.Context, m DailyMarker) error
}

// Catalog filters templates for a player and manages the daily quest.
type Catalog struct {
	lib   *Library
	store DailyStore
	src   dice.Source
}

// NewCatalog builds a catalog over lib. src picks the daily template.
func NewCatalog(lib *Library, store DailyStore, src dice.Source) *Catalog {
	if lib == nil {
		lib = &Library{}
	}
	return &Catalog{lib: lib, store: store, src: src}
}

// Available lists the quests a player of level may start today, templates
// first in catalog order, then the daily quest.
func (c *Catalog) Available(ctx context.Context, level int, completed map[string]bool, today time.Time) ([]Definition, error) {
	out := make([]Definition, 0, len(c.lib.Quests)+1)
	for _, q := range c.lib.Quests {
		if q.MinLevel <= level && !completed[q.ID] {
			out = append(out, q)
		}
	}

	daily, ok, err := c.daily(ctx, today)
	if err != nil {
		return nil, err
	}
	if ok && !completed[daily.ID] {
		out = append(out, daily)
	}
	return out, nil
}

// Lookup resolves a template id or the id of the current daily quest.
func (c *Catalog) Lookup(ctx context.Context, id string) (Definition, bool, error) {
	for _, q := range c.lib.Quests {
		if q.ID == id {
			return q, true, nil
		}
	}
	if c.store == nil {
		return Definition{}, false, nil
	}
	m, ok, err := c.store.Daily(ctx)
	if err != nil {
		return Definition{}, false, fmt.Errorf("read daily marker: %w", err)
	}
	if !ok || m.QuestID != id {
		return Definition{}, false, nil
	}
	return c.dailyFromMarker(m)
}

// daily returns today's daily quest, generating it on the first call of a
// new calendar day.
func (c *Catalog) daily(ctx context.Context, today time.Time) (Definition, bool, error) {
	if len(c.lib.Daily) == 0 || c.store == nil {
		return Definition{}, false, nil
	}
	date := today.Format(dateLayout)

	m, ok, err := c.store.Daily(ctx)
	if err != nil {
		return Definition{}, false, fmt.Errorf("read daily marker: %w", err)
	}
	if ok && m.Date == date {
		if def, found, err := c.dailyFromMarker(m); err != nil || found {
			return def, found, err
		}
		// template vanished from the pool; pick again
	}

	tmpl := c.lib.Daily[c.src.Intn(len(c.lib.Daily))]
	m = DailyMarker{
		Date:       date,
		TemplateID: tmpl.ID,
		QuestID:    tmpl.ID + "-" + strconv.FormatInt(today.UnixMilli(), 10),
	}
	if err := c.store.SetDaily(ctx, m); err != nil {
		return Definition{}, false, fmt.Errorf("save daily marker: %w", err)
	}
	return c.dailyFromMarker(m)
}

func (c *Catalog) dailyFromMarker(m DailyMarker) (Definition, bool, error) {
	for _, tmpl := range c.lib.Daily {
		if tmpl.ID == m.TemplateID {
			def := tmpl
			def.ID = m.QuestID
			def.Daily = true
			return def, true, nil
		}
	}
	return Definition{}, false, nil
}
