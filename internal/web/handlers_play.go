package web

import (
	"context"
	"net/http"
	"strconv"

	"taskventure/internal/character"
	"taskventure/internal/game"
)

func (s *Server) playPage(ctx context.Context, p *Play) Page {
	v := p.Engine.View()
	vm := &PlayViewModel{
		View:     v,
		Manual:   p.Rolls != nil,
		Terminal: v.Phase.IsTerminal(),
	}
	_, vm.HasJournal = p.Engine.LastRecord()
	if v.Rewards != nil {
		vm.RewardText = v.Rewards.Text()
	}
	if v.Combat != nil {
		vm.Spells = v.Combat.Spells
	}
	if p.last.Phase == v.Phase {
		vm.PauseMS = p.last.Pause.Milliseconds()
	}
	title := v.QuestTitle
	if title == "" {
		title = "Adventure"
	}
	return Page{Title: title, Hero: s.hero(ctx, p), Play: vm}
}

// GET /play
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.getOrCreatePlay(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Engine.Phase() == game.PhaseIdle {
		http.Redirect(w, r, "/quests", http.StatusSeeOther)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.render(w, http.StatusOK, "layout.html", s.playPage(ctx, p))
}

// afterAction answers a successful POST: the game fragment for htmx, a
// redirect otherwise.
func (s *Server) afterAction(ctx context.Context, w http.ResponseWriter, r *http.Request, p *Play) {
	if p.Engine.Phase() == game.PhaseIdle {
		if isHTMX(r) {
			w.Header().Set("HX-Redirect", "/quests")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/quests", http.StatusSeeOther)
		return
	}
	if isHTMX(r) {
		s.render(w, http.StatusOK, "game.html", s.playPage(ctx, p).Play)
		return
	}
	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

// playAction runs fn against the caller's engine under its lock.
func (s *Server) playAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, p *Play) error) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	p, err := s.getOrCreatePlay(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := fn(ctx, p); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger().Printf("play action %s: %v", r.URL.Path, err)
		}
		if p.Engine.Phase() == game.PhaseIdle {
			http.Error(w, err.Error(), status)
			return
		}
		page := s.playPage(ctx, p)
		if page.Play.View.Message == "" {
			page.Play.View.Message = err.Error()
		}
		if isHTMX(r) {
			s.render(w, status, "game.html", page.Play)
			return
		}
		s.render(w, status, "layout.html", page)
		return
	}
	s.afterAction(ctx, w, r, p)
}

func formInt(r *http.Request, key string) (int, error) {
	v, err := strconv.Atoi(r.FormValue(key))
	if err != nil {
		return 0, game.ErrOutOfRange
	}
	return v, nil
}

// POST /play/choose
func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	s.playAction(w, r, func(ctx context.Context, p *Play) error {
		i, err := formInt(r, "index")
		if err != nil {
			return err
		}
		return p.Engine.Choose(ctx, i)
	})
}

// POST /play/advantage
func (s *Server) handleAdvantage(w http.ResponseWriter, r *http.Request) {
	s.playAction(w, r, func(ctx context.Context, p *Play) error {
		return p.Engine.Advantage(ctx, r.FormValue("action"))
	})
}

// POST /play/act
func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	s.playAction(w, r, func(ctx context.Context, p *Play) error {
		return p.Engine.Act(ctx, game.Command{
			Action: game.Action(r.FormValue("action")),
			Spell:  r.FormValue("spell"),
		})
	})
}

// POST /play/roll delivers the die the browser animated.
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	s.playAction(w, r, func(_ context.Context, p *Play) error {
		if p.Rolls == nil {
			return game.ErrInvalidTransition
		}
		v, err := formInt(r, "value")
		if err != nil {
			return err
		}
		return p.Rolls.Resolve(v)
	})
}

// POST /play/retreat
func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	s.playAction(w, r, func(ctx context.Context, p *Play) error {
		return p.Engine.Retreat(ctx)
	})
}

// POST /play/abandon
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	s.playAction(w, r, func(ctx context.Context, p *Play) error {
		return p.Engine.Abandon(ctx)
	})
}

// POST /play/return
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	s.playAction(w, r, func(_ context.Context, p *Play) error {
		return p.Engine.ReturnToList()
	})
}

// spellLabel is used by the templates.
func spellLabel(sp character.Spell) string {
	if sp.AutoHit {
		return sp.Name + " (" + sp.Damage.String() + ", never misses)"
	}
	if sp.Save != "" {
		return sp.Name + " (" + sp.Damage.String() + ", " + string(sp.Save) + " save)"
	}
	return sp.Name + " (" + sp.Damage.String() + ")"
}
