package web

import (
	"context"
	"net/http"
	"strings"

	"taskventure/internal/progression"
)

// hero builds the sidebar. Storage errors degrade to an empty sidebar.
func (s *Server) hero(ctx context.Context, p *Play) HeroView {
	hv := HeroView{Level: 1}
	hv.HP, hv.MaxHP = p.Engine.PlayerHP()
	if prof, ok, err := p.Player.Profile(ctx); err == nil && ok {
		hv.Name = prof.Name
		hv.Class = prof.Class
	}
	led, err := p.Player.Ledger(ctx)
	if err != nil {
		s.logger().Printf("sidebar ledger: %v", err)
		return hv
	}
	led = led.Normalize()
	hv.Level = led.Level
	hv.XP = led.XP
	hv.Coins = led.Coins
	hv.Cards = len(led.Cards)
	if led.Level < progression.MaxLevel {
		hv.NextXP = progression.XPForLevel(led.Level + 1)
	}
	return hv
}

// GET /quests
func (s *Server) handleQuests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.getOrCreatePlay(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Engine.Phase().IsActive() || p.Engine.Phase().IsTerminal() {
		http.Redirect(w, r, "/play", http.StatusSeeOther)
		return
	}
	s.renderQuests(ctx, w, p, http.StatusOK, "")
}

func (s *Server) renderQuests(ctx context.Context, w http.ResponseWriter, p *Play, status int, msg string) {
	avail, err := p.Engine.Available(ctx)
	if err != nil {
		s.logger().Printf("list quests: %v", err)
		http.Error(w, "failed to list quests", http.StatusInternalServerError)
		return
	}
	vm := &QuestsViewModel{Message: msg}
	for _, d := range avail {
		vm.Quests = append(vm.Quests, questOption(d))
	}
	if led, err := p.Player.Ledger(ctx); err == nil {
		vm.Cards = led.Cards
	}
	_, vm.HasJournal = p.Engine.LastRecord()

	w.Header().Set("Cache-Control", "no-store")
	s.render(w, status, "layout.html", Page{Title: "Quest board", Hero: s.hero(ctx, p), Quests: vm})
}

// POST /quests/start
func (s *Server) handleStartQuest(w http.ResponseWriter, r *http.Request) {
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

	id := strings.TrimSpace(r.FormValue("quest_id"))
	if err := p.Engine.StartQuest(ctx, id); err != nil {
		msg := p.Engine.View().Message
		if msg == "" {
			msg = err.Error()
		}
		s.renderQuests(ctx, w, p, statusFor(err), msg)
		return
	}
	s.afterAction(ctx, w, r, p)
}
