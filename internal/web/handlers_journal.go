package web

import (
	"fmt"
	"net/http"

	"taskventure/internal/journal"
)

// GET /journal.pdf renders the last finished quest.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.sessionID(r) == "" {
		http.Redirect(w, r, "/quests", http.StatusFound)
		return
	}
	p, err := s.getOrCreatePlay(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	p.mu.Lock()
	rec, ok := p.Engine.LastRecord()
	p.mu.Unlock()
	if !ok {
		http.Error(w, "no finished quest yet", http.StatusNotFound)
		return
	}

	hero := ""
	if prof, found, err := p.Player.Profile(ctx); err == nil && found {
		hero = prof.Name
	}
	pdf, err := journal.Generate(rec, hero)
	if err != nil {
		s.logger().Printf("journal %s: %v", rec.QuestID, err)
		http.Error(w, "failed to render journal", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="journal-%s.pdf"`, rec.QuestID))
	if _, err := w.Write(pdf); err != nil {
		s.logger().Printf("write journal: %v", err)
	}
}
