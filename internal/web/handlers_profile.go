package web

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"taskventure/internal/character"
)

const (
	maxNameLen = 64
	minScore   = 3
	maxScore   = 20
)

func allowedClass(c character.Class) bool {
	for _, a := range allClasses {
		if a == c {
			return true
		}
	}
	return false
}

func allowedArmor(a character.Armor) bool {
	for _, x := range allArmors {
		if x == a {
			return true
		}
	}
	return false
}

func trimField(v string) string {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) > maxNameLen {
		v = string([]rune(v)[:maxNameLen])
	}
	return v
}

// GET /profile
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.getOrCreatePlay(ctx, w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	prof, _, err := p.Player.Profile(ctx)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	s.render(w, http.StatusOK, "layout.html", Page{Title: "Your adventurer", Hero: s.hero(ctx, p), Profile: profileViewModel(prof, "")})
}

// POST /profile
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
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

	prof, msg := parseProfile(r)
	if msg != "" {
		s.render(w, http.StatusBadRequest, "layout.html", Page{Title: "Your adventurer", Hero: s.hero(ctx, p), Profile: profileViewModel(prof, msg)})
		return
	}
	if p.Engine.Phase().IsActive() {
		s.render(w, http.StatusConflict, "layout.html", Page{
			Title:   "Your adventurer",
			Hero:    s.hero(ctx, p),
			Profile: profileViewModel(prof, "Finish or abandon your quest before changing your adventurer."),
		})
		return
	}
	if err := p.Player.SaveProfile(ctx, prof); err != nil {
		s.logger().Printf("save profile: %v", err)
		http.Error(w, "failed to save profile", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/quests", http.StatusSeeOther)
}

// parseProfile reads the form. A non-empty message means the input was
// rejected; the returned profile still carries what was entered.
func parseProfile(r *http.Request) (character.Profile, string) {
	prof := character.Profile{
		Name:   trimField(r.FormValue("name")),
		Race:   trimField(r.FormValue("race")),
		Gender: trimField(r.FormValue("gender")),
		Class:  character.Class(r.FormValue("class")),
		Armor:  character.Armor(r.FormValue("armor")),
		Scores: map[character.Ability]int{},
	}
	msg := ""
	if prof.Name == "" {
		msg = "Every adventurer needs a name."
	}
	if !allowedClass(prof.Class) {
		msg = "Pick a class from the list."
	}
	if !allowedArmor(prof.Armor) {
		msg = "Pick armor from the list."
	}
	for _, a := range allAbilities {
		raw := strings.TrimSpace(r.FormValue(string(a)))
		if raw == "" {
			prof.Scores[a] = character.DefaultScore
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < minScore || v > maxScore {
			msg = "Ability scores must be between 3 and 20."
			continue
		}
		prof.Scores[a] = v
	}
	return prof, msg
}
