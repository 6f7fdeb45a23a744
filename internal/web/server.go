// Package web is the browser shell around the quest engine: one engine per
// cookie session, html/template pages and a PDF journal download.
package web

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"taskventure/internal/character"
	"taskventure/internal/dice"
	"taskventure/internal/game"
	"taskventure/internal/quest"
	"taskventure/internal/session"
)

// PlayerData is the per-player storage the engine and the profile page need.
type PlayerData interface {
	game.ProfileStore
	game.LedgerStore
	game.CompletionStore
	quest.DailyStore
	SaveProfile(ctx context.Context, p character.Profile) error
}

type Server struct {
	Library *quest.Library
	// Players scopes storage to one player id.
	Players  func(id string) PlayerData
	Sessions session.Store[*Play]
	Tmpl     *template.Template
	Dice     dice.Source
	// ManualRolls parks every roll until the browser posts /play/roll.
	ManualRolls bool
	Pause       time.Duration
	Clock       game.Clock
	Logger      *log.Logger
	// SceneryDir optionally holds <tag>.png backdrops that replace the
	// generated ones.
	SceneryDir string
}

// Play is one browser's engine. mu serializes every engine call, including
// deferred roll callbacks.
type Play struct {
	mu     sync.Mutex
	Engine *game.Engine
	Rolls  *dice.Deferred
	Player PlayerData
	last   game.View
}

const cookieName = "taskventure_sid"

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /quests", s.handleQuests)
	mux.HandleFunc("POST /quests/start", s.handleStartQuest)

	mux.HandleFunc("GET /profile", s.handleProfile)
	mux.HandleFunc("POST /profile", s.handleSaveProfile)

	mux.HandleFunc("GET /play", s.handlePlay)
	mux.HandleFunc("POST /play/choose", s.handleChoose)
	mux.HandleFunc("POST /play/advantage", s.handleAdvantage)
	mux.HandleFunc("POST /play/act", s.handleAct)
	mux.HandleFunc("POST /play/roll", s.handleRoll)
	mux.HandleFunc("POST /play/retreat", s.handleRetreat)
	mux.HandleFunc("POST /play/abandon", s.handleAbandon)
	mux.HandleFunc("POST /play/return", s.handleReturn)

	mux.HandleFunc("GET /journal.pdf", s.handleJournal)
	mux.HandleFunc("GET /scenery/{tag}", s.handleScenery)
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticHandler()))
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/quests", http.StatusFound)
}

// getOrCreatePlay returns the caller's engine, issuing a session cookie on
// the first visit.
func (s *Server) getOrCreatePlay(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Play, error) {
	id := s.sessionID(r)
	if id == "" {
		id = s.Sessions.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	var play *Play
	err := s.Sessions.Update(ctx, id, func(cur *Play, ok bool) (*Play, error) {
		if !ok || cur == nil {
			cur = s.newPlay(id)
		}
		play = cur
		return cur, nil
	})
	if err != nil {
		return nil, err
	}
	return play, nil
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) newPlay(id string) *Play {
	player := s.Players(id)
	p := &Play{Player: player}

	src := s.dice()
	var rolls dice.RollSource = dice.Immediate{Src: src}
	if s.ManualRolls {
		p.Rolls = &dice.Deferred{}
		rolls = p.Rolls
	}
	p.Engine = &game.Engine{
		Catalog:     quest.NewCatalog(s.Library, player, src),
		Profiles:    player,
		Ledger:      player,
		Completions: player,
		Rolls:       rolls,
		Dice:        src,
		Clock:       s.Clock,
		Logger:      s.Logger,
		Pause:       s.Pause,
		Sink:        game.SinkFunc(func(v game.View) { p.last = v }),
	}
	s.logger().Printf("new player session %s", id)
	return p
}

func (s *Server) dice() dice.Source {
	if s.Dice != nil {
		return s.Dice
	}
	seed, err := dice.NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	s.Dice = dice.NewSource(seed)
	return s.Dice
}

func (s *Server) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrOutOfRange), errors.Is(err, dice.ErrRollOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrUnknownReference):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidTransition), errors.Is(err, game.ErrRollPending), errors.Is(err, dice.ErrNoPendingRoll):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.Tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger().Printf("render %s: %v", name, err)
	}
}
