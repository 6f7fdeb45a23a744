package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"taskventure/internal/config"
	"taskventure/internal/dice"
	"taskventure/internal/game"
	"taskventure/internal/quest"
	"taskventure/internal/session"
	"taskventure/internal/storage/memory"
	"taskventure/internal/storage/sqlite"
	"taskventure/internal/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "taskventure ", log.LstdFlags)

	lib, err := loadLibrary(cfg.CatalogPath)
	if err != nil {
		return err
	}

	tmpl, err := web.ParseTemplates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	srv := &web.Server{
		Library:     lib,
		Sessions:    session.NewMemoryStore[*web.Play](),
		Tmpl:        tmpl,
		ManualRolls: cfg.RollMode == config.RollManual,
		Pause:       cfg.DisplayDelay,
		Clock:       game.RealClock{},
		Logger:      logger,
		SceneryDir:  cfg.SceneryDir,
	}
	if cfg.Seed != 0 {
		srv.Dice = dice.NewSource(cfg.Seed)
	}

	switch cfg.Store {
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer store.Close()
		srv.Players = func(id string) web.PlayerData { return store.ForPlayer(id) }
	default:
		store := memory.New()
		srv.Players = func(id string) web.PlayerData { return store.ForPlayer(id) }
	}

	logger.Printf("%d quests and %d daily quests loaded; %s store", len(lib.Quests), len(lib.Daily), cfg.Store)
	logger.Printf("listening on %s", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.Routes())
}

func loadLibrary(path string) (*quest.Library, error) {
	if path == "" {
		return quest.DefaultLibrary()
	}
	return quest.LoadFile(path)
}
