// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"wordcats/internal/cache"
	"wordcats/internal/config"
	"wordcats/internal/database"
	"wordcats/internal/game"
	"wordcats/internal/index"
	"wordcats/internal/janitor"
	"wordcats/internal/platform"
	"wordcats/internal/store"
	"wordcats/internal/txn"
)

// devPlayers are registered on the memory backend so the API can be used
// without a database.
var devPlayers = [][2]string{
	{"t2_dev_alice", "alice"},
	{"t2_dev_bob", "bob"},
	{"t2_dev_carol", "carol"},
}

// app holds the wired services shared by the subcommands.
type app struct {
	cfg      *config.Config
	valkey   *redis.Client
	db       *sql.DB
	identity platform.Identity
	content  platform.Content
	game     *game.Service
	janitor  *janitor.Janitor
}

// newApp loads configuration and connects every backend.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	setupLogger(verbose, cfg.Env == "production")
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "platform", cfg.PlatformBackend)

	a := &app{cfg: cfg}
	if err := a.connectPlatform(); err != nil {
		return nil, err
	}

	a.valkey, err = cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to valkey: %w", err)
	}

	keys := store.NewKeys(cfg.ValkeyPrefix)
	st := store.New(a.valkey, keys)
	idx := index.NewMaintainer(a.valkey, keys)
	coord := txn.New(a.valkey, st)

	a.game = game.New(coord, st, idx, a.identity, a.content, game.Options{
		MaxCategoriesPerUser: cfg.MaxCategoriesPerUser,
	})
	a.janitor = janitor.New(coord, st, idx, a.identity, a.content, janitor.Options{
		PageSize:          int64(cfg.JanitorPageSize),
		LookupConcurrency: cfg.JanitorLookupConcurrency,
	})
	return a, nil
}

func (a *app) connectPlatform() error {
	if a.cfg.PlatformBackend == config.BackendMemory {
		mem := platform.NewMemory()
		for _, p := range devPlayers {
			mem.AddUser(p[0], p[1])
		}
		slog.Warn("using in-memory host platform, accounts and posts are not persisted")
		a.identity, a.content = mem, mem
		return nil
	}

	db, err := database.Connect(a.cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	if a.cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			db.Close()
			return fmt.Errorf("seed database: %w", err)
		}
	}
	a.db = db
	pg := platform.NewPostgres(db)
	a.identity, a.content = pg, pg
	return nil
}

// Close releases every connection opened by newApp.
func (a *app) Close() {
	if a.valkey != nil {
		a.valkey.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
