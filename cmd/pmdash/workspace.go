package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/spf13/viper"
	"github.com/tgienger/pmdash/internal/config"
	"github.com/tgienger/pmdash/internal/db"
	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/logging"
	"github.com/tgienger/pmdash/internal/mockdata"
	"github.com/tgienger/pmdash/internal/models"
	"github.com/tgienger/pmdash/internal/store"
)

// workspace is the state shared by every command
type workspace struct {
	cfg    *config.Config
	logger *logging.Logger
	bus    *event.Bus
	store  *store.Store
	db     *db.DB // nil when storage is disabled
}

func openWorkspace(ctx context.Context, v *viper.Viper) (*workspace, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogDir(), cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.Logger)

	ws := &workspace{cfg: cfg, logger: logger, bus: event.NewBus(logger.Logger)}

	snap, err := ws.loadSnapshot(ctx)
	if err != nil {
		ws.Close()
		return nil, err
	}

	ws.store = store.New(snap, store.WithBus(ws.bus), store.WithLogger(logger.Logger))
	logger.Info("workspace opened",
		"projects", len(snap.Projects),
		"activities", len(snap.Activities),
		"storage", cfg.Storage.Enabled)
	return ws, nil
}

func (ws *workspace) loadSnapshot(ctx context.Context) (models.Snapshot, error) {
	if ws.cfg.Storage.Enabled {
		database, err := db.New(ws.cfg.DatabasePath())
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("open database: %w", err)
		}
		ws.db = database

		snap, err := database.LoadSnapshot(ctx)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, db.ErrNoSnapshot) {
			return models.Snapshot{}, fmt.Errorf("load workspace: %w", err)
		}
	}

	if !ws.cfg.Seed.Enabled {
		users := mockdata.Users()
		return models.Snapshot{CurrentUser: users[0], Users: users}, nil
	}

	seed := ws.cfg.Seed.RandomSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	ws.logger.Debug("seeding demo data", "seed", seed)
	return mockdata.Generate(rand.New(rand.NewPCG(seed, seed)), time.Now()), nil
}

// Save writes the store to the database when storage is enabled
func (ws *workspace) Save(ctx context.Context) error {
	if ws.db == nil {
		return nil
	}
	return ws.db.SaveSnapshot(ctx, ws.store.Snapshot())
}

func (ws *workspace) Close() {
	if ws.db != nil {
		if err := ws.db.Close(); err != nil {
			ws.logger.Error("close database", "error", err)
		}
	}
	_ = ws.logger.Close()
}
