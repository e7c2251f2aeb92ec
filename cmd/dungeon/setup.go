package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bernardosulzbach/dungeon-sub001/internal/config"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/item"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/npc"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
	"github.com/bernardosulzbach/dungeon-sub001/internal/storage/postgres"
	"github.com/bernardosulzbach/dungeon-sub001/internal/storage/snapshot"
	"github.com/bernardosulzbach/dungeon-sub001/internal/storage/sqlite"
)

// content is everything loaded from the YAML content directories.
type content struct {
	presets   []*world.Preset
	creatures *npc.Registry
	items     *item.Registry
}

// loadContent reads presets, creature templates and item definitions and
// checks that every preset reference resolves.
//
// Postcondition: Returns fully cross-checked content or a non-nil error.
func loadContent(cfg config.ContentConfig) (*content, error) {
	templates, err := npc.LoadTemplates(cfg.CreaturesDir)
	if err != nil {
		return nil, fmt.Errorf("loading creature templates: %w", err)
	}
	creatures, err := npc.NewRegistry(templates...)
	if err != nil {
		return nil, fmt.Errorf("registering creature templates: %w", err)
	}

	defs, err := item.LoadItems(cfg.ItemsDir)
	if err != nil {
		return nil, fmt.Errorf("loading item definitions: %w", err)
	}
	items, err := item.NewRegistry(defs...)
	if err != nil {
		return nil, fmt.Errorf("registering item definitions: %w", err)
	}

	presets, err := world.LoadPresetsFromDir(cfg.LocationsDir)
	if err != nil {
		return nil, fmt.Errorf("loading location presets: %w", err)
	}
	if err := world.CheckReferences(presets, creatures.IDs(), items.IDs()); err != nil {
		return nil, err
	}
	return &content{presets: presets, creatures: creatures, items: items}, nil
}

// deps builds world dependencies over c with a fresh random source.
func (c *content) deps(seed uint64, logger *zap.Logger) world.Deps {
	return world.Deps{
		Source:    newSource(seed, logger),
		Creatures: c.creatures,
		Items:     c.items,
		Logger:    logger,
	}
}

// newSource returns the crypto source for seed 0 and a logged PCG source otherwise.
func newSource(seed uint64, logger *zap.Logger) dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewLoggedSource(dice.NewSeededSource(seed), logger.Named("dice"))
}

// openStore opens the configured snapshot backend. The returned closer
// releases it and is never nil.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (snapshot.Store, func(), error) {
	start := time.Now()
	switch cfg.Storage.Backend {
	case config.BackendFile:
		s, err := snapshot.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("file store ready", zap.String("dir", cfg.Storage.Dir))
		return s, func() {}, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite store ready",
			zap.String("path", cfg.Storage.SQLitePath),
			zap.Duration("elapsed", time.Since(start)),
		)
		return s, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		pool, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ready(ctx, 5*time.Second); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(start)),
		)
		return pool.Snapshots(), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
