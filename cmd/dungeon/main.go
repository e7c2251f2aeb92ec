// Package main provides the interactive dungeon explorer. It wires together
// configuration, content, the world generator, the turn engine and the
// configured snapshot store, then reads commands from standard input.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/bernardosulzbach/dungeon-sub001/internal/config"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/command"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/engine"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
	"github.com/bernardosulzbach/dungeon-sub001/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	loadName := flag.String("load", "", "name of a saved game to resume")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting dungeon",
		zap.Uint64("seed", cfg.World.Seed),
		zap.String("storage", cfg.Storage.Backend),
	)

	contentStart := time.Now()
	c, err := loadContent(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("presets", len(c.presets)),
		zap.Int("creatures", len(c.creatures.IDs())),
		zap.Int("items", len(c.items.IDs())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening snapshot store", zap.Error(err))
	}
	defer closeStore()

	w, err := world.New(cfg.World.World(), c.presets, c.deps(cfg.World.Seed, logger))
	if err != nil {
		logger.Fatal("creating world", zap.Error(err))
	}
	eng, err := engine.New(cfg.World.Engine(), w, world.Point{}, logger)
	if err != nil {
		logger.Fatal("creating engine", zap.Error(err))
	}

	restore := func(save engine.SaveGame) (*engine.Engine, error) {
		return engine.Load(save, cfg.World.Engine(), cfg.World.World(), c.presets, c.deps(cfg.World.Seed, logger))
	}
	interp := command.NewInterpreter(eng, store, restore, logger)

	logger.Info("dungeon ready", zap.Duration("startup", time.Since(start)))

	first := "look"
	if *loadName != "" {
		first = "load " + *loadName
	}
	if err := play(ctx, interp, first); err != nil {
		logger.Fatal("session error", zap.Error(err))
	}
	logger.Info("session ended",
		zap.Int64("elapsed_game_seconds", interp.Engine().World().Clock().Elapsed()),
	)
}

// play runs first, then one command per line of standard input until quit,
// end of input or cancellation.
func play(ctx context.Context, interp *command.Interpreter, first string) error {
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	line := first
	for {
		err := interp.Execute(ctx, line, out)
		if errors.Is(err, command.ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprint(out, "> ")
		if err := out.Flush(); err != nil {
			return err
		}

		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}
	}
}
