package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/calendar"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/engine"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
	"github.com/bernardosulzbach/dungeon-sub001/internal/storage/snapshot"
)

// ErrQuit is returned by Execute when the player leaves the game.
var ErrQuit = errors.New("quit")

var errNoStore = errors.New("saving is not configured")

// usageError reports a command invoked with bad arguments.
type usageError struct {
	cmd *Command
}

func (u usageError) Error() string {
	return strings.TrimSpace("usage: " + u.cmd.Name + " " + u.cmd.Usage)
}

// RestoreFunc rebuilds an engine from a saved game.
type RestoreFunc func(save engine.SaveGame) (*engine.Engine, error)

// Interpreter runs text commands against an Engine.
//
// Invariant: eng is never nil.
type Interpreter struct {
	mu       sync.Mutex
	registry *Registry
	eng      *engine.Engine
	store    snapshot.Store
	restore  RestoreFunc
	logger   *zap.Logger
}

// NewInterpreter creates an Interpreter over eng using the default registry.
//
// Precondition: eng must be non-nil. store and restore may be nil, which
// disables save and load.
func NewInterpreter(eng *engine.Engine, store snapshot.Store, restore RestoreFunc, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		registry: DefaultRegistry(),
		eng:      eng,
		store:    store,
		restore:  restore,
		logger:   logger,
	}
}

// Engine returns the engine currently being played; it changes after a load.
func (in *Interpreter) Engine() *engine.Engine {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.eng
}

// Execute parses line, runs the command and writes the response to w.
// Player mistakes are reported on w, not returned.
//
// Postcondition: Returns ErrQuit for the quit command, a write error if w
// fails, and nil otherwise.
func (in *Interpreter) Execute(ctx context.Context, line string, w io.Writer) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	res := Parse(line)
	if res.Verb == "" {
		return nil
	}
	cmd, ok := in.registry.Resolve(res.Verb)
	if !ok {
		_, err := fmt.Fprintf(w, "Unknown command %q. Type help for a list.\n", res.Verb)
		return err
	}

	out, err := in.dispatch(ctx, cmd, res)
	if errors.Is(err, ErrQuit) {
		_, _ = fmt.Fprintln(w, "Farewell.")
		return ErrQuit
	}
	if err != nil {
		in.logger.Debug("command failed",
			zap.String("command", cmd.Name),
			zap.Strings("args", res.Args),
			zap.Error(err),
		)
		out = describeError(err) + "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}

func (in *Interpreter) dispatch(ctx context.Context, cmd *Command, res Input) (string, error) {
	switch cmd.Handler {
	case HandlerMove:
		return in.handleMove(cmd, res)
	case HandlerLook:
		return describeLocation(in.eng.Look(), in.eng.World()), nil
	case HandlerExamine:
		return in.handleExamine(cmd, res)
	case HandlerAttack:
		return in.handleAttack(cmd, res)
	case HandlerWait:
		return in.handleWait(cmd, res)
	case HandlerTime:
		return describeTime(in.eng.World()), nil
	case HandlerChunk:
		return in.handleChunk(cmd, res)
	case HandlerStats:
		s := in.eng.World().Stats()
		return fmt.Sprintf("Chunk side: %d\nChunk size: %d\nGenerated locations: %d\nRiver lines: %d\n",
			s.ChunkSide, s.ChunkSize, s.GeneratedLocations, s.RiverLines), nil
	case HandlerSpawns:
		report := in.eng.World().SpawnReport()
		if report == "" {
			return "Nothing has spawned yet.\n", nil
		}
		return report, nil
	case HandlerSave:
		return in.handleSave(ctx, cmd, res)
	case HandlerLoad:
		return in.handleLoad(ctx, cmd, res)
	case HandlerSaves:
		return in.handleSaves(ctx)
	case HandlerHelp:
		return in.registry.HelpText(), nil
	case HandlerQuit:
		return "", ErrQuit
	default:
		return "", fmt.Errorf("no handler for %q", cmd.Handler)
	}
}

func (in *Interpreter) handleMove(cmd *Command, res Input) (string, error) {
	dir, ok := world.ParseDirection(cmd.Name)
	if !ok {
		if len(res.Args) != 1 || res.Direction == "" {
			return "", usageError{cmd}
		}
		dir = res.Direction
	}
	loc, err := in.eng.Move(dir)
	if err != nil {
		return "", err
	}
	return describeLocation(loc, in.eng.World()), nil
}

func (in *Interpreter) handleExamine(cmd *Command, res Input) (string, error) {
	if res.Target == "" {
		return "", usageError{cmd}
	}
	loc := in.eng.Look()
	if c, ok := loc.FindCreature(res.Target); ok {
		return fmt.Sprintf("%s: %s\nIt is %s (level %d, %d/%d HP).\n",
			c.Name, c.Description, c.HealthDescription(), c.Level, c.CurrentHP, c.MaxHP), nil
	}
	if it, ok := loc.FindItem(res.Target); ok {
		return fmt.Sprintf("%s: %s\nA %s item weighing %.1f.\n", it.Name, it.Description, it.Kind, it.Weight), nil
	}
	return fmt.Sprintf("You see no %s here.\n", res.Target), nil
}

func (in *Interpreter) handleAttack(cmd *Command, res Input) (string, error) {
	if res.Target == "" {
		return "", usageError{cmd}
	}
	r, err := in.eng.Attack(res.Target)
	if err != nil {
		return "", err
	}
	if r.Killed {
		return fmt.Sprintf("You kill the %s.\n", r.Target.Name), nil
	}
	return fmt.Sprintf("You hit the %s for %d damage. It is %s.\n", r.Target.Name, r.Damage, r.Target.HealthDescription()), nil
}

func (in *Interpreter) handleWait(cmd *Command, res Input) (string, error) {
	seconds := in.eng.Config().TurnSeconds
	if len(res.Args) > 1 {
		return "", usageError{cmd}
	}
	if len(res.Args) == 1 {
		var err error
		seconds, err = parseSeconds(res.Args[0])
		if err != nil {
			return "", usageError{cmd}
		}
	}
	if err := in.eng.Wait(seconds); err != nil {
		return "", err
	}
	return "Time passes.\n" + describeTime(in.eng.World()), nil
}

// parseSeconds accepts a plain number of seconds or a Go duration such as "2h".
func parseSeconds(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return int64(d / time.Second), nil
}

func (in *Interpreter) handleChunk(cmd *Command, res Input) (string, error) {
	switch len(res.Args) {
	case 0:
		return fmt.Sprintf("Chunk side is %d.\n", in.eng.World().ChunkSide()), nil
	case 1:
		n, err := strconv.Atoi(res.Args[0])
		if err != nil {
			return "", usageError{cmd}
		}
		return fmt.Sprintf("Chunk side set to %d.\n", in.eng.SetChunkSide(n)), nil
	default:
		return "", usageError{cmd}
	}
}

func (in *Interpreter) handleSave(ctx context.Context, cmd *Command, res Input) (string, error) {
	if len(res.Args) != 1 {
		return "", usageError{cmd}
	}
	if in.store == nil {
		return "", errNoStore
	}
	name := res.Args[0]
	if err := snapshot.SaveValue(ctx, in.store, name, in.eng.Save()); err != nil {
		return "", err
	}
	in.logger.Info("game saved", zap.String("name", name))
	return fmt.Sprintf("Saved as %q.\n", name), nil
}

func (in *Interpreter) handleLoad(ctx context.Context, cmd *Command, res Input) (string, error) {
	if len(res.Args) != 1 {
		return "", usageError{cmd}
	}
	if in.store == nil || in.restore == nil {
		return "", errNoStore
	}
	name := res.Args[0]
	var save engine.SaveGame
	if err := snapshot.LoadValue(ctx, in.store, name, &save); err != nil {
		return "", err
	}
	eng, err := in.restore(save)
	if err != nil {
		return "", err
	}
	in.eng = eng
	in.logger.Info("game loaded", zap.String("name", name))
	return fmt.Sprintf("Loaded %q.\n", name) + describeLocation(eng.Look(), eng.World()), nil
}

func (in *Interpreter) handleSaves(ctx context.Context) (string, error) {
	if in.store == nil {
		return "", errNoStore
	}
	names, err := in.store.List(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "No saved games.\n", nil
	}
	return "Saved games: " + strings.Join(names, ", ") + "\n", nil
}

func describeError(err error) string {
	var usage usageError
	switch {
	case errors.As(err, &usage):
		return strings.ToUpper(usage.Error()[:1]) + usage.Error()[1:]
	case errors.Is(err, engine.ErrBlocked):
		return "The river is too deep to cross here. Look for a bridge."
	case errors.Is(err, engine.ErrNoTarget):
		return "There is no such creature here."
	case errors.Is(err, snapshot.ErrNotFound):
		return "There is no saved game by that name."
	case errors.Is(err, snapshot.ErrInvalidName):
		return "Save names may only use letters, digits, '-' and '_'."
	case errors.Is(err, calendar.ErrClockOverflow):
		return "Time cannot pass any further in this world."
	default:
		return "You can't do that: " + err.Error()
	}
}

func describeLocation(loc *world.Location, w *world.World) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", loc.Name(), loc.Point())
	if d := loc.Description(); d != "" {
		b.WriteString(d + "\n")
	}
	fmt.Fprintf(&b, "It is %s. The light here is %.0f%%.\n", w.Clock().PartOfDay(), loc.Luminosity()*100)

	if cs := loc.Creatures(); len(cs) > 0 {
		names := make([]string, len(cs))
		for i, c := range cs {
			names[i] = fmt.Sprintf("%s (%s)", c.Name, c.HealthDescription())
		}
		b.WriteString("Creatures: " + strings.Join(names, ", ") + ".\n")
	}
	if items := loc.Items(); len(items) > 0 {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = it.Name
		}
		b.WriteString("Items: " + strings.Join(names, ", ") + ".\n")
	}
	return b.String()
}

func describeTime(w *world.World) string {
	c := w.Clock()
	return fmt.Sprintf("It is %s, %s.\n", c.Now().Format("2006-01-02 15:04"), c.PartOfDay())
}
