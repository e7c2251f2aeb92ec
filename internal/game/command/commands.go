// Package command provides the command registry, parser, built-in command
// definitions and the interpreter that runs them against the engine.
package command

// Categories for organizing commands.
const (
	CategoryMovement = "movement"
	CategoryWorld    = "world"
	CategoryCombat   = "combat"
	CategoryStorage  = "storage"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to interpreter handlers.
const (
	HandlerMove    = "move"
	HandlerLook    = "look"
	HandlerExamine = "examine"
	HandlerAttack  = "attack"
	HandlerWait    = "wait"
	HandlerTime    = "time"
	HandlerChunk   = "chunk"
	HandlerStats   = "stats"
	HandlerSpawns  = "spawns"
	HandlerSave    = "save"
	HandlerLoad    = "load"
	HandlerSaves   = "saves"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help, if any.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command.
	Category string
	// Handler selects the interpreter handler.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "north", Aliases: []string{"n"}, Help: "Walk north", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "south", Aliases: []string{"s"}, Help: "Walk south", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "east", Aliases: []string{"e"}, Help: "Walk east", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "west", Aliases: []string{"w"}, Help: "Walk west", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "go", Aliases: []string{"move"}, Usage: "<direction>", Help: "Walk in a direction", Category: CategoryMovement, Handler: HandlerMove},

		{Name: "look", Aliases: []string{"l"}, Help: "Describe your surroundings", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "examine", Aliases: []string{"ex", "x"}, Usage: "<name>", Help: "Examine a creature or item here", Category: CategoryWorld, Handler: HandlerExamine},
		{Name: "wait", Aliases: []string{"z"}, Usage: "[seconds]", Help: "Let time pass", Category: CategoryWorld, Handler: HandlerWait},
		{Name: "time", Aliases: []string{"date"}, Help: "Show the date and part of day", Category: CategoryWorld, Handler: HandlerTime},
		{Name: "chunk", Usage: "[side]", Help: "Show or set the generation chunk side", Category: CategoryWorld, Handler: HandlerChunk},
		{Name: "stats", Help: "Show generator statistics", Category: CategoryWorld, Handler: HandlerStats},
		{Name: "spawns", Help: "Show how many creatures of each kind have spawned", Category: CategoryWorld, Handler: HandlerSpawns},

		{Name: "attack", Aliases: []string{"att", "kill"}, Usage: "<name>", Help: "Attack a creature here", Category: CategoryCombat, Handler: HandlerAttack},

		{Name: "save", Usage: "<name>", Help: "Save the game", Category: CategoryStorage, Handler: HandlerSave},
		{Name: "load", Aliases: []string{"restore"}, Usage: "<name>", Help: "Load a saved game", Category: CategoryStorage, Handler: HandlerLoad},
		{Name: "saves", Help: "List saved games", Category: CategoryStorage, Handler: HandlerSaves},

		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
