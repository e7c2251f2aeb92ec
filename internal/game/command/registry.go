package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrWordTaken is returned when two commands claim the same name or alias.
var ErrWordTaken = errors.New("command word already taken")

// minPrefix is the shortest abbreviation Resolve accepts for a command name.
const minPrefix = 2

// Registry resolves the words a player types to commands.
//
// Invariant: every name and alias maps to exactly one command.
type Registry struct {
	words    map[string]*Command
	commands []*Command // sorted by name
}

// NewRegistry indexes cmds by name and alias.
//
// Precondition: No two commands may share a name or alias.
// Postcondition: Returns a Registry, or an error wrapping ErrWordTaken.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{words: make(map[string]*Command, len(cmds)*2)}
	for i := range cmds {
		cmd := &cmds[i]
		for _, word := range append([]string{cmd.Name}, cmd.Aliases...) {
			if owner, taken := r.words[word]; taken {
				return nil, fmt.Errorf("%w: %q is used by %q and %q", ErrWordTaken, word, owner.Name, cmd.Name)
			}
			r.words[word] = cmd
		}
		r.commands = append(r.commands, cmd)
	}
	slices.SortFunc(r.commands, func(a, b *Command) int { return strings.Compare(a.Name, b.Name) })
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a lowercase word. An exact name or alias wins; otherwise a
// prefix of at least two letters resolves when it starts exactly one command
// name, so "exa" means examine but "sa" is ambiguous between save and saves.
//
// Postcondition: Returns (command, true) if found, or (nil, false).
func (r *Registry) Resolve(word string) (*Command, bool) {
	if cmd, ok := r.words[word]; ok {
		return cmd, true
	}
	if len(word) < minPrefix {
		return nil, false
	}
	var match *Command
	for _, cmd := range r.commands {
		if !strings.HasPrefix(cmd.Name, word) {
			continue
		}
		if match != nil {
			return nil, false
		}
		match = cmd
	}
	return match, match != nil
}

// Commands returns all registered commands sorted by name.
func (r *Registry) Commands() []*Command {
	return slices.Clone(r.commands)
}

// CommandsByCategory returns commands grouped by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.commands {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	return categories
}

var categoryOrder = []string{CategoryMovement, CategoryWorld, CategoryCombat, CategoryStorage, CategorySystem}

// HelpText renders every command grouped by category, one per line.
func (r *Registry) HelpText() string {
	cats := r.CommandsByCategory()
	var b strings.Builder
	for _, cat := range categoryOrder {
		if len(cats[cat]) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", cat)
		for _, cmd := range cats[cat] {
			synopsis := strings.TrimSpace(cmd.Name + " " + cmd.Usage)
			if len(cmd.Aliases) > 0 {
				synopsis += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&b, "  %-28s %s\n", synopsis, cmd.Help)
		}
	}
	return b.String()
}
