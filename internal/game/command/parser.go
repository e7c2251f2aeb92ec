package command

import (
	"strings"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
)

// articles are skipped at the front of a target, so "attack the rat" and
// "attack rat" name the same creature.
var articles = map[string]bool{"the": true, "a": true, "an": true}

// Input is one line of player input split for the interpreter.
type Input struct {
	// Verb is the first word, lowercased. It is empty for a blank line.
	Verb string
	// Args are the words after the verb with their case preserved.
	Args []string
	// Target is the object of the verb: Args without leading articles,
	// joined by single spaces. "examine the  Old boot" targets "Old boot".
	Target string
	// Direction is the compass direction named by the verb ("n", "north") or
	// by a lone argument ("go west"). It is empty when none is named.
	Direction world.Direction
}

// Parse splits a line of player input.
//
// Postcondition: Verb is lowercase and empty only for a blank line; Target
// never starts with an article unless the article is the only word.
func Parse(line string) Input {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Input{}
	}
	in := Input{Verb: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		in.Args = fields[1:]
	}

	words := in.Args
	for len(words) > 1 && articles[strings.ToLower(words[0])] {
		words = words[1:]
	}
	in.Target = strings.Join(words, " ")

	if d, ok := world.ParseDirection(in.Verb); ok {
		in.Direction = d
	} else if len(in.Args) == 1 {
		in.Direction, _ = world.ParseDirection(strings.ToLower(in.Args[0]))
	}
	return in
}
