package tui

import (
	"fmt"
	"sort"
	"strings"
)

// Command is a parsed ":" prompt entry.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':'). Aliases
// are resolved to their canonical name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	name, args, _ := strings.Cut(input, " ")
	name = strings.ToLower(name)
	if canon, ok := aliases[name]; ok {
		name = canon
	}
	return Command{Name: name, Args: strings.TrimSpace(args)}
}

var aliases = map[string]string{
	"s":       "search",
	"find":    "search",
	"r":       "reports",
	"v":       "reports",
	"t":       "type",
	"h":       "help",
	"q":       "quit",
	"q!":      "quit",
	"exit":    "quit",
	"signout": "logout",
	"reload":  "refresh",
}

// commandHelp documents every canonical command.
var commandHelp = map[string]string{
	"search":  "open search; an argument runs it right away",
	"reports": "open the latest violations feed",
	"type":    "toggle or set the search type (name, type)",
	"refresh": "reload the current page",
	"logout":  "sign out and return to the login page",
	"help":    "show key bindings and commands",
	"quit":    "leave vtrack",
}

// Commands returns the canonical command names, sorted.
func Commands() []string {
	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports an error for commands the app does not know.
func (c Command) Validate() error {
	if _, ok := commandHelp[c.Name]; !ok {
		return fmt.Errorf("unknown command %q", c.Name)
	}
	return nil
}
