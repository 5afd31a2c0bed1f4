package commands

import (
	"errors"
	"flag"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownCommand is returned by Execute for a name that was never registered.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one entry point of the shapes binary, such as run, headless or init-config.
// Run sees the parsed values of FlagSet.
type Command struct {
	Name    string
	Usage   string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry maps command names to commands and remembers which one runs when none is named.
type Registry struct {
	cmds     map[string]*Command
	fallback string
}

// NewRegistry returns an empty command registry. fallback names the command run when no
// subcommand is given (or the first argument is a flag).
func NewRegistry(fallback string) *Registry {
	return &Registry{cmds: make(map[string]*Command), fallback: fallback}
}

// Register adds a subcommand. fs is that command's FlagSet; run is called after fs.Parse succeeds.
// fs may be nil for a command without flags.
func (r *Registry) Register(name, usage string, fs *flag.FlagSet, run func() error) {
	if fs == nil {
		fs = flag.NewFlagSet(name, flag.ContinueOnError)
	}
	r.cmds[name] = &Command{Name: name, Usage: usage, FlagSet: fs, Run: run}
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Usage lists the commands, one per line.
func (r *Registry) Usage() string {
	var b strings.Builder
	for _, name := range r.Names() {
		fmt.Fprintf(&b, "  %-10s %s\n", name, r.cmds[name].Usage)
	}
	return b.String()
}

// Execute picks the command named by args[0], or the fallback when args is empty or starts with a flag,
// parses the remaining arguments into its FlagSet and runs it. Names nobody registered wrap ErrUnknownCommand.
func (r *Registry) Execute(args []string) error {
	name := r.fallback
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}
	if name == "" {
		return errors.New("missing subcommand")
	}
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if err := cmd.FlagSet.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Run()
}
