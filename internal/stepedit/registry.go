package stepedit

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kingrea/layout-designer/internal/layout"
	"github.com/sahilm/fuzzy"
)

// HelpVerb lists the registry. A registry without a help command still
// answers it.
const HelpVerb = "help"

// Handler runs one command against the step being edited. Returning true
// ends the session.
type Handler func(ctx *EditContext, args []string) (bool, error)

// Command binds a verb to its handler and help text.
type Command struct {
	Verb    string
	Usage   string
	Summary string
	Handler Handler
}

// EditContext is what a handler sees while it runs.
type EditContext struct {
	Layout   Layout
	Step     *layout.Step
	In       Input
	Out      Output
	Registry *Registry

	// Check vets the step before "back" hands it to the caller. Nil accepts
	// any step.
	Check func(*layout.Step) error
}

// Registry is an immutable verb table. It is safe to share between sessions.
type Registry struct {
	commands []Command
	index    map[string]int
}

// NewRegistry validates commands and returns a registry that keeps their
// order for help output.
func NewRegistry(commands ...Command) (*Registry, error) {
	r := &Registry{
		commands: make([]Command, 0, len(commands)),
		index:    make(map[string]int, len(commands)),
	}
	for _, cmd := range commands {
		verb := strings.TrimSpace(cmd.Verb)
		if verb == "" || strings.ContainsAny(verb, " \t") {
			return nil, fmt.Errorf("stepedit: invalid verb %q", cmd.Verb)
		}
		if cmd.Handler == nil {
			return nil, fmt.Errorf("stepedit: handler is required for %s", verb)
		}
		if _, exists := r.index[verb]; exists {
			return nil, fmt.Errorf("stepedit: %s already registered", verb)
		}
		cmd.Verb = verb
		r.index[verb] = len(r.commands)
		r.commands = append(r.commands, cmd)
	}
	return r, nil
}

// MustNewRegistry panics if the command table is invalid.
func MustNewRegistry(commands ...Command) *Registry {
	r, err := NewRegistry(commands...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds the command for verb. Matching is case-sensitive.
func (r *Registry) Lookup(verb string) (Command, bool) {
	i, ok := r.index[verb]
	if !ok {
		return Command{}, false
	}
	return r.commands[i], true
}

// Verbs returns every registered verb in registration order.
func (r *Registry) Verbs() []string {
	verbs := make([]string, len(r.commands))
	for i, cmd := range r.commands {
		verbs[i] = cmd.Verb
	}
	return verbs
}

// Suggest returns the best fuzzy match for an unknown verb, or "".
func (r *Registry) Suggest(verb string) string {
	if verb == "" {
		return ""
	}
	matches := fuzzy.Find(verb, r.Verbs())
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// Help renders every command with its usage and summary.
func (r *Registry) Help() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	tw := tabwriter.NewWriter(&b, 2, 0, 3, ' ', 0)
	for _, cmd := range r.commands {
		usage := cmd.Verb
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		fmt.Fprintf(tw, "  %s\t%s\n", usage, cmd.Summary)
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}
