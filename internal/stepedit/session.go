package stepedit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kingrea/layout-designer/internal/layout"
)

// Layout is the part of the parent layout the editor reads.
type Layout interface {
	FindStep(name string) (*layout.Step, bool)
	FindKey(keyID string) (layout.Key, bool)
	AvailableKeys() []layout.Key
}

// Input supplies one line of text per call.
type Input interface {
	// ReadLine reads a command line; implementations may offer history
	// recall and suggestions.
	ReadLine(prompt string) (string, error)
	// ReadPlain reads an answer to an inline question without history or
	// suggestions.
	ReadPlain(prompt string) (string, error)
}

// Output emits human-readable lines.
type Output interface {
	Println(a ...any)
	Printf(format string, a ...any)
	Success(format string, a ...any)
	Error(err error)
}

// Mode selects whether the session edits an existing step or creates one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// State is a position in the editing loop.
type State int

const (
	StateResolving State = iota
	StatePrompting
	StateDispatching
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StatePrompting:
		return "prompting"
	case StateDispatching:
		return "dispatching"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome tells the caller how the session ended.
type Outcome int

const (
	_ Outcome = iota
	// OutcomeDone means the user finished with "back"; Step is ready to
	// be stored in the layout.
	OutcomeDone
	// OutcomeAborted means the user confirmed "exit"; the host should
	// discard the step and may terminate.
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeAborted:
		return "aborted"
	default:
		return "none"
	}
}

// Result is what a finished session hands back.
type Result struct {
	Step    *layout.Step
	Outcome Outcome
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPromptPrefix sets the text shown before "->step(<name>)> ".
func WithPromptPrefix(prefix string) SessionOption {
	return func(s *Session) {
		if strings.TrimSpace(prefix) != "" {
			s.promptPrefix = prefix
		}
	}
}

// WithStepCheck installs the check "back" runs before finishing.
func WithStepCheck(check func(*layout.Step) error) SessionOption {
	return func(s *Session) {
		s.check = check
	}
}

// Session drives the read-dispatch loop for one step.
type Session struct {
	registry     *Registry
	layout       Layout
	in           Input
	out          Output
	logger       *slog.Logger
	promptPrefix string
	check        func(*layout.Step) error
	state        State
}

// NewSession wires a session to its registry and collaborators.
func NewSession(registry *Registry, l Layout, in Input, out Output, opts ...SessionOption) *Session {
	s := &Session{
		registry:     registry,
		layout:       l,
		in:           in,
		out:          out,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		promptPrefix: "layout",
		state:        StateResolving,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports where the loop currently is.
func (s *Session) State() State {
	return s.state
}

// Prompt returns the command prompt shown while editing name.
func (s *Session) Prompt(name string) string {
	return fmt.Sprintf("%s->step(%s)> ", s.promptPrefix, name)
}

// Run edits the named step until a handler finishes the session. In edit mode
// a missing step returns a nil Step and a KindNotFound error without ever
// prompting; in create mode an existing step is refused the same way with a
// KindValidation error.
func (s *Session) Run(ctx context.Context, name string, mode Mode) (Result, error) {
	s.state = StateResolving
	step, err := s.resolve(name, mode)
	if err != nil {
		s.state = StateTerminated
		s.out.Error(err)
		s.logger.Warn("step resolution failed", "step", name, "mode", mode.String(), "error", err)
		return Result{}, err
	}
	s.logger.Info("editing step", "step", step.Name, "mode", mode.String())

	editCtx := &EditContext{
		Layout:   s.layout,
		Step:     step,
		In:       s.in,
		Out:      s.out,
		Registry: s.registry,
		Check:    s.check,
	}
	prompt := s.Prompt(step.Name)
	for {
		s.state = StatePrompting
		if err := ctx.Err(); err != nil {
			s.state = StateTerminated
			return Result{Step: step}, fmt.Errorf("stepedit: %w", err)
		}
		line, err := s.in.ReadLine(prompt)
		if err != nil {
			s.state = StateTerminated
			s.logger.Warn("input closed", "step", step.Name, "error", err)
			return Result{Step: step}, fmt.Errorf("stepedit: read command: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		s.state = StateDispatching
		done, err := s.dispatch(editCtx, fields[0], fields[1:])
		switch {
		case errors.Is(err, ErrAbort):
			s.state = StateTerminated
			s.logger.Info("leave confirmed", "step", step.Name)
			return Result{Step: step, Outcome: OutcomeAborted}, nil
		case errors.Is(err, ErrInput):
			s.state = StateTerminated
			s.logger.Warn("input closed", "step", step.Name, "verb", fields[0], "error", err)
			return Result{Step: step}, err
		case err != nil:
			s.out.Error(err)
			s.logger.Debug("command failed", "verb", fields[0], "kind", string(KindOf(err)), "error", err)
		case done:
			s.state = StateTerminated
			s.logger.Info("step finished", "step", step.Name)
			return Result{Step: step, Outcome: OutcomeDone}, nil
		}
	}
}

func (s *Session) resolve(name string, mode Mode) (*layout.Step, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validation("a step needs a name")
	}
	if mode == ModeEdit {
		step, ok := s.layout.FindStep(name)
		if !ok {
			return nil, NotFound("could not find a step named %s for editing", name)
		}
		return step, nil
	}
	if _, exists := s.layout.FindStep(name); exists {
		return nil, Validation("step %s already exists, use --edit to change it", name)
	}
	s.out.Printf("Creating step... %s\n", name)
	return layout.NewStep(name), nil
}

func (s *Session) dispatch(ctx *EditContext, verb string, args []string) (bool, error) {
	cmd, ok := s.registry.Lookup(verb)
	if !ok && verb == HelpVerb {
		s.out.Println(s.registry.Help())
		return false, nil
	}
	if !ok {
		if suggestion := s.registry.Suggest(verb); suggestion != "" {
			return false, Validation("You've input a wrong command: %s (did you mean %s?)", verb, suggestion)
		}
		return false, Validation("You've input a wrong command: %s", verb)
	}
	s.logger.Debug("dispatch", "verb", verb, "args", len(args))
	return cmd.Handler(ctx, args)
}
