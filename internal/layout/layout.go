// Package layout models a supply-chain layout: the ordered steps that make up
// a build and the functionary keys allowed to sign for them.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks lookups that did not match a rule, key or step.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks input rejected before any mutation happened.
	ErrInvalid = errors.New("invalid input")
)

// Key is a functionary key known to the layout.
type Key struct {
	KeyID   string `yaml:"keyid"`
	KeyType string `yaml:"keytype"`
}

// Step is one stage of the layout.
type Step struct {
	Name              string     `yaml:"name"`
	ExpectedMaterials MatchRules `yaml:"expected_materials,omitempty"`
	ExpectedProducts  MatchRules `yaml:"expected_products,omitempty"`
	ExpectedCommand   string     `yaml:"expected_command,omitempty"`
	Pubkeys           KeySet     `yaml:"pubkeys,omitempty"`
}

// NewStep returns a fresh step carrying only its name.
func NewStep(name string) *Step {
	return &Step{Name: strings.TrimSpace(name)}
}

// SetExpectedCommand stores the space-joined arguments as the command
// functionaries are expected to run.
func (s *Step) SetExpectedCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("layout: expected command cannot be empty: %w", ErrInvalid)
	}
	s.ExpectedCommand = strings.Join(args, " ")
	return nil
}

// Layout is the parent document that owns steps and keys.
type Layout struct {
	Name  string  `yaml:"name"`
	Steps []*Step `yaml:"steps,omitempty"`
	Keys  []Key   `yaml:"keys,omitempty"`
}

// FindStep returns the step with exactly the given name.
func (l *Layout) FindStep(name string) (*Step, bool) {
	if l == nil {
		return nil, false
	}
	for _, step := range l.Steps {
		if step != nil && step.Name == name {
			return step, true
		}
	}
	return nil, false
}

// PutStep replaces the step with the same name or appends it.
func (l *Layout) PutStep(step *Step) error {
	if step == nil || strings.TrimSpace(step.Name) == "" {
		return fmt.Errorf("layout: step name is required: %w", ErrInvalid)
	}
	for i, existing := range l.Steps {
		if existing != nil && existing.Name == step.Name {
			l.Steps[i] = step
			return nil
		}
	}
	l.Steps = append(l.Steps, step)
	return nil
}

// AvailableKeys returns the layout-wide key registry in declaration order.
func (l *Layout) AvailableKeys() []Key {
	if l == nil {
		return nil
	}
	return l.Keys
}

// FindKey returns the key with exactly the given keyid.
func (l *Layout) FindKey(keyID string) (Key, bool) {
	if l == nil {
		return Key{}, false
	}
	for _, key := range l.Keys {
		if key.KeyID == keyID {
			return key, true
		}
	}
	return Key{}, false
}

// ResolveKey finds a key by exact keyid or, failing that, by a prefix that
// matches exactly one key.
func ResolveKey(keys []Key, ref string) (Key, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Key{}, fmt.Errorf("layout: keyid is required: %w", ErrInvalid)
	}
	var matches []Key
	for _, key := range keys {
		if key.KeyID == ref {
			return key, nil
		}
		if strings.HasPrefix(key.KeyID, ref) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return Key{}, fmt.Errorf("layout: key %s: %w", ref, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return Key{}, fmt.Errorf("layout: prefix %s matches %d keys: %w", ref, len(matches), ErrInvalid)
	}
}
