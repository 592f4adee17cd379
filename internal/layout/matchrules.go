package layout

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// MinRuleTokens is the number of tokens a rule needs before it is stored.
// Grammar checks happen when the layout is verified, not here.
const MinRuleTokens = 3

// MatchRules is an ordered list of artifact rules such as
// "MATCH src/* from=checkout" or "CREATE out.bin". Order is significant.
type MatchRules []string

// Add appends the space-joined tokens verbatim.
func (r *MatchRules) Add(tokens []string) error {
	if len(tokens) < MinRuleTokens {
		return fmt.Errorf("layout: a matchrule needs at least %d tokens, got %d: %w", MinRuleTokens, len(tokens), ErrInvalid)
	}
	*r = append(*r, strings.Join(tokens, " "))
	return nil
}

// All yields (index, rule) pairs in insertion order.
func (r MatchRules) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, rule := range r {
			if !yield(i, rule) {
				return
			}
		}
	}
}

// RemoveAt deletes the rule at index and returns it.
func (r *MatchRules) RemoveAt(index int) (string, error) {
	if index < 0 || index >= len(*r) {
		return "", fmt.Errorf("layout: matchrule %d: %w", index, ErrNotFound)
	}
	removed := (*r)[index]
	*r = slices.Delete(*r, index, index+1)
	return removed, nil
}

// Remove deletes the first rule equal to value and returns its former index.
func (r *MatchRules) Remove(value string) (int, error) {
	index := slices.Index(*r, value)
	if index < 0 {
		return -1, fmt.Errorf("layout: matchrule %q: %w", value, ErrNotFound)
	}
	*r = slices.Delete(*r, index, index+1)
	return index, nil
}
