package layout

import (
	"fmt"
	"iter"
	"slices"

	"gopkg.in/yaml.v3"
)

// KeySet holds the keyids authorized to sign for a step. It behaves as a
// set; the stored order only reflects insertion and carries no meaning.
type KeySet []string

// Add inserts keyID and reports whether the set changed.
func (k *KeySet) Add(keyID string) bool {
	if keyID == "" || k.Contains(keyID) {
		return false
	}
	*k = append(*k, keyID)
	return true
}

// Contains reports whether keyID is authorized.
func (k KeySet) Contains(keyID string) bool {
	return slices.Contains(k, keyID)
}

// Remove deletes keyID from the set.
func (k *KeySet) Remove(keyID string) error {
	index := slices.Index(*k, keyID)
	if index < 0 {
		return fmt.Errorf("layout: pubkey %s is not authorized for this step: %w", keyID, ErrNotFound)
	}
	*k = slices.Delete(*k, index, index+1)
	return nil
}

// All yields every keyid once.
func (k KeySet) All() iter.Seq[string] {
	return slices.Values(k)
}

// UnmarshalYAML collapses duplicate keyids found in layout files.
func (k *KeySet) UnmarshalYAML(node *yaml.Node) error {
	var raw []string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*k = nil
	for _, id := range raw {
		k.Add(id)
	}
	return nil
}
