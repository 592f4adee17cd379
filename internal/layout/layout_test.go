package layout

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestMatchRulesAddJoinsTokens(t *testing.T) {
	var rules MatchRules
	if err := rules.Add([]string{"MATCH", "src/*", "from=checkout"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(rules) != 1 || rules[0] != "MATCH src/* from=checkout" {
		t.Fatalf("unexpected rules: %q", rules)
	}
}

func TestMatchRulesAddRejectsShortRules(t *testing.T) {
	rules := MatchRules{"CREATE out.bin"}
	err := rules.Add([]string{"CREATE", "foo"})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("short rule must not be stored, got %q", rules)
	}
}

func TestMatchRulesAllIsIndexedInOrder(t *testing.T) {
	rules := MatchRules{"a b c", "d e f", "g h i"}
	var indexes []int
	var values []string
	for i, rule := range rules.All() {
		indexes = append(indexes, i)
		values = append(values, rule)
	}
	if !slices.Equal(indexes, []int{0, 1, 2}) {
		t.Fatalf("indexes = %v", indexes)
	}
	if !slices.Equal(values, []string(rules)) {
		t.Fatalf("values = %v", values)
	}
}

func TestMatchRulesRemoveAtKeepsOrder(t *testing.T) {
	rules := MatchRules{"a b c", "d e f", "g h i"}
	removed, err := rules.RemoveAt(1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed != "d e f" {
		t.Fatalf("removed %q", removed)
	}
	if !slices.Equal(rules, MatchRules{"a b c", "g h i"}) {
		t.Fatalf("unexpected rules after removal: %q", rules)
	}
}

func TestMatchRulesRemoveAtOutOfRange(t *testing.T) {
	rules := MatchRules{"a b c"}
	for _, index := range []int{-1, 1, 7} {
		if _, err := rules.RemoveAt(index); !errors.Is(err, ErrNotFound) {
			t.Fatalf("index %d: expected ErrNotFound, got %v", index, err)
		}
	}
	if len(rules) != 1 {
		t.Fatalf("failed removals must not mutate, got %q", rules)
	}
}

func TestMatchRulesRemoveByValue(t *testing.T) {
	rules := MatchRules{"CREATE a", "CREATE b", "CREATE a"}
	index, err := rules.Remove("CREATE a")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if index != 0 {
		t.Fatalf("index = %d, want 0", index)
	}
	if !slices.Equal(rules, MatchRules{"CREATE b", "CREATE a"}) {
		t.Fatalf("only the first match should go, got %q", rules)
	}
	if _, err := rules.Remove("DELETE z"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKeySetCollapsesDuplicates(t *testing.T) {
	var keys KeySet
	if !keys.Add("abc") {
		t.Fatalf("first add should change the set")
	}
	if keys.Add("abc") {
		t.Fatalf("duplicate add should be a no-op")
	}
	keys.Add("def")
	if len(keys) != 2 || !keys.Contains("def") {
		t.Fatalf("unexpected set: %v", keys)
	}
	if err := keys.Remove("zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := keys.Remove("abc"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if keys.Contains("abc") {
		t.Fatalf("abc should be gone: %v", keys)
	}
}

func TestResolveKeyByPrefix(t *testing.T) {
	keys := []Key{
		{KeyID: "aa11", KeyType: "ed25519"},
		{KeyID: "aa22", KeyType: "rsa"},
		{KeyID: "bb33", KeyType: "rsa"},
	}
	key, err := ResolveKey(keys, "bb")
	if err != nil || key.KeyID != "bb33" {
		t.Fatalf("prefix lookup = %+v, %v", key, err)
	}
	key, err = ResolveKey(keys, "aa22")
	if err != nil || key.KeyType != "rsa" {
		t.Fatalf("exact lookup = %+v, %v", key, err)
	}
	if _, err := ResolveKey(keys, "aa"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("ambiguous prefix should be invalid, got %v", err)
	}
	if _, err := ResolveKey(keys, "cc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown prefix should be not found, got %v", err)
	}
}

func TestPutStepReplacesByName(t *testing.T) {
	l := &Layout{Steps: []*Step{NewStep("clone"), NewStep("build")}}
	updated := NewStep("clone")
	updated.ExpectedCommand = "git clone"
	if err := l.PutStep(updated); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := l.PutStep(NewStep("package")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if len(l.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(l.Steps))
	}
	step, ok := l.FindStep("clone")
	if !ok || step.ExpectedCommand != "git clone" {
		t.Fatalf("clone was not replaced: %+v", step)
	}
	if err := l.PutStep(NewStep("  ")); !errors.Is(err, ErrInvalid) {
		t.Fatalf("blank name should be rejected, got %v", err)
	}
}

const sampleLayout = `name: demo
steps:
  - name: clone
    expected_materials: []
    expected_products:
      - CREATE out.bin
    expected_command: git clone https://example.com/repo
    pubkeys:
      - aa11
      - aa11
keys:
  - keyid: aa11
    keytype: ed25519
`

func TestParseLayout(t *testing.T) {
	l, err := Parse([]byte(sampleLayout))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	step, ok := l.FindStep("clone")
	if !ok {
		t.Fatalf("clone step missing")
	}
	if !slices.Equal(step.ExpectedProducts, MatchRules{"CREATE out.bin"}) {
		t.Fatalf("products = %q", step.ExpectedProducts)
	}
	if len(step.Pubkeys) != 1 {
		t.Fatalf("duplicate pubkeys should collapse, got %v", step.Pubkeys)
	}
	if _, ok := l.FindKey("aa11"); !ok {
		t.Fatalf("key aa11 missing")
	}
}

func TestParseRejectsDuplicateSteps(t *testing.T) {
	doc := strings.TrimSpace(`
name: demo
steps:
  - name: clone
  - name: clone
`)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("expected duplicate step error")
	}
	if _, err := Parse([]byte("  ")); err == nil {
		t.Fatalf("expected empty document error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts", "demo.yaml")
	l, err := Load(path)
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if l.Name != "demo" || len(l.Steps) != 0 {
		t.Fatalf("missing file should give an empty layout, got %+v", l)
	}
	step := NewStep("clone")
	if err := step.ExpectedMaterials.Add([]string{"MATCH", "src/*", "from=checkout"}); err != nil {
		t.Fatalf("add rule: %v", err)
	}
	step.Pubkeys.Add("aa11")
	if err := l.PutStep(step); err != nil {
		t.Fatalf("put: %v", err)
	}
	l.Keys = append(l.Keys, Key{KeyID: "aa11", KeyType: "ed25519"})
	if err := Save(path, l); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("layout file missing: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := reloaded.FindStep("clone")
	if !ok {
		t.Fatalf("clone missing after reload")
	}
	if !slices.Equal(got.ExpectedMaterials, step.ExpectedMaterials) || !got.Pubkeys.Contains("aa11") {
		t.Fatalf("reloaded step differs: %+v", got)
	}
}

func TestSetExpectedCommand(t *testing.T) {
	step := NewStep("build")
	if err := step.SetExpectedCommand(nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if step.ExpectedCommand != "" {
		t.Fatalf("rejected command must not be stored")
	}
	if err := step.SetExpectedCommand([]string{"make", "-j4"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if step.ExpectedCommand != "make -j4" {
		t.Fatalf("command = %q", step.ExpectedCommand)
	}
}
