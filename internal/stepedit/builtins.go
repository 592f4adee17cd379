package stepedit

import (
	"errors"
	"strconv"
	"strings"

	"github.com/kingrea/layout-designer/internal/layout"
)

// Verbs understood by the step editor.
const (
	VerbAddMaterialRule    = "add_material_matchrule"
	VerbListMaterialRules  = "list_material_matchrules"
	VerbRemoveMaterialRule = "remove_material_matchrule"
	VerbAddProductRule     = "add_product_matchrule"
	VerbListProductRules   = "list_product_matchrules"
	VerbRemoveProductRule  = "remove_product_matchrule"
	VerbSetExpectedCommand = "set_expected_command"
	VerbAddPubkey          = "add_pubkey"
	VerbRemovePubkey       = "remove_pubkey"
	VerbListPubkeys        = "list_pubkeys"
	VerbListAvailableKeys  = "list_available_pubkeys"
	VerbExit               = "exit"
	VerbBack               = "back"
)

const (
	leaveQuestion  = "You are editing a step, are you sure you want to leave? [Y/n] "
	removeQuestion = "Which matchrule do you want to delete? "
)

// Builtins returns the standard step-editing command table.
func Builtins() *Registry {
	return MustNewRegistry(
		Command{
			Verb:    VerbAddMaterialRule,
			Usage:   "(MATCH|CREATE|MODIFY|DELETE) <path> [from=<stepname>]",
			Summary: "Add a material matchrule; MATCH requires the from= qualifier",
			Handler: addRule(materials),
		},
		Command{
			Verb:    VerbListMaterialRules,
			Summary: "List the material matchrules of this step",
			Handler: listRules(materials),
		},
		Command{
			Verb:    VerbRemoveMaterialRule,
			Usage:   "[<number>|<rule>]",
			Summary: "Remove a material matchrule by number or text",
			Handler: removeRule(materials),
		},
		Command{
			Verb:    VerbAddProductRule,
			Usage:   "(MATCH|CREATE|MODIFY|DELETE) <path> [from=<stepname>]",
			Summary: "Add a product matchrule; MATCH requires the from= qualifier",
			Handler: addRule(products),
		},
		Command{
			Verb:    VerbListProductRules,
			Summary: "List the product matchrules of this step",
			Handler: listRules(products),
		},
		Command{
			Verb:    VerbRemoveProductRule,
			Usage:   "[<number>|<rule>]",
			Summary: "Remove a product matchrule by number or text",
			Handler: removeRule(products),
		},
		Command{
			Verb:    VerbSetExpectedCommand,
			Usage:   "<command...>",
			Summary: "Set the command functionaries are expected to run",
			Handler: setExpectedCommand,
		},
		Command{
			Verb:    VerbAddPubkey,
			Usage:   "<keyid>",
			Summary: "Authorize a layout key for this step; a unique keyid prefix is accepted",
			Handler: addPubkey,
		},
		Command{
			Verb:    VerbRemovePubkey,
			Usage:   "<keyid>",
			Summary: "Revoke a key from this step",
			Handler: removePubkey,
		},
		Command{
			Verb:    VerbListPubkeys,
			Summary: "List the keys that can sign for this step",
			Handler: listPubkeys,
		},
		Command{
			Verb:    VerbListAvailableKeys,
			Summary: "List the keys known to this layout",
			Handler: listAvailablePubkeys,
		},
		Command{
			Verb:    VerbExit,
			Summary: "Leave the layout tool",
			Handler: leave,
		},
		Command{
			Verb:    VerbBack,
			Summary: "Finish editing this step and go back",
			Handler: goBack,
		},
		Command{
			Verb:    HelpVerb,
			Summary: "Show this help",
			Handler: printHelp,
		},
	)
}

type ruleSet struct {
	label string
	pick  func(*layout.Step) *layout.MatchRules
}

var (
	materials = ruleSet{label: "material", pick: func(s *layout.Step) *layout.MatchRules { return &s.ExpectedMaterials }}
	products  = ruleSet{label: "product", pick: func(s *layout.Step) *layout.MatchRules { return &s.ExpectedProducts }}
)

func addRule(set ruleSet) Handler {
	return func(ctx *EditContext, args []string) (bool, error) {
		rules := set.pick(ctx.Step)
		if err := rules.Add(args); err != nil {
			return false, Validation("a %s matchrule needs a keyword, a path and a qualifier (e.g. MATCH src/* from=checkout)", set.label)
		}
		ctx.Out.Success("Added %s matchrule %d: %s", set.label, len(*rules)-1, (*rules)[len(*rules)-1])
		return false, nil
	}
}

func listRules(set ruleSet) Handler {
	return func(ctx *EditContext, _ []string) (bool, error) {
		printRules(ctx, set)
		return false, nil
	}
}

func printRules(ctx *EditContext, set ruleSet) {
	rules := set.pick(ctx.Step)
	if len(*rules) == 0 {
		ctx.Out.Printf("This step has no %s matchrules.\n", set.label)
		return
	}
	for i, rule := range rules.All() {
		ctx.Out.Printf("%3d: %s\n", i, rule)
	}
}

func removeRule(set ruleSet) Handler {
	return func(ctx *EditContext, args []string) (bool, error) {
		rules := set.pick(ctx.Step)
		if len(args) == 0 {
			if len(*rules) == 0 {
				return false, NotFound("this step has no %s matchrules to remove", set.label)
			}
			printRules(ctx, set)
			answer, err := ctx.In.ReadPlain(removeQuestion)
			if err != nil {
				return false, inputError(err)
			}
			index, err := strconv.Atoi(strings.TrimSpace(answer))
			if err != nil {
				return false, Validation("%q is not a matchrule number", strings.TrimSpace(answer))
			}
			return removeRuleAt(ctx, set, index)
		}
		if len(args) == 1 {
			if index, err := strconv.Atoi(args[0]); err == nil {
				return removeRuleAt(ctx, set, index)
			}
		}
		value := strings.Join(args, " ")
		if _, err := rules.Remove(value); err != nil {
			return false, NotFound("there is no %s matchrule %q", set.label, value)
		}
		ctx.Out.Success("Removed %s matchrule: %s", set.label, value)
		return false, nil
	}
}

func removeRuleAt(ctx *EditContext, set ruleSet, index int) (bool, error) {
	removed, err := set.pick(ctx.Step).RemoveAt(index)
	if err != nil {
		return false, NotFound("there is no %s matchrule numbered %d", set.label, index)
	}
	ctx.Out.Success("Removed %s matchrule %d: %s", set.label, index, removed)
	return false, nil
}

func setExpectedCommand(ctx *EditContext, args []string) (bool, error) {
	if err := ctx.Step.SetExpectedCommand(args); err != nil {
		return false, Validation("We need to have *something* as an expected command")
	}
	ctx.Out.Success("Expected command set to: %s", ctx.Step.ExpectedCommand)
	return false, nil
}

func addPubkey(ctx *EditContext, args []string) (bool, error) {
	if len(args) != 1 {
		return false, Validation("usage: %s <keyid>", VerbAddPubkey)
	}
	key, err := layout.ResolveKey(ctx.Layout.AvailableKeys(), args[0])
	switch {
	case errors.Is(err, layout.ErrNotFound):
		return false, NotFound("Couldn't find a key matching %s in this layout", args[0])
	case err != nil:
		return false, Validation("%s matches more than one key, use a longer prefix", args[0])
	}
	if !ctx.Step.Pubkeys.Add(key.KeyID) {
		ctx.Out.Printf("Pubkey %s is already authorized for this step.\n", key.KeyID)
		return false, nil
	}
	ctx.Out.Success("Successfully added pubkey %s to this step.", key.KeyID)
	return false, nil
}

func removePubkey(ctx *EditContext, args []string) (bool, error) {
	if len(args) != 1 {
		return false, Validation("usage: %s <keyid>", VerbRemovePubkey)
	}
	if err := ctx.Step.Pubkeys.Remove(args[0]); err != nil {
		return false, NotFound("Couldn't find keyid %s in this step", args[0])
	}
	if key, ok := ctx.Layout.FindKey(args[0]); ok {
		ctx.Out.Success("Successfully removed %s pubkey %s from this step.", key.KeyType, key.KeyID)
		return false, nil
	}
	ctx.Out.Success("Successfully removed pubkey %s from this step.", args[0])
	return false, nil
}

func listPubkeys(ctx *EditContext, _ []string) (bool, error) {
	for keyID := range ctx.Step.Pubkeys.All() {
		ctx.Out.Println(keyID)
	}
	return false, nil
}

func listAvailablePubkeys(ctx *EditContext, _ []string) (bool, error) {
	keys := ctx.Layout.AvailableKeys()
	if len(keys) == 0 {
		ctx.Out.Println("This layout has no keys yet.")
		return false, nil
	}
	for i, key := range keys {
		ctx.Out.Printf("[%d](%s) %s\n", i+1, key.KeyType, key.KeyID)
	}
	return false, nil
}

func leave(ctx *EditContext, _ []string) (bool, error) {
	answer, err := ctx.In.ReadPlain(leaveQuestion)
	if err != nil {
		return false, inputError(err)
	}
	if strings.HasPrefix(answer, "Y") {
		return false, ErrAbort
	}
	return false, nil
}

func goBack(ctx *EditContext, _ []string) (bool, error) {
	if ctx.Check != nil {
		if err := ctx.Check(ctx.Step); err != nil {
			return false, Validation("step %s is not ready: %v", ctx.Step.Name, err)
		}
	}
	return true, nil
}

// printHelp backs the "help" entry of Builtins; dispatch falls back to the
// same listing when a registry has no help command.
func printHelp(ctx *EditContext, _ []string) (bool, error) {
	ctx.Out.Println(ctx.Registry.Help())
	return false, nil
}
