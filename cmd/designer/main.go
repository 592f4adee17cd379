// cmd/designer/main.go
//
// This is the entry point for the layout designer's step editor.
//
// Flow:
// 1. Prepare .designer/ in the project and load its config
// 2. Load the layout file (a missing file starts an empty layout)
// 3. Run the step editor until the user goes back or leaves
// 4. On "back", store the step in the layout and save the file

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/kingrea/layout-designer/internal/config"
	"github.com/kingrea/layout-designer/internal/history"
	"github.com/kingrea/layout-designer/internal/layout"
	"github.com/kingrea/layout-designer/internal/logging"
	"github.com/kingrea/layout-designer/internal/prompt"
	"github.com/kingrea/layout-designer/internal/stepedit"
)

const usage = `Usage: designer [flags] <step>

Edit one step of a supply-chain layout interactively. Without --edit a new
step is created; with --edit an existing step is loaded from the layout.

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is the whole command; it returns the process exit code so deferred
// cleanup always happens.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fail := func(format string, a ...any) int {
		fmt.Fprintf(stderr, format+"\n", a...)
		return 1
	}

	flags := pflag.NewFlagSet("designer", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	projectDir := flags.StringP("project", "p", "", "project directory (defaults to cwd)")
	layoutFile := flags.StringP("layout", "l", "", "layout file to edit (defaults to the configured layout)")
	edit := flags.BoolP("edit", "e", false, "edit an existing step instead of creating one")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 2
	}
	stepName := flags.Arg(0)

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			return fail("determine working directory: %v", err)
		}
	}
	project, err := filepath.Abs(project)
	if err != nil {
		return fail("resolve project dir: %v", err)
	}
	if err := config.InitDesignerDir(project); err != nil {
		return fail("init %s: %v", config.DesignerDir, err)
	}
	cfg, err := config.NewConfig(project)
	if err != nil {
		return fail("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogsDir(), cfg.LogLevel(), cfg.LogJSON())
	if err != nil {
		fmt.Fprintf(stderr, "Warning: session log disabled: %v\n", err)
		logger = logging.Discard()
	}
	defer logger.Close()
	sessionLog := logger.With("session", uuid.NewString())

	path := cfg.LayoutPath()
	if *layoutFile != "" {
		path, err = filepath.Abs(*layoutFile)
		if err != nil {
			return fail("resolve layout path: %v", err)
		}
	}
	doc, err := layout.Load(path)
	if err != nil {
		return fail("load layout: %v", err)
	}

	hist, err := history.Open(cfg.HistoryPath(), cfg.HistoryLimit())
	if err != nil {
		sessionLog.Warn("history disabled", "error", err)
		hist, _ = history.Open("", cfg.HistoryLimit())
	}
	sessionLog.Debug("history loaded", "path", hist.Path(), "entries", len(hist.Entries()))

	registry := stepedit.Builtins()
	reader := prompt.NewReader(stdin, stdout,
		prompt.WithHistory(hist),
		prompt.WithSuggestions(suggestions(registry, doc)...),
	)
	mode := stepedit.ModeCreate
	if *edit {
		mode = stepedit.ModeEdit
	}
	session := stepedit.NewSession(registry, doc, reader, prompt.NewPrinter(stdout),
		stepedit.WithLogger(sessionLog),
		stepedit.WithPromptPrefix(cfg.PromptLabel()+"/"+doc.Name),
	)

	result, err := session.Run(context.Background(), stepName, mode)
	switch {
	case errors.Is(err, io.EOF):
		fmt.Fprintln(stdout, "Input closed; step not saved.")
		return 1
	case errors.Is(err, prompt.ErrInterrupted):
		fmt.Fprintln(stdout, "Interrupted; step not saved.")
		return 130
	case err != nil:
		// The session already reported resolution failures to the user.
		if stepedit.KindOf(err) == "" {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	if result.Outcome == stepedit.OutcomeAborted {
		sessionLog.Info("session left without saving", "step", stepName)
		return 0
	}
	if err := doc.PutStep(result.Step); err != nil {
		return fail("store step: %v", err)
	}
	if err := layout.Save(path, doc); err != nil {
		return fail("save layout: %v", err)
	}
	sessionLog.Info("layout saved", "path", path, "step", result.Step.Name)
	fmt.Fprintf(stdout, "Saved step %s to %s\n", result.Step.Name, path)
	return 0
}

// suggestions offers every verb plus ready-made pubkey commands for the
// layout's keys.
func suggestions(registry *stepedit.Registry, doc *layout.Layout) []string {
	out := registry.Verbs()
	for _, key := range doc.AvailableKeys() {
		out = append(out, stepedit.VerbAddPubkey+" "+key.KeyID)
	}
	return out
}
