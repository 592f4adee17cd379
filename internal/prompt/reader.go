package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kingrea/layout-designer/internal/history"
)

// maxHistorySuggestions caps how many history lines are offered as
// suggestions next to the static ones.
const maxHistorySuggestions = 50

// Option customizes a reader.
type Option func(*options)

type options struct {
	history     *history.History
	suggestions []string
}

// WithHistory records accepted lines and offers them as suggestions.
func WithHistory(h *history.History) Option {
	return func(o *options) {
		o.history = h
	}
}

// WithSuggestions adds static completions such as command verbs.
func WithSuggestions(suggestions ...string) Option {
	return func(o *options) {
		o.suggestions = append(o.suggestions, suggestions...)
	}
}

// TerminalReader reads lines through an inline bubbletea program so the user
// gets line editing, history-driven suggestions and tab acceptance.
type TerminalReader struct {
	in  io.Reader
	out io.Writer
	options
}

// NewTerminalReader builds a reader on the given streams.
func NewTerminalReader(in io.Reader, out io.Writer, opts ...Option) *TerminalReader {
	r := &TerminalReader{in: in, out: out}
	for _, opt := range opts {
		opt(&r.options)
	}
	return r
}

// ReadLine prompts with suggestions and records the accepted line.
func (r *TerminalReader) ReadLine(prompt string) (string, error) {
	line, err := r.run(newLineModel(prompt, r.suggestionList()))
	if err != nil {
		return "", err
	}
	r.history.Append(line)
	return line, nil
}

// ReadPlain prompts without suggestions or history.
func (r *TerminalReader) ReadPlain(prompt string) (string, error) {
	return r.run(newLineModel(prompt, nil))
}

func (r *TerminalReader) run(model lineModel) (string, error) {
	program := tea.NewProgram(model, tea.WithInput(r.in), tea.WithOutput(r.out))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	result, ok := final.(lineModel)
	if !ok {
		return "", fmt.Errorf("prompt: unexpected model %T", final)
	}
	if result.err != nil {
		return "", result.err
	}
	return result.value, nil
}

// suggestionList puts recent history ahead of the static suggestions.
func (o *options) suggestionList() []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(values []string) {
		for _, v := range values {
			if _, dup := seen[v]; dup || strings.TrimSpace(v) == "" {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	add(o.history.Recent(maxHistorySuggestions))
	add(o.suggestions)
	return out
}

// ScanReader reads newline-terminated lines from a non-interactive stream,
// echoing prompts to out.
type ScanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
	options
}

// NewScanReader builds a reader for piped or redirected input.
func NewScanReader(in io.Reader, out io.Writer, opts ...Option) *ScanReader {
	r := &ScanReader{scanner: bufio.NewScanner(in), out: out}
	for _, opt := range opts {
		opt(&r.options)
	}
	return r
}

// ReadLine returns the next line and records it in history.
func (r *ScanReader) ReadLine(prompt string) (string, error) {
	line, err := r.ReadPlain(prompt)
	if err != nil {
		return "", err
	}
	r.history.Append(line)
	return line, nil
}

// ReadPlain returns the next line, or io.EOF once input is exhausted.
func (r *ScanReader) ReadPlain(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		fmt.Fprintln(r.out)
		if err := r.scanner.Err(); err != nil {
			return "", fmt.Errorf("prompt: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}

// Reader is satisfied by both reader implementations.
type Reader interface {
	ReadLine(prompt string) (string, error)
	ReadPlain(prompt string) (string, error)
}

// NewReader picks the terminal reader when in is a TTY and the scan reader
// otherwise.
func NewReader(in io.Reader, out io.Writer, opts ...Option) Reader {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewTerminalReader(in, out, opts...)
	}
	return NewScanReader(in, out, opts...)
}
