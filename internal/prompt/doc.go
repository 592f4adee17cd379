// Package prompt is the terminal side of the step editor: it reads command
// lines (with history recall and suggestions when attached to a terminal)
// and prints the editor's responses.
package prompt
