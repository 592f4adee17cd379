// Package stepedit implements the interactive editor for a single layout
// step. A Session resolves (or creates) the step, then reads one command
// line at a time, looks the verb up in a Registry and runs its handler until
// a handler asks to finish. Handlers report recoverable problems as *Error
// values; the session prints them and keeps prompting. Only step resolution
// failures, input failures and a confirmed exit (ErrAbort) end the loop
// early.
package stepedit
