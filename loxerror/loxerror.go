// Package loxerror implements the error sink shared by the scanning, parsing, resolution and evaluation stages of
// the Lox pipeline.
package loxerror

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/marcuscaisey/loxwalk/token"
)

// Sink accumulates errors produced while running a Lox program and reports them to an output stream.
// It tracks two independent flags so that the pipeline can decide whether to continue: HadError is set by scanning,
// parsing or resolution errors, HadRuntimeError is set by the single runtime error that can occur during evaluation.
type Sink struct {
	Out             io.Writer
	HadError        bool
	HadRuntimeError bool
}

// NewSink creates a Sink which reports to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{Out: w}
}

// NewStderrSink creates a Sink which reports to os.Stderr.
func NewStderrSink() *Sink {
	return NewSink(os.Stderr)
}

// ScannerError reports a lexical error found on the given source line.
func (s *Sink) ScannerError(line int, msg string) {
	s.report(line, "", msg)
	s.HadError = true
}

// TokenError reports an error attributed to a specific token.
func (s *Sink) TokenError(tok token.Token, msg string) {
	if tok.Type == token.EOF {
		s.report(tok.Line, " at end", msg)
	} else {
		s.report(tok.Line, fmt.Sprintf(" at '%s'", tok.Lexeme), msg)
	}
	s.HadError = true
}

// RuntimeError reports a [*RuntimeError], which is raised deep within evaluation and caught once at the top of the
// interpreter.
func (s *Sink) RuntimeError(err *RuntimeError) {
	fmt.Fprintf(s.Out, "%s\n[line %d]\n", err.Message, err.Token.Line)
	s.HadRuntimeError = true
}

func (s *Sink) report(line int, where, msg string) {
	red := color.New(color.FgRed, color.Bold)
	fmt.Fprintf(s.Out, "[line %d] %s%s: %s\n", line, red.Sprint("Error"), where, msg)
}

// Reset clears both error flags, ready for another line of REPL input to be run.
func (s *Sink) Reset() {
	s.HadError = false
	s.HadRuntimeError = false
}

// RuntimeError is a Lox runtime error: it carries the token whose evaluation triggered it (so that the line can be
// reported) and a stable, human-readable message.
type RuntimeError struct {
	Token   token.Token
	Message string
}

// NewRuntimeError creates a [*RuntimeError].
func NewRuntimeError(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

func (e *RuntimeError) Error() string {
	return e.Message
}
