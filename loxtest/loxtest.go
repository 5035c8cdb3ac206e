// Package loxtest implements the fixture-driven test harness described by the interpreter's embedded test
// protocol: .lox files under a testdata directory carry `// expect:`, `// [...Error...]` and
// `// expect runtime error:` comments, and this package runs each file through a caller-supplied pipeline function,
// diffing the actual result against what the comments declare.
package loxtest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

var (
	expectStdoutRe       = regexp.MustCompile(`//\s*expect:\s?(.*)`)
	expectRuntimeErrorRe = regexp.MustCompile(`//\s*expect runtime error:\s?(.*)`)
	expectCompileErrorRe = regexp.MustCompile(`//\s*\[(.*[Ee]rror.*)\]`)
)

// Expectations is what a .lox fixture's embedded comments declare about a run of the file.
type Expectations struct {
	// Stdout is the expected standard output, one line per `// expect:` comment, in source order.
	Stdout string
	// CompileErrorSubstrings are substrings that must each appear somewhere in the reported (scan/parse/resolve)
	// error output, one per `// [...]` comment whose bracketed text mentions an error.
	CompileErrorSubstrings []string
	// RuntimeError is the expected runtime error message, from a `// expect runtime error:` comment; empty if the
	// fixture doesn't expect a runtime error.
	RuntimeError string
}

// ParseExpectations extracts the expectations embedded in a fixture's comments.
func ParseExpectations(src []byte) Expectations {
	var exp Expectations

	var stdoutLines []string
	for _, match := range expectStdoutRe.FindAllSubmatch(src, -1) {
		stdoutLines = append(stdoutLines, string(match[1]))
	}
	if len(stdoutLines) > 0 {
		exp.Stdout = strings.Join(stdoutLines, "\n") + "\n"
	}

	for _, match := range expectCompileErrorRe.FindAllSubmatch(src, -1) {
		exp.CompileErrorSubstrings = append(exp.CompileErrorSubstrings, string(match[1]))
	}

	if match := expectRuntimeErrorRe.FindSubmatch(src); match != nil {
		exp.RuntimeError = string(match[1])
	}

	return exp
}

// Result is what a single run of the pipeline against a fixture produced.
type Result struct {
	// Stdout is everything written by `print` statements.
	Stdout string
	// SinkOutput is everything the error sink reported (scan/parse/resolve diagnostics and the one allowed runtime
	// error), as it would appear on stderr.
	SinkOutput string
	// HadError reports whether a scan/parse/resolve error was reported.
	HadError bool
	// HadRuntimeError reports whether a runtime error was reported.
	HadRuntimeError bool
}

// RunFunc runs the interpreter pipeline against src and reports what happened.
type RunFunc func(src []byte) Result

// Run runs run against every .lox file found (recursively) under dir, one subtest per file, failing subtests whose
// actual result doesn't match the file's embedded expectations.
func Run(t *testing.T, dir string, run RunFunc) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			t.Run(entry.Name(), func(t *testing.T) {
				Run(t, path, run)
			})
			continue
		}
		if filepath.Ext(entry.Name()) != ".lox" {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".lox")
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			want := ParseExpectations(src)
			got := run(src)

			if want.RuntimeError != "" {
				if !got.HadRuntimeError {
					t.Errorf("expected a runtime error %q, got none (stdout %q)", want.RuntimeError, got.Stdout)
				} else if !strings.Contains(got.SinkOutput, want.RuntimeError) {
					t.Errorf("runtime error output does not contain %q:\n%s", want.RuntimeError, got.SinkOutput)
				}
				return
			}

			for _, substr := range want.CompileErrorSubstrings {
				if !strings.Contains(got.SinkOutput, substr) {
					t.Errorf("error output does not contain %q:\n%s", substr, got.SinkOutput)
				}
			}
			if len(want.CompileErrorSubstrings) > 0 {
				return
			}

			if got.HadError {
				t.Fatalf("unexpected compile error:\n%s", got.SinkOutput)
			}
			if got.HadRuntimeError {
				t.Fatalf("unexpected runtime error:\n%s", got.SinkOutput)
			}

			if diff := computeTextDiff(want.Stdout, got.Stdout); diff != "" {
				t.Errorf("stdout did not match:\n%s", diff)
			}
		})
	}
}

// computeTextDiff returns a human-readable unified diff between want and got, or the empty string if they're equal.
func computeTextDiff(want, got string) string {
	if want == got {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath("want"), want, got)
	return fmt.Sprint(gotextdiff.ToUnified("want", "got", want, edits))
}

// ComputeDiff returns a human-readable structural diff between want and got, for use outside the fixture harness
// (e.g. comparing resolver side tables).
func ComputeDiff(want, got any) string {
	return cmp.Diff(want, got)
}
