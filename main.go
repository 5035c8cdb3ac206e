// Command loxwalk is a tree-walking interpreter for Lox.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/chzyer/readline"

	"github.com/marcuscaisey/loxwalk/interpreter"
	"github.com/marcuscaisey/loxwalk/loxerror"
	"github.com/marcuscaisey/loxwalk/parser"
	"github.com/marcuscaisey/loxwalk/resolver"
)

func main() {
	switch len(os.Args) {
	case 1:
		runREPL()
	case 2:
		runFile(os.Args[1])
	default:
		fmt.Fprintln(os.Stderr, "Usage: loxwalk [script]")
		os.Exit(64)
	}
}

func runFile(name string) {
	src, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(64)
	}

	sink := loxerror.NewStderrSink()
	in := interpreter.New(os.Stdout)
	run(src, in, sink)

	if sink.HadError {
		os.Exit(65)
	}
	if sink.HadRuntimeError {
		os.Exit(70)
	}
}

func runREPL() {
	cfg := &readline.Config{Prompt: "> "}
	if homeDir, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = path.Join(homeDir, ".loxwalk_history")
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(64)
	}
	defer rl.Close()

	in := interpreter.New(os.Stdout)
	sink := loxerror.NewStderrSink()
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		sink.Reset()
		run([]byte(line), in, sink)
	}
}

func run(src []byte, in *interpreter.Interpreter, sink *loxerror.Sink) {
	stmts := parser.Parse(src, sink)
	if sink.HadError {
		return
	}
	locals := resolver.Resolve(stmts, sink)
	if sink.HadError {
		return
	}
	in.Interpret(stmts, locals, sink)
}
