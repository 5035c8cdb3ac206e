package resolver_test

import (
	"bytes"
	"testing"

	"github.com/marcuscaisey/loxwalk/ast"
	"github.com/marcuscaisey/loxwalk/loxerror"
	"github.com/marcuscaisey/loxwalk/loxtest"
	"github.com/marcuscaisey/loxwalk/parser"
	"github.com/marcuscaisey/loxwalk/resolver"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	stmts := parser.Parse([]byte(src), sink)
	if sink.HadError {
		t.Fatalf("unexpected parse error: %s", buf.String())
	}
	return stmts
}

func TestResolveParameterDistanceIsZeroAtFunctionBody(t *testing.T) {
	stmts := parse(t, `
		fun f(x) {
			print x;
		}
	`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	locals := resolver.Resolve(stmts, sink)
	if sink.HadError {
		t.Fatalf("unexpected resolve error: %s", buf.String())
	}

	fn := stmts[0].(*ast.Function)
	printStmt := fn.Body[0].(*ast.Print)
	variable := printStmt.Expression.(*ast.Variable)

	distance, ok := locals[variable]
	if !ok {
		t.Fatal("expected a resolved distance for the parameter reference")
	}
	if distance != 0 {
		t.Errorf("distance = %d, want 0", distance)
	}
}

func TestResolveGlobalIsOmittedFromTable(t *testing.T) {
	stmts := parse(t, `
		var g = 1;
		print g;
	`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	locals := resolver.Resolve(stmts, sink)
	if sink.HadError {
		t.Fatalf("unexpected resolve error: %s", buf.String())
	}

	printStmt := stmts[1].(*ast.Print)
	variable := printStmt.Expression.(*ast.Variable)

	if _, ok := locals[variable]; ok {
		t.Error("expected the global reference to be omitted from the distance table")
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	stmts := parse(t, `
		{
			var a = 1;
			{
				print a;
			}
		}
	`)

	var buf1, buf2 bytes.Buffer
	locals1 := resolver.Resolve(stmts, loxerror.NewSink(&buf1))
	locals2 := resolver.Resolve(stmts, loxerror.NewSink(&buf2))

	if diff := loxtest.ComputeDiff(locals1, locals2); diff != "" {
		t.Errorf("resolving the same tree twice produced different side tables (-first +second):\n%s", diff)
	}
}

func TestResolveSelfReferenceInInitializerIsError(t *testing.T) {
	stmts := parse(t, `{ var a = a; }`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	resolver.Resolve(stmts, sink)
	if !sink.HadError {
		t.Error("expected an error resolving a self-referencing initializer")
	}
}

func TestResolveRedeclarationIsError(t *testing.T) {
	stmts := parse(t, `{ var a = 1; var a = 2; }`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	resolver.Resolve(stmts, sink)
	if !sink.HadError {
		t.Error("expected an error for redeclaring a name in the same scope")
	}
}

func TestResolveReturnOutsideFunctionIsError(t *testing.T) {
	stmts := parse(t, `return 1;`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	resolver.Resolve(stmts, sink)
	if !sink.HadError {
		t.Error("expected an error returning from top-level code")
	}
}

func TestResolveReturnValueFromInitializerIsError(t *testing.T) {
	stmts := parse(t, `class Foo { init() { return 1; } }`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	resolver.Resolve(stmts, sink)
	if !sink.HadError {
		t.Error("expected an error returning a value from an initializer")
	}
}

func TestResolveThisOutsideClassIsError(t *testing.T) {
	stmts := parse(t, `print this;`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	resolver.Resolve(stmts, sink)
	if !sink.HadError {
		t.Error("expected an error using 'this' outside of a class")
	}
}

func TestResolveSuperWithoutSuperclassIsError(t *testing.T) {
	stmts := parse(t, `class Foo { method() { super.method(); } }`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	resolver.Resolve(stmts, sink)
	if !sink.HadError {
		t.Error("expected an error using 'super' in a class with no superclass")
	}
}

func TestResolveSelfInheritanceIsError(t *testing.T) {
	stmts := parse(t, `class Foo < Foo {}`)
	var buf bytes.Buffer
	sink := loxerror.NewSink(&buf)
	resolver.Resolve(stmts, sink)
	if !sink.HadError {
		t.Error("expected an error for a class inheriting from itself")
	}
}
