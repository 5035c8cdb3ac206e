// Package resolver implements the static resolution pass which runs between parsing and evaluation. For every
// variable-referencing expression (Variable, Assign, This, Super) it computes the lexical distance between the use
// site and the scope which declares the name, and it enforces the handful of contextual rules which can't be checked
// by the parser alone (return/this/super placement, self-inheritance).
package resolver

import (
	"fmt"

	"github.com/marcuscaisey/loxwalk/ast"
	"github.com/marcuscaisey/loxwalk/loxerror"
	"github.com/marcuscaisey/loxwalk/stack"
	"github.com/marcuscaisey/loxwalk/token"
)

// funType tracks what kind of function body is currently being resolved, so that `return` can be validated.
type funType int

const (
	funTypeNone funType = iota
	funTypeFunction
	funTypeMethod
	funTypeInitializer
)

// classType tracks whether the current scope is inside a class body, and whether that class has a superclass, so
// that `this` and `super` can be validated.
type classType int

const (
	classTypeNone classType = iota
	classTypeClass
	classTypeSubclass
)

// scope maps a name to whether it has been fully defined yet (false right after declare, true after define).
type scope map[string]bool

// Resolve walks stmts and returns a map from expression node to lexical distance. An expression which isn't present
// in the map was resolved to the global scope.
// Resolution errors (redeclaration, reading a variable from its own initialiser, misplaced return/this/super,
// self-inheriting classes) are reported to sink.
func Resolve(stmts []ast.Stmt, sink *loxerror.Sink) map[ast.Expr]int {
	r := &resolver{
		sink:      sink,
		scopes:    stack.New[scope](),
		locals:    map[ast.Expr]int{},
		funType:   funTypeNone,
		classType: classTypeNone,
	}
	r.resolveStmts(stmts)
	return r.locals
}

type resolver struct {
	sink   *loxerror.Sink
	scopes *stack.Stack[scope]
	locals map[ast.Expr]int

	funType   funType
	classType classType
}

func (r *resolver) beginScope() {
	r.scopes.Push(scope{})
}

func (r *resolver) endScope() {
	r.scopes.Pop()
}

func (r *resolver) declare(name token.Token) {
	if r.scopes.Len() == 0 {
		return
	}
	s := r.scopes.Peek()
	if _, ok := s[name.Lexeme]; ok {
		r.sink.TokenError(name, "Already variable with this name in this scope.")
	}
	s[name.Lexeme] = false
}

func (r *resolver) define(name token.Token) {
	if r.scopes.Len() == 0 {
		return
	}
	r.scopes.Peek()[name.Lexeme] = true
}

func (r *resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := r.scopes.Len() - 1; i >= 0; i-- {
		if _, ok := r.scopes.Index(i)[name.Lexeme]; ok {
			r.locals[expr] = r.scopes.Len() - 1 - i
			return
		}
	}
	// Not found in any scope: it's either global or undeclared, which the interpreter will catch at runtime.
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(stmt.Stmts)
		r.endScope()
	case *ast.Class:
		r.resolveClass(stmt)
	case *ast.Expression:
		r.resolveExpr(stmt.Expression)
	case *ast.Function:
		r.declare(stmt.Name)
		r.define(stmt.Name)
		r.resolveFunction(stmt, funTypeFunction)
	case *ast.If:
		r.resolveExpr(stmt.Condition)
		r.resolveStmt(stmt.ThenBranch)
		if stmt.ElseBranch != nil {
			r.resolveStmt(stmt.ElseBranch)
		}
	case *ast.Print:
		r.resolveExpr(stmt.Expression)
	case *ast.Return:
		if r.funType == funTypeNone {
			r.sink.TokenError(stmt.Keyword, "Can't return from top-level code.")
		}
		if stmt.Value != nil {
			if r.funType == funTypeInitializer {
				r.sink.TokenError(stmt.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(stmt.Value)
		}
	case *ast.Var:
		r.declare(stmt.Name)
		if stmt.Initializer != nil {
			r.resolveExpr(stmt.Initializer)
		}
		r.define(stmt.Name)
	case *ast.While:
		r.resolveExpr(stmt.Condition)
		r.resolveStmt(stmt.Body)
	default:
		panic(fmt.Sprintf("resolver: unexpected statement type %T", stmt))
	}
}

func (r *resolver) resolveFunction(fn *ast.Function, typ funType) {
	enclosingFunType := r.funType
	r.funType = typ
	defer func() { r.funType = enclosingFunType }()

	r.beginScope()
	defer r.endScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
}

func (r *resolver) resolveClass(stmt *ast.Class) {
	enclosingClassType := r.classType
	r.classType = classTypeClass
	defer func() { r.classType = enclosingClassType }()

	r.declare(stmt.Name)
	r.define(stmt.Name)

	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == stmt.Name.Lexeme {
			r.sink.TokenError(stmt.Superclass.Name, "A class can't inherit from itself.")
		}
		r.classType = classTypeSubclass
		r.resolveExpr(stmt.Superclass)

		r.beginScope()
		defer r.endScope()
		r.scopes.Peek()["super"] = true
	}

	r.beginScope()
	defer r.endScope()
	r.scopes.Peek()["this"] = true

	for _, method := range stmt.Methods {
		typ := funTypeMethod
		if method.Name.Lexeme == "init" {
			typ = funTypeInitializer
		}
		r.resolveFunction(method, typ)
	}
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch expr := expr.(type) {
	case *ast.Assign:
		r.resolveExpr(expr.Value)
		r.resolveLocal(expr, expr.Name)
	case *ast.Binary:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case *ast.Call:
		r.resolveExpr(expr.Callee)
		for _, arg := range expr.Args {
			r.resolveExpr(arg)
		}
	case *ast.Get:
		r.resolveExpr(expr.Object)
	case *ast.Grouping:
		r.resolveExpr(expr.Expression)
	case *ast.Literal:
		// Nothing to resolve.
	case *ast.Logical:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case *ast.Array:
		for _, v := range expr.Values {
			r.resolveExpr(v)
		}
	case *ast.Set:
		r.resolveExpr(expr.Value)
		r.resolveExpr(expr.Object)
	case *ast.Super:
		switch r.classType {
		case classTypeNone:
			r.sink.TokenError(expr.Keyword, "Can't use 'super' outside of a class.")
		case classTypeClass:
			r.sink.TokenError(expr.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(expr, expr.Keyword)
	case *ast.This:
		if r.classType == classTypeNone {
			r.sink.TokenError(expr.Keyword, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(expr, expr.Keyword)
	case *ast.Unary:
		r.resolveExpr(expr.Right)
	case *ast.Variable:
		if r.scopes.Len() > 0 {
			if defined, ok := r.scopes.Peek()[expr.Name.Lexeme]; ok && !defined {
				r.sink.TokenError(expr.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(expr, expr.Name)
	default:
		panic(fmt.Sprintf("resolver: unexpected expression type %T", expr))
	}
}
