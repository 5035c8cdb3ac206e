// Package interpreter implements the tree-walking evaluator which executes a resolved Lox AST, producing its
// side effects on standard output.
package interpreter

import (
	"fmt"
	"io"
	"time"

	"github.com/marcuscaisey/loxwalk/ast"
	"github.com/marcuscaisey/loxwalk/loxerror"
	"github.com/marcuscaisey/loxwalk/token"
)

// returnSignal unwinds the Go call stack from a `return` statement back to the innermost function.Call frame. It's
// never allowed to escape past a function boundary.
type returnSignal struct {
	value any
}

// Interpreter walks a resolved AST, evaluating expressions and executing statements against a chain of
// environments. It is not safe for concurrent use.
type Interpreter struct {
	globals     *environment
	environment *environment
	locals      map[ast.Expr]int
	out         io.Writer
}

// New creates an Interpreter which writes the output of `print` statements to out.
func New(out io.Writer) *Interpreter {
	globals := newEnvironment(nil)
	globals.define("clock", &nativeFunction{
		name:  "clock",
		arity: 0,
		fn: func([]any) any {
			return float64(time.Now().UnixNano()) / float64(time.Second)
		},
	})
	return &Interpreter{
		globals:     globals,
		environment: globals,
		out:         out,
	}
}

// Interpret executes stmts using the variable-distance table produced by the resolver.
// If evaluation raises a Lox runtime error, it is reported to sink and execution stops; a runtime error never escapes
// Interpret as a panic. Any other panic is re-raised.
func (in *Interpreter) Interpret(stmts []ast.Stmt, locals map[ast.Expr]int, sink *loxerror.Sink) {
	in.locals = locals
	defer func() {
		if r := recover(); r != nil {
			runtimeErr, ok := r.(*loxerror.RuntimeError)
			if !ok {
				panic(r)
			}
			sink.RuntimeError(runtimeErr)
		}
	}()
	for _, stmt := range stmts {
		in.execute(stmt)
	}
}

func (in *Interpreter) execute(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.Block:
		in.executeBlock(stmt.Stmts, newEnvironment(in.environment))
	case *ast.Class:
		in.executeClass(stmt)
	case *ast.Expression:
		in.evaluate(stmt.Expression)
	case *ast.Function:
		fn := &function{decl: stmt, closure: in.environment}
		in.environment.define(stmt.Name.Lexeme, fn)
	case *ast.If:
		if isTruthy(in.evaluate(stmt.Condition)) {
			in.execute(stmt.ThenBranch)
		} else if stmt.ElseBranch != nil {
			in.execute(stmt.ElseBranch)
		}
	case *ast.Print:
		fmt.Fprintln(in.out, stringify(in.evaluate(stmt.Expression)))
	case *ast.Return:
		var value any
		if stmt.Value != nil {
			value = in.evaluate(stmt.Value)
		}
		panic(returnSignal{value: value})
	case *ast.Var:
		var value any
		if stmt.Initializer != nil {
			value = in.evaluate(stmt.Initializer)
		}
		in.environment.define(stmt.Name.Lexeme, value)
	case *ast.While:
		for isTruthy(in.evaluate(stmt.Condition)) {
			in.execute(stmt.Body)
		}
	default:
		panic(fmt.Sprintf("interpreter: unexpected statement type %T", stmt))
	}
}

// executeBlock executes stmts against env, restoring the previously active environment whether the block exits
// normally or via a `return` panic unwinding through it.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *environment) {
	previous := in.environment
	in.environment = env
	defer func() { in.environment = previous }()
	for _, stmt := range stmts {
		in.execute(stmt)
	}
}

func (in *Interpreter) executeClass(stmt *ast.Class) {
	var superclass *class
	if stmt.Superclass != nil {
		v := in.evaluate(stmt.Superclass)
		sc, ok := v.(*class)
		if !ok {
			panic(loxerror.NewRuntimeError(stmt.Superclass.Name, "Superclass must be a class."))
		}
		superclass = sc
	}

	in.environment.define(stmt.Name.Lexeme, nil)

	env := in.environment
	if stmt.Superclass != nil {
		env = newEnvironment(in.environment)
		env.define("super", superclass)
	}

	methods := map[string]*function{}
	for _, methodDecl := range stmt.Methods {
		methods[methodDecl.Name.Lexeme] = &function{
			decl:          methodDecl,
			closure:       env,
			isInitializer: methodDecl.Name.Lexeme == "init",
		}
	}

	cls := &class{name: stmt.Name.Lexeme, superclass: superclass, methods: methods}
	in.environment.assign(stmt.Name, cls)
}

func (in *Interpreter) evaluate(expr ast.Expr) any {
	switch expr := expr.(type) {
	case *ast.Assign:
		value := in.evaluate(expr.Value)
		if distance, ok := in.locals[expr]; ok {
			in.environment.assignAt(distance, expr.Name, value)
		} else {
			in.globals.assign(expr.Name, value)
		}
		return value
	case *ast.Binary:
		return in.evaluateBinary(expr)
	case *ast.Call:
		return in.evaluateCall(expr)
	case *ast.Get:
		object := in.evaluate(expr.Object)
		instance, ok := object.(*Instance)
		if !ok {
			panic(loxerror.NewRuntimeError(expr.Name, "Only instances have properties."))
		}
		return instance.get(expr.Name)
	case *ast.Grouping:
		return in.evaluate(expr.Expression)
	case *ast.Literal:
		return expr.Value
	case *ast.Logical:
		left := in.evaluate(expr.Left)
		if expr.Op.Type == token.Or {
			if isTruthy(left) {
				return left
			}
		} else {
			if !isTruthy(left) {
				return left
			}
		}
		return in.evaluate(expr.Right)
	case *ast.Array:
		elements := make([]any, len(expr.Values))
		for i, v := range expr.Values {
			elements[i] = in.evaluate(v)
		}
		return &Array{Elements: elements}
	case *ast.Set:
		object := in.evaluate(expr.Object)
		instance, ok := object.(*Instance)
		if !ok {
			panic(loxerror.NewRuntimeError(expr.Name, "Only instances have fields."))
		}
		value := in.evaluate(expr.Value)
		instance.set(expr.Name, value)
		return value
	case *ast.Super:
		distance := in.locals[expr]
		superclass := in.environment.getAt(distance, "super").(*class)
		instance := in.environment.getAt(distance-1, "this").(*Instance)
		method := superclass.findMethod(expr.Method.Lexeme)
		if method == nil {
			panic(loxerror.NewRuntimeError(expr.Method, "Undefined property '%s'.", expr.Method.Lexeme))
		}
		return method.bind(instance)
	case *ast.This:
		return in.lookUpVariable(expr.Keyword, expr)
	case *ast.Unary:
		return in.evaluateUnary(expr)
	case *ast.Variable:
		return in.lookUpVariable(expr.Name, expr)
	default:
		panic(fmt.Sprintf("interpreter: unexpected expression type %T", expr))
	}
}

func (in *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) any {
	if distance, ok := in.locals[expr]; ok {
		return in.environment.getAt(distance, name.Lexeme)
	}
	return in.globals.get(name)
}

func (in *Interpreter) evaluateUnary(expr *ast.Unary) any {
	right := in.evaluate(expr.Right)
	switch expr.Op.Type {
	case token.Minus:
		n, ok := right.(float64)
		if !ok {
			panic(loxerror.NewRuntimeError(expr.Op, "Operand must be a number."))
		}
		return -n
	case token.Bang:
		return !isTruthy(right)
	default:
		panic(fmt.Sprintf("interpreter: unexpected unary operator %s", expr.Op.Type))
	}
}

func (in *Interpreter) evaluateBinary(expr *ast.Binary) any {
	left := in.evaluate(expr.Left)
	right := in.evaluate(expr.Right)

	switch expr.Op.Type {
	case token.Minus, token.Slash, token.Star, token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		l, lok := left.(float64)
		r, rok := right.(float64)
		if !lok || !rok {
			panic(loxerror.NewRuntimeError(expr.Op, "Operands must be numbers."))
		}
		switch expr.Op.Type {
		case token.Minus:
			return l - r
		case token.Slash:
			if r == 0 {
				panic(loxerror.NewRuntimeError(expr.Op, "Division by zero error."))
			}
			return l / r
		case token.Star:
			return l * r
		case token.Greater:
			return l > r
		case token.GreaterEqual:
			return l >= r
		case token.Less:
			return l < r
		case token.LessEqual:
			return l <= r
		}
	case token.Plus:
		if l, ok := left.(float64); ok {
			if r, ok := right.(float64); ok {
				return l + r
			}
		}
		if l, ok := left.(string); ok {
			if r, ok := right.(string); ok {
				return l + r
			}
		}
		panic(loxerror.NewRuntimeError(expr.Op, "Operands must be two numbers or two strings."))
	case token.BangEqual:
		return !isEqual(left, right)
	case token.EqualEqual:
		return isEqual(left, right)
	}
	panic(fmt.Sprintf("interpreter: unexpected binary operator %s", expr.Op.Type))
}

func (in *Interpreter) evaluateCall(expr *ast.Call) any {
	callee := in.evaluate(expr.Callee)

	args := make([]any, len(expr.Args))
	for i, arg := range expr.Args {
		args[i] = in.evaluate(arg)
	}

	callable, ok := callee.(Callable)
	if !ok {
		panic(loxerror.NewRuntimeError(expr.Paren, "Can only call functions and classes."))
	}
	if len(args) != callable.Arity() {
		panic(loxerror.NewRuntimeError(expr.Paren, "Expected %d arguments but got %d.", callable.Arity(), len(args)))
	}
	return callable.Call(in, args)
}
