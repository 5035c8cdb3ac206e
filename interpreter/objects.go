package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcuscaisey/loxwalk/ast"
	"github.com/marcuscaisey/loxwalk/loxerror"
	"github.com/marcuscaisey/loxwalk/token"
)

// Lox values are represented using Go's own dynamic typing: nil, bool, float64 and string map directly onto Lox's
// nil, boolean, number and string. *Array, Callable and *Instance cover the rest.

// Array is a Lox array: the evaluated elements of an array literal, in order. No Lox operation reads, sets or
// appends individual elements.
type Array struct {
	Elements []any
}

func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, v := range a.Elements {
		parts[i] = stringify(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Callable is implemented by every value which can be called: functions, classes (as constructors) and natives.
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []any) any
	String() string
}

// nativeFunction wraps a built-in function implemented in Go, such as clock.
type nativeFunction struct {
	name  string
	arity int
	fn    func(args []any) any
}

func (n *nativeFunction) Arity() int { return n.arity }
func (n *nativeFunction) Call(_ *Interpreter, args []any) any { return n.fn(args) }
func (n *nativeFunction) String() string { return "<native fn>" }

// function is a user-defined function or method: the AST of its declaration, the environment it closes over, and
// whether it's a class's init method (which always returns the bound instance).
type function struct {
	decl          *ast.Function
	closure       *environment
	isInitializer bool
}

func (f *function) Arity() int { return len(f.decl.Params) }

func (f *function) String() string {
	return fmt.Sprintf("<fn %s>", f.decl.Name.Lexeme)
}

// bind returns a copy of f whose closure additionally binds `this` to instance. Each read of a method off an instance
// produces a fresh bound function this way; binding never mutates the original.
func (f *function) bind(instance *Instance) *function {
	env := newEnvironment(f.closure)
	env.define("this", instance)
	return &function{decl: f.decl, closure: env, isInitializer: f.isInitializer}
}

func (f *function) Call(in *Interpreter, args []any) (result any) {
	env := newEnvironment(f.closure)
	for i, param := range f.decl.Params {
		env.define(param.Lexeme, args[i])
	}

	defer func() {
		if r := recover(); r != nil {
			ret, ok := r.(returnSignal)
			if !ok {
				panic(r)
			}
			if f.isInitializer {
				result = f.closure.getAt(0, "this")
				return
			}
			result = ret.value
		}
	}()

	in.executeBlock(f.decl.Body, env)

	if f.isInitializer {
		return f.closure.getAt(0, "this")
	}
	return nil
}

// class is a Lox class: its name, optional superclass, and its own (non-inherited) methods.
type class struct {
	name       string
	superclass *class
	methods    map[string]*function
}

func (c *class) String() string { return c.name }

func (c *class) findMethod(name string) *function {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil
}

func (c *class) Arity() int {
	if init := c.findMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

func (c *class) Call(in *Interpreter, args []any) any {
	instance := &Instance{class: c, fields: map[string]any{}}
	if init := c.findMethod("init"); init != nil {
		init.bind(instance).Call(in, args)
	}
	return instance
}

// Instance is an instance of a Lox class: a back-reference to its class and its own fields, created on first
// assignment.
type Instance struct {
	class  *class
	fields map[string]any
}

func (i *Instance) String() string {
	return i.class.name + " instance"
}

// get reads a property off the instance: fields take priority over methods, and a found method is bound to the
// instance before being returned.
func (i *Instance) get(name token.Token) any {
	if v, ok := i.fields[name.Lexeme]; ok {
		return v
	}
	if method := i.class.findMethod(name.Lexeme); method != nil {
		return method.bind(i)
	}
	panic(loxerror.NewRuntimeError(name, "Undefined property '%s'.", name.Lexeme))
}

func (i *Instance) set(name token.Token, value any) {
	i.fields[name.Lexeme] = value
}

// isTruthy implements Lox's truthiness rule: nil and false are false, everything else is true.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// isEqual implements Lox's `==`. Values of different kinds are never equal; in particular a bool is never equal to a
// number, even 1 and 0.
func isEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	aBool, aIsBool := a.(bool)
	bBool, bIsBool := b.(bool)
	if aIsBool || bIsBool {
		return aIsBool && bIsBool && aBool == bBool
	}
	return a == b
}

// stringify renders a Lox value the way `print` does.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return s
	case string:
		return v
	case *Array:
		return v.String()
	case Callable:
		return v.String()
	case *Instance:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
