package interpreter

import (
	"github.com/marcuscaisey/loxwalk/loxerror"
	"github.com/marcuscaisey/loxwalk/token"
)

// environment is a lexical scope: a mapping from name to value plus an optional link to the enclosing scope.
// Environments are shared by reference since closures capture them; they can form cycles (a method's closure holds
// `this` bound to an instance whose class's methods close over that same environment), which is fine since Go's
// garbage collector tolerates cycles.
type environment struct {
	enclosing *environment
	values    map[string]any
}

func newEnvironment(enclosing *environment) *environment {
	return &environment{enclosing: enclosing, values: map[string]any{}}
}

// define binds name to value in this environment, overwriting any existing binding.
func (e *environment) define(name string, value any) {
	e.values[name] = value
}

func (e *environment) ancestor(distance int) *environment {
	env := e
	for range distance {
		env = env.enclosing
	}
	return env
}

func (e *environment) getAt(distance int, name string) any {
	return e.ancestor(distance).values[name]
}

func (e *environment) assignAt(distance int, name token.Token, value any) {
	e.ancestor(distance).values[name.Lexeme] = value
}

func (e *environment) get(name token.Token) any {
	if v, ok := e.values[name.Lexeme]; ok {
		return v
	}
	if e.enclosing != nil {
		return e.enclosing.get(name)
	}
	panic(loxerror.NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme))
}

func (e *environment) assign(name token.Token, value any) {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return
	}
	if e.enclosing != nil {
		e.enclosing.assign(name, value)
		return
	}
	panic(loxerror.NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme))
}
