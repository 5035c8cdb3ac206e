// Package parser implements a recursive-descent parser which converts a stream of Lox tokens into an AST, with
// panic-mode error recovery at statement boundaries.
package parser

import (
	"github.com/marcuscaisey/loxwalk/ast"
	"github.com/marcuscaisey/loxwalk/loxerror"
	"github.com/marcuscaisey/loxwalk/scanner"
	"github.com/marcuscaisey/loxwalk/token"
)

const maxArgs = 255

// Parse scans src and parses it into a list of statements.
// Scanning and parsing errors are reported to sink; if any were reported, the returned statements may be incomplete
// or nil.
func Parse(src []byte, sink *loxerror.Sink) []ast.Stmt {
	tokens := scanner.Scan(src, sink.ScannerError)
	p := &parser{tokens: tokens, sink: sink}
	return p.parseProgram()
}

// parseError is thrown (via panic) to unwind to the nearest statement boundary during panic-mode recovery. It is
// always recovered inside the parser; it never escapes Parse.
type parseError struct{}

type parser struct {
	tokens  []token.Token
	current int
	sink    *loxerror.Sink
}

func (p *parser) parseProgram() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func (p *parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(token.Class):
		return p.classDecl()
	case p.match(token.Fun):
		return p.function("function")
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *parser) classDecl() ast.Stmt {
	name := p.consume(token.Ident, "Expect class name.")

	var superclass *ast.Variable
	if p.match(token.Less) {
		p.consume(token.Ident, "Expect superclass name.")
		superclass = &ast.Variable{Name: p.previous()}
	}

	p.consume(token.LeftBrace, "Expect '{' before class body.")
	var methods []*ast.Function
	for !p.check(token.RightBrace) && !p.atEnd() {
		methods = append(methods, p.function("method"))
	}
	p.consume(token.RightBrace, "Expect '}' after class body.")

	return &ast.Class{Name: name, Superclass: superclass, Methods: methods}
}

func (p *parser) function(kind string) *ast.Function {
	name := p.consume(token.Ident, "Expect "+kind+" name.")
	p.consume(token.LeftParen, "Expect '(' after "+kind+" name.")
	var params []token.Token
	if !p.check(token.RightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.Ident, "Expect parameter name."))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before "+kind+" body.")
	body := p.block()
	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *parser) varDecl() ast.Stmt {
	name := p.consume(token.Ident, "Expect variable name.")
	var initializer ast.Expr
	if p.match(token.Equal) {
		initializer = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	return &ast.Var{Name: name, Initializer: initializer}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.LeftBrace):
		return &ast.Block{Stmts: p.block()}
	default:
		return p.exprStmt()
	}
}

// forStmt desugars `for (init; cond; incr) body` into a block containing the initialiser followed by a while loop,
// so that the rest of the pipeline never needs to know about for loops.
func (p *parser) forStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	switch {
	case p.match(token.Semicolon):
		// no initialiser
	case p.match(token.Var):
		initializer = p.varDecl()
	default:
		initializer = p.exprStmt()
	}

	var condition ast.Expr
	if !p.check(token.Semicolon) {
		condition = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(token.RightParen) {
		increment = p.expression()
	}
	p.consume(token.RightParen, "Expect ')' after for clauses.")

	body := p.statement()

	if increment != nil {
		body = &ast.Block{Stmts: []ast.Stmt{body, &ast.Expression{Expression: increment}}}
	}
	if condition == nil {
		condition = &ast.Literal{Value: true}
	}
	body = &ast.While{Condition: condition, Body: body}
	if initializer != nil {
		body = &ast.Block{Stmts: []ast.Stmt{initializer, body}}
	}
	return body
}

func (p *parser) ifStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(token.RightParen, "Expect ')' after if condition.")
	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(token.Else) {
		elseBranch = p.statement()
	}
	return &ast.If{Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

func (p *parser) printStmt() ast.Stmt {
	value := p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	return &ast.Print{Expression: value}
}

func (p *parser) returnStmt() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after return value.")
	return &ast.Return{Keyword: keyword, Value: value}
}

func (p *parser) whileStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")
	body := p.statement()
	return &ast.While{Condition: condition, Body: body}
}

func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
	return stmts
}

func (p *parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	return &ast.Expression{Expression: expr}
}

func (p *parser) expression() ast.Expr {
	return p.assignment()
}

// assignment parses an assignment expression. Since the parser doesn't know until after parsing the whole left-hand
// side whether it's looking at an assignment, it first parses it as an ordinary expression and then, if an '='
// follows, converts it in place: a Variable becomes an Assign, a Get becomes a Set. Anything else is an invalid
// assignment target; the error is reported but parsing continues with the left-hand side unchanged.
func (p *parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.Equal) {
		equals := p.previous()
		value := p.assignment()

		switch e := expr.(type) {
		case *ast.Variable:
			return &ast.Assign{Name: e.Name, Value: value}
		case *ast.Get:
			return &ast.Set{Object: e.Object, Name: e.Name, Value: value}
		default:
			p.sink.TokenError(equals, "Invalid assignment target.")
		}
	}

	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.Or) {
		op := p.previous()
		right := p.and()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.And) {
		op := p.previous()
		right := p.equality()
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BangEqual, token.EqualEqual) {
		op := p.previous()
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.previous()
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Minus, token.Plus) {
		op := p.previous()
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Slash, token.Star) {
		op := p.previous()
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous()
		right := p.unary()
		return &ast.Unary{Op: op, Right: right}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.consume(token.Ident, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RightParen) {
		for {
			if len(args) >= maxArgs {
				p.errorAtCurrent("Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.consume(token.RightParen, "Expect ')' after arguments.")
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.False):
		return &ast.Literal{Value: false}
	case p.match(token.True):
		return &ast.Literal{Value: true}
	case p.match(token.Nil):
		return &ast.Literal{Value: nil}
	case p.match(token.Number, token.String):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(token.Super):
		keyword := p.previous()
		p.consume(token.Dot, "Expect '.' after 'super'.")
		method := p.consume(token.Ident, "Expect superclass method name.")
		return &ast.Super{Keyword: keyword, Method: method}
	case p.match(token.This):
		return &ast.This{Keyword: p.previous()}
	case p.match(token.Ident):
		return &ast.Variable{Name: p.previous()}
	case p.match(token.LeftParen):
		expr := p.expression()
		p.consume(token.RightParen, "Expect ')' after expression.")
		return &ast.Grouping{Expression: expr}
	case p.match(token.LeftBrack):
		var values []ast.Expr
		if !p.check(token.RightBrack) {
			for {
				values = append(values, p.expression())
				if !p.match(token.Comma) {
					break
				}
			}
		}
		p.consume(token.RightBrack, "Expect ']' after array elements.")
		return &ast.Array{Values: values}
	default:
		panic(p.error(p.peek(), "Expect expression."))
	}
}

// --- token stream helpers ---

func (p *parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) check(t token.Type) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) atEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *parser) consume(t token.Type, msg string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	panic(p.error(p.peek(), msg))
}

func (p *parser) errorAtCurrent(msg string) {
	p.sink.TokenError(p.peek(), msg)
}

// error reports a parse error via the sink and returns a sentinel value which the caller may choose to panic with in
// order to trigger panic-mode recovery. Reporting never corrupts the token cursor.
func (p *parser) error(tok token.Token, msg string) parseError {
	p.sink.TokenError(tok, msg)
	return parseError{}
}

// synchronize discards tokens until it finds a likely statement boundary, so that parsing of the next declaration can
// resume after a parse error without cascading further errors.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == token.Semicolon {
			return
		}
		switch p.peek().Type {
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
