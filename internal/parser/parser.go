// Package parser implements a Pratt expression parser and statement
// dispatcher over the lexer's token stream.
package parser

import (
	"fmt"
	"strconv"

	"github.com/easyjs-lang/easyjs/internal/ast"
	"github.com/easyjs-lang/easyjs/internal/lexer"
	"github.com/easyjs-lang/easyjs/internal/token"
)

// Operator precedences, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGN      // =
	AS          // as
	DCOALESCE   // ??
	COALESCE    // ?
	OR          // or ||
	AND         // and &&
	EQUALS      // == != is
	LESSGREATER // < > <= >=
	INOP        // in
	OFOP        // of
	RANGE       // ..
	SUM         // + - += -=
	PRODUCT     // * / % *= /=
	AWAIT       // await
	CALL        // (
	INDEX       // [
	DOT         // .
	NEWOP       // new
)

var precedences = map[token.Type]int{
	token.Assign:             ASSIGN,
	token.PlusEquals:         SUM,
	token.MinusEquals:        SUM,
	token.AsteriskEquals:     PRODUCT,
	token.SlashEquals:        PRODUCT,
	token.As:                 AS,
	token.DoubleQuestionMark: DCOALESCE,
	token.QuestionMark:       COALESCE,
	token.OrSymbol:           OR,
	token.AndSymbol:          AND,
	token.EQ:                 EQUALS,
	token.NotEQ:              EQUALS,
	token.Is:                 EQUALS,
	token.LT:                 LESSGREATER,
	token.GT:                 LESSGREATER,
	token.LTOrEQ:             LESSGREATER,
	token.GTOrEQ:             LESSGREATER,
	token.In:                 INOP,
	token.Of:                 OFOP,
	token.DotDot:             RANGE,
	token.Plus:               SUM,
	token.Minus:              SUM,
	token.Asterisk:           PRODUCT,
	token.Slash:              PRODUCT,
	token.Modulus:            PRODUCT,
	token.Await:              AWAIT,
	token.LParen:             CALL,
	token.LBracket:           INDEX,
	token.Dot:                DOT,
	token.New:                NEWOP,
}

func precedenceOf(t token.Type) int {
	if p, ok := precedences[t]; ok {
		return p
	}
	return LOWEST
}

// Parser consumes tokens from a Lexer and produces an ast.Program. Errors
// accumulate in Errors; a non-empty list aborts code generation for the unit.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	// Errors collects parse failures, one human-readable message each.
	Errors []string
}

// New creates a parser primed with the first two tokens.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) peekPrecedence() int { return precedenceOf(p.peekToken.Type) }
func (p *Parser) curPrecedence() int  { return precedenceOf(p.curToken.Type) }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.Errors = append(p.Errors, fmt.Sprintf(
		"expected next token to be %s, got %s instead (file: %s, line %d, col %d)",
		t, p.peekToken.Type, p.peekToken.File, p.peekToken.Line, p.peekToken.Col))
}

func (p *Parser) errorAt(tok token.Token, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.Errors = append(p.Errors, fmt.Sprintf(
		"%s (file: %s, line %d, col %d)", msg, tok.File, tok.Line, tok.Col))
}

// curTokenIsEOS reports whether the current token terminates a statement.
// Semicolon and EOL are interchangeable terminators.
func (p *Parser) curTokenIsEOS() bool {
	return p.curTokenIs(token.Semicolon) || p.curTokenIs(token.EOL)
}

func (p *Parser) peekTokenIsEOS() bool {
	return p.peekTokenIs(token.Semicolon) || p.peekTokenIs(token.EOL)
}

// ParseProgram parses until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.EOL, token.Semicolon, token.Comment:
		return nil
	case token.IDENT:
		if p.peekTokenIs(token.Assign) || p.peekTokenIs(token.Colon) || p.peekTokenIs(token.TypeAssign) {
			return p.parseVariableStatement()
		}
		return p.parseExpressionStatement()
	case token.Return:
		return p.parseReturnStatement()
	case token.Import:
		return p.parseImportStatement()
	case token.JavaScript:
		return &ast.JavaScriptStatement{Token: p.curToken, Code: p.curToken.Literal}
	case token.For:
		return p.parseForStatement()
	case token.Struct:
		return p.parseStructStatement()
	case token.Class:
		return p.parseClassStatement()
	case token.Pub:
		return p.parseExportStatement()
	case token.Async:
		if p.peekTokenIs(token.LBrace) {
			return p.parseAsyncBlockStatement()
		}
		return p.parseExpressionStatement()
	case token.Match:
		return p.parseMatchStatement()
	case token.Enum:
		return p.parseEnumStatement()
	case token.Break:
		return &ast.BreakStatement{Token: p.curToken}
	case token.Continue:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.Macro:
		return p.parseMacroStatement()
	case token.Native:
		return p.parseNativeStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseVariableStatement parses `name = value`, `name : T = value` and
// `name := value`. The infer flag is set when no type annotation is written.
func (p *Parser) parseVariableStatement() ast.Statement {
	tok := p.curToken
	name := &ast.Identifier{Token: tok, Value: tok.Literal}

	var declared ast.Expression
	infer := true

	switch {
	case p.peekTokenIs(token.Colon):
		p.nextToken() // :
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		declared = &ast.TypeExpression{Token: p.curToken, Name: p.curToken.Literal}
		infer = false
		if !p.expectPeek(token.Assign) {
			return nil
		}
	case p.peekTokenIs(token.TypeAssign):
		p.nextToken()
	default:
		if !p.expectPeek(token.Assign) {
			return nil
		}
	}

	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}

	if p.peekTokenIsEOS() {
		p.nextToken()
	}

	return &ast.VariableStatement{Token: tok, Name: name, Type: declared, Value: value, Infer: infer}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()

	value := p.parseExpression(LOWEST)

	if p.peekTokenIsEOS() {
		p.nextToken()
	}
	return &ast.ReturnStatement{Token: tok, Value: value}
}

func (p *Parser) parseImportStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.STRING) {
		return nil
	}
	path := p.curToken.Literal

	var alias ast.Expression
	if p.peekTokenIs(token.As) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		alias = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if p.peekTokenIsEOS() {
		p.nextToken()
	}
	return &ast.ImportStatement{Token: tok, Path: path, Alias: alias}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if p.peekTokenIsEOS() {
		p.nextToken()
	}
	return &ast.ExpressionStatement{Token: tok, Expr: expr}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken() // step past {

	for !p.curTokenIs(token.RBrace) && !p.curTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	hasParen := false
	if p.peekTokenIs(token.LParen) {
		p.nextToken()
		hasParen = true
	}

	p.nextToken()
	condition := p.parseExpression(LOWEST)
	if condition == nil {
		return nil
	}

	if hasParen && !p.expectPeek(token.RParen) {
		return nil
	}
	if !p.expectPeek(token.LBrace) {
		return nil
	}

	body := p.parseBlockStatement()
	return &ast.ForStatement{Token: tok, Condition: condition, Body: body}
}

func (p *Parser) parseExportStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	return &ast.ExportStatement{Token: tok, Stmt: stmt}
}

func (p *Parser) parseAsyncBlockStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LBrace) {
		return nil
	}
	return &ast.AsyncBlockStatement{Token: tok, Block: p.parseBlockStatement()}
}

func (p *Parser) parseMatchStatement() ast.Statement {
	tok := p.curToken
	p.nextToken()

	subject := p.parseExpression(LOWEST)
	if subject == nil {
		return nil
	}
	if !p.expectPeek(token.LBrace) {
		return nil
	}

	var arms []ast.MatchArm
	for !p.peekTokenIs(token.RBrace) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		if p.curTokenIsEOS() {
			continue
		}

		pattern := p.parseExpression(LOWEST)
		if pattern == nil {
			return nil
		}
		if !p.expectPeek(token.Colon) {
			return nil
		}
		p.nextToken()

		var body ast.Statement
		if p.curTokenIs(token.LBrace) {
			body = p.parseBlockStatement()
		} else {
			body = p.parseStatement()
		}
		arms = append(arms, ast.MatchArm{Pattern: pattern, Body: body})
	}
	if !p.expectPeek(token.RBrace) {
		return nil
	}

	return &ast.MatchStatement{Token: tok, Subject: subject, Arms: arms}
}

func (p *Parser) parseEnumStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	if !p.expectPeek(token.LBrace) {
		return nil
	}

	var options []ast.Expression
	for !p.peekTokenIs(token.RBrace) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		if p.curTokenIsEOS() || p.curTokenIs(token.Comma) {
			continue
		}
		options = append(options, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}
	if !p.expectPeek(token.RBrace) {
		return nil
	}
	return &ast.EnumStatement{Token: tok, Name: name, Options: options}
}

// parseMacroStatement captures the macro body verbatim. A `!` after the name
// marks the macro hygienic: its expansion is evaluated at compile time.
func (p *Parser) parseMacroStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	hygienic := false
	if p.peekTokenIs(token.Bang) {
		p.nextToken()
		hygienic = true
	}

	if !p.expectPeek(token.LParen) {
		return nil
	}
	params := p.parseExpressionList(token.RParen)

	if !p.expectPeek(token.LBrace) {
		return nil
	}
	body := p.parseBlockStatement()

	return &ast.MacroStatement{Token: tok, Name: name, Params: params, Body: body, Hygienic: hygienic}
}

func (p *Parser) parseNativeStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.LBrace) {
		return nil
	}
	block := p.parseBlockStatement()
	return &ast.NativeStatement{Token: tok, Body: block.Statements}
}

// parseStructStatement parses
// `struct S[p1,p2] with M1, M2 { fields... ; fn m(self) {...} }`.
func (p *Parser) parseStructStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	var ctorParams []ast.Expression
	if p.peekTokenIs(token.LBracket) {
		p.nextToken()
		ctorParams = p.parseExpressionList(token.RBracket)
	}

	var mixins []ast.Expression
	if p.peekTokenIs(token.With) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		mixins = append(mixins, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		for p.peekTokenIs(token.Comma) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			mixins = append(mixins, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		}
	}

	if !p.expectPeek(token.LBrace) {
		return nil
	}

	var variables []ast.Statement
	var methods []ast.Expression
	for !p.peekTokenIs(token.RBrace) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		switch p.curToken.Type {
		case token.EOL, token.Semicolon:
			continue
		case token.Function, token.Async, token.DocComment:
			if method := p.parseExpression(LOWEST); method != nil {
				methods = append(methods, method)
			}
		case token.IDENT:
			if stmt := p.parseVariableStatement(); stmt != nil {
				variables = append(variables, stmt)
			}
		default:
			p.errorAt(p.curToken, "unexpected %s in struct body", p.curToken.Type)
			return nil
		}
	}
	if !p.expectPeek(token.RBrace) {
		return nil
	}

	return &ast.StructStatement{
		Token: tok, Name: name,
		CtorParams: ctorParams, Mixins: mixins,
		Variables: variables, Methods: methods,
	}
}

// parseClassStatement parses `class C extends B1, B2 { ... }`. The `extends`
// contextual keyword lexes as a plain identifier.
func (p *Parser) parseClassStatement() ast.Statement {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	var extends []ast.Expression
	if p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "extends" {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		extends = append(extends, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		for p.peekTokenIs(token.Comma) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			extends = append(extends, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		}
	}

	if !p.expectPeek(token.LBrace) {
		return nil
	}
	block := p.parseBlockStatement()

	return &ast.ClassStatement{Token: tok, Name: name, Extends: extends, Body: block.Statements}
}

// ---- expressions ----

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixFn(p.curToken.Type)
	if prefix == nil {
		p.errorAt(p.curToken, "no prefix parse function for %s found", p.curToken.Type)
		return nil
	}
	left := prefix()

	for !(p.peekTokenIsEOS() || p.peekTokenIs(token.EOF)) && precedence < p.peekPrecedence() {
		infix := p.infixFn(p.peekToken.Type)
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *Parser) prefixFn(t token.Type) func() ast.Expression {
	switch t {
	case token.IDENT, token.Self:
		return p.parseIdentifier
	case token.INT:
		return p.parseIntegerLiteral
	case token.FLOAT:
		return p.parseFloatLiteral
	case token.Bang, token.Minus:
		return p.parsePrefixExpression
	case token.Not:
		return p.parseNotExpression
	case token.True, token.False:
		return p.parseBoolean
	case token.LParen:
		return p.parseGroupedExpression
	case token.If:
		return p.parseIfExpression
	case token.Function:
		return p.parseFunctionLiteral
	case token.STRING:
		return p.parseStringLiteral
	case token.DocComment:
		return p.parseDocComment
	case token.LBracket:
		return p.parseArrayLiteral
	case token.LBrace:
		return p.parseObjectLiteral
	case token.Async:
		return p.parseAsyncExpression
	case token.Await:
		return p.parseAwaitExpression
	case token.MacroSymbol:
		return p.parseMacroExpression
	case token.New:
		return p.parseNewExpression
	case token.QuestionMark:
		return p.parseNullLiteral
	case token.Spread:
		return p.parseSpreadExpression
	}
	return nil
}

func (p *Parser) infixFn(t token.Type) func(ast.Expression) ast.Expression {
	switch t {
	case token.Plus, token.Minus, token.Slash, token.Asterisk, token.Modulus,
		token.EQ, token.NotEQ, token.LT, token.GT, token.LTOrEQ, token.GTOrEQ,
		token.PlusEquals, token.MinusEquals, token.AsteriskEquals, token.SlashEquals:
		return p.parseInfixExpression
	case token.LParen:
		return p.parseCallExpression
	case token.Dot:
		return p.parseDotExpression
	case token.LBracket:
		return p.parseIndexExpression
	case token.DotDot:
		return p.parseRangeExpression
	case token.In:
		return p.parseInExpression
	case token.Of:
		return p.parseOfExpression
	case token.Assign:
		return p.parseAssignExpression
	case token.AndSymbol:
		return p.parseAndExpression
	case token.OrSymbol:
		return p.parseOrExpression
	case token.DoubleQuestionMark:
		return p.parseDefaultIfNullExpression
	case token.As:
		return p.parseAsExpression
	case token.Is:
		return p.parseIsExpression
	}
	return nil
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.curToken
	lit := tok.Literal
	if tok.Type == token.Self {
		lit = "this"
	}
	return &ast.Identifier{Token: tok, Value: lit}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.curToken
	value, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.errorAt(tok, "could not parse %q as integer", tok.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: tok, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.curToken
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorAt(tok, "could not parse %q as float", tok.Literal)
		return nil
	}
	return &ast.FloatLiteral{Token: tok, Value: value}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.curToken
	operator := tok.Literal
	p.nextToken()
	right := p.parseExpression(LOWEST)
	return &ast.PrefixExpression{Token: tok, Operator: operator, Right: right}
}

func (p *Parser) parseNotExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.NotExpression{Token: tok, Expr: expr}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.True)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RParen) {
		return nil
	}
	return &ast.GroupedExpression{Token: tok, Expr: expr}
}

func (p *Parser) parseIfExpression() ast.Expression {
	tok := p.curToken

	hasParen := false
	if p.peekTokenIs(token.LParen) {
		hasParen = true
		p.nextToken()
	}

	p.nextToken()
	condition := p.parseExpression(LOWEST)
	if condition == nil {
		return nil
	}

	if hasParen && !p.expectPeek(token.RParen) {
		return nil
	}
	if !p.expectPeek(token.LBrace) {
		return nil
	}

	consequence := p.parseBlockStatement()

	var elseIf ast.Expression
	var elseStmt ast.Statement
	if p.peekTokenIs(token.Else) {
		p.nextToken()
		if !p.expectPeek(token.LBrace) {
			return nil
		}
		elseStmt = p.parseBlockStatement()
	} else if p.peekTokenIs(token.Elif) {
		p.nextToken()
		elseIf = p.parseIfExpression()
	}

	return &ast.IfExpression{
		Token: tok, Condition: condition,
		Consequence: consequence, ElseIf: elseIf, Else: elseStmt,
	}
}

// parseFunctionLiteral dispatches between a named function, a lambda
// (`fn(...)`) and an IIFE (`fn { ... }`).
func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(token.LParen) {
		return p.parseLambdaLiteral()
	}
	if p.peekTokenIs(token.LBrace) {
		p.nextToken()
		return &ast.IIFE{Token: tok, Body: p.parseBlockStatement()}
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.parseIdentifier()

	if !p.expectPeek(token.LParen) {
		return nil
	}
	params := p.parseFunctionParameters()

	returnType := p.parseOptionalReturnType()

	if !p.expectPeek(token.LBrace) {
		return nil
	}
	body := p.parseBlockStatement()

	return &ast.FunctionLiteral{Token: tok, Name: name, Params: params, ReturnType: returnType, Body: body}
}

// parseFunctionParameters parses `(a, b:int, self)` starting at `(`.
func (p *Parser) parseFunctionParameters() []ast.Expression {
	var params []ast.Expression

	if p.peekTokenIs(token.RParen) {
		p.nextToken()
		return params
	}

	p.nextToken()
	params = append(params, p.parseFunctionParameter())

	for p.peekTokenIs(token.Comma) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.parseFunctionParameter())
	}

	if !p.expectPeek(token.RParen) {
		return nil
	}
	return params
}

func (p *Parser) parseFunctionParameter() ast.Expression {
	tok := p.curToken
	name := tok.Literal
	if tok.Type == token.Self {
		name = "this"
	}

	if p.peekTokenIs(token.Colon) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		typ := &ast.TypeExpression{Token: p.curToken, Name: p.curToken.Literal}
		return &ast.IdentifierWithType{Token: tok, Name: name, Type: typ}
	}
	return &ast.Identifier{Token: tok, Value: name}
}

// parseOptionalReturnType parses `:type` after a parameter list.
func (p *Parser) parseOptionalReturnType() ast.Expression {
	if !p.peekTokenIs(token.Colon) {
		return nil
	}
	p.nextToken()
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	return &ast.TypeExpression{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseLambdaLiteral() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.LParen) {
		return nil
	}
	params := p.parseFunctionParameters()

	if !p.expectPeek(token.LBrace) {
		return nil
	}
	body := p.parseBlockStatement()

	return &ast.LambdaLiteral{Token: tok, Params: params, Body: body}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseDocComment() ast.Expression {
	tok := p.curToken
	lines := []string{tok.Literal}
	for p.peekTokenIs(token.DocComment) {
		p.nextToken()
		lines = append(lines, p.curToken.Literal)
	}
	return &ast.DocCommentExpression{Token: tok, Lines: lines}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	elements := p.parseExpressionList(token.RBracket)
	return &ast.ArrayLiteral{Token: tok, Elements: elements}
}

// parseExpressionList parses comma-separated expressions up to end, starting
// with the opening delimiter as the current token.
func (p *Parser) parseExpressionList(end token.Type) []ast.Expression {
	var list []ast.Expression

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	if e := p.parseExpression(LOWEST); e != nil {
		list = append(list, e)
	}

	for p.peekTokenIs(token.Comma) {
		p.nextToken()
		p.nextToken()
		if e := p.parseExpression(LOWEST); e != nil {
			list = append(list, e)
		}
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.curToken
	var pairs []ast.ObjectProperty

	if p.peekTokenIs(token.RBrace) {
		p.nextToken()
		return &ast.ObjectLiteral{Token: tok, Pairs: pairs}
	}

	for !p.peekTokenIs(token.EOF) {
		p.nextToken()
		if p.curTokenIsEOS() {
			continue
		}
		if p.curTokenIs(token.RBrace) {
			break
		}

		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}

		// shorthand: `{name}` emits the key only
		value := key
		if p.peekTokenIs(token.Colon) {
			p.nextToken()
			p.nextToken()
			value = p.parseExpression(LOWEST)
			if value == nil {
				return nil
			}
		}
		pairs = append(pairs, ast.ObjectProperty{Key: key, Value: value})

		if p.peekTokenIs(token.Comma) {
			p.nextToken()
		}
	}

	if !p.curTokenIs(token.RBrace) && !p.expectPeek(token.RBrace) {
		return nil
	}
	return &ast.ObjectLiteral{Token: tok, Pairs: pairs}
}

func (p *Parser) parseAsyncExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.Function) {
		return nil
	}
	fn := p.parseFunctionLiteral()
	if fn == nil {
		return nil
	}
	return &ast.AsyncExpression{Token: tok, Expr: fn}
}

func (p *Parser) parseAwaitExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.AwaitExpression{Token: tok, Expr: value}
}

// parseMacroExpression parses `@name(args...)` and dotted `@ns.name(...)`.
func (p *Parser) parseMacroExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	var name ast.Expression = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	for p.peekTokenIs(token.Dot) {
		dotTok := p.peekToken
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		right := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		name = &ast.DotExpression{Token: dotTok, Left: name, Right: right}
	}

	if !p.expectPeek(token.LParen) {
		return nil
	}
	args := p.parseExpressionList(token.RParen)

	return &ast.MacroExpression{Token: tok, Name: name, Args: args}
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.NewClassExpression{Token: tok, Expr: expr}
}

func (p *Parser) parseSpreadExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.SpreadExpression{Token: tok, Expr: expr}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	operator := tok.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.InfixExpression{Token: tok, Left: left, Operator: operator, Right: right}
}

func (p *Parser) parseCallExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	args := p.parseExpressionList(token.RParen)
	return &ast.CallExpression{Token: tok, Function: left, Args: args}
}

func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	right := p.parseExpression(DOT)
	if right == nil {
		return nil
	}
	return &ast.DotExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if p.peekTokenIs(token.RBracket) {
		return nil
	}
	p.nextToken()

	index := p.parseExpression(LOWEST)
	if index == nil {
		return nil
	}
	if !p.expectPeek(token.RBracket) {
		return nil
	}
	return &ast.IndexExpression{Token: tok, Left: left, Index: index}
}

// parseRangeExpression parses `start..end`; the end may be empty when the
// range is immediately closed by a delimiter.
func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(token.RBracket) || p.peekTokenIs(token.RParen) || p.peekTokenIsEOS() {
		return &ast.RangeExpression{Token: tok, Start: left}
	}

	p.nextToken()
	right := p.parseExpression(RANGE)
	if right == nil {
		return nil
	}
	return &ast.RangeExpression{Token: tok, Start: left, End: right}
}

func (p *Parser) parseInExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(LOWEST)
	if right == nil {
		return nil
	}
	return &ast.InExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseOfExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(LOWEST)
	if right == nil {
		return nil
	}
	return &ast.OfExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(LOWEST)
	return &ast.AssignExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseAndExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(LOWEST)
	return &ast.AndExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseOrExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(LOWEST)
	return &ast.OrExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseDefaultIfNullExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(LOWEST)
	return &ast.DefaultIfNullExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseAsExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	right := p.parseExpression(LOWEST)
	return &ast.AsExpression{Token: tok, Left: left, Right: right}
}

func (p *Parser) parseIsExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(EQUALS)
	if right == nil {
		return nil
	}
	return &ast.IsExpression{Token: tok, Left: left, Right: right}
}
