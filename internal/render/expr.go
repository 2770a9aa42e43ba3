package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenDot
	tokenComma
	tokenPipe
	tokenAssign
	tokenEq
	tokenNeq
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '.':
			tokens = append(tokens, token{kind: tokenDot, raw: "."})
			i++
		case ch == ',':
			tokens = append(tokens, token{kind: tokenComma, raw: ","})
			i++
		case ch == '|':
			tokens = append(tokens, token{kind: tokenPipe, raw: "|"})
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == '[':
			tokens = append(tokens, token{kind: tokenLBracket, raw: "["})
			i++
		case ch == ']':
			tokens = append(tokens, token{kind: tokenRBracket, raw: "]"})
			i++
		case ch == '=':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenEq, raw: "=="})
				i += 2
				continue
			}
			tokens = append(tokens, token{kind: tokenAssign, raw: "="})
			i++
		case ch == '!':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errors.New("unexpected '!'; use 'not' or '!='")
			}
			tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
			i += 2
		case ch == '"' || ch == '\'':
			value, n, err := scanString(input[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i += n
		case isDigit(ch) || (ch == '-' && i+1 < len(input) && isDigit(input[i+1])):
			start := i
			i++
			for i < len(input) && (isDigit(input[i]) ||
				(input[i] == '.' && i+1 < len(input) && isDigit(input[i+1]) && !isPathIndex(tokens))) {
				i++
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: input[start:i]})
		case isIdentStart(ch):
			start := i
			for i < len(input) && (isIdentStart(input[i]) || isDigit(input[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdentifier, raw: input[start:i]})
		default:
			return nil, fmt.Errorf("unexpected character %q", ch)
		}
	}

	return tokens, nil
}

// scanString reads a quoted literal at the start of input and returns its
// value and the number of bytes consumed.
func scanString(input string) (string, int, error) {
	quote := input[0]
	var b strings.Builder
	for i := 1; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '\\' && i+1 < len(input):
			i++
			switch input[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(input[i])
			}
		case c == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errors.New("unterminated string literal")
}

// isPathIndex reports whether a number being scanned is an index segment
// of a dotted path, as in items.0.name.
func isPathIndex(tokens []token) bool {
	return len(tokens) > 0 && tokens[len(tokens)-1].kind == tokenDot
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// scope is a chain of variable frames; loops push a frame per iteration.
type scope struct {
	vars   Map
	parent *scope
}

func (s *scope) lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// evalEnv is what expression evaluation needs from the renderer.
type evalEnv struct {
	scope   *scope
	filters map[string]Filter
}

// exprNode evaluates to a Value. A nil Value with a nil error means the
// expression referenced an undefined variable.
type exprNode interface {
	eval(env *evalEnv) (Value, error)
}

type exprLiteral struct {
	value Value
}

func (n exprLiteral) eval(*evalEnv) (Value, error) {
	return n.value, nil
}

type exprList struct {
	items []exprNode
}

func (n exprList) eval(env *evalEnv) (Value, error) {
	list := make(List, 0, len(n.items))
	for _, item := range n.items {
		v, err := item.eval(env)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errors.New("list literal contains an undefined value")
		}
		list = append(list, v)
	}
	return list, nil
}

type exprPath struct {
	parts []string
}

func (n exprPath) String() string {
	return strings.Join(n.parts, ".")
}

func (n exprPath) eval(env *evalEnv) (Value, error) {
	cur, ok := env.scope.lookup(n.parts[0])
	if !ok {
		return nil, nil
	}
	for _, part := range n.parts[1:] {
		cur, ok = member(cur, part)
		if !ok {
			return nil, nil
		}
	}
	return cur, nil
}

type exprOr struct {
	left  exprNode
	right exprNode
}

func (n exprOr) eval(env *evalEnv) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	if Truthy(left) {
		return Bool(true), nil
	}
	right, err := n.right.eval(env)
	if err != nil {
		return nil, err
	}
	return Bool(Truthy(right)), nil
}

type exprAnd struct {
	left  exprNode
	right exprNode
}

func (n exprAnd) eval(env *evalEnv) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	if !Truthy(left) {
		return Bool(false), nil
	}
	right, err := n.right.eval(env)
	if err != nil {
		return nil, err
	}
	return Bool(Truthy(right)), nil
}

type exprNot struct {
	inner exprNode
}

func (n exprNot) eval(env *evalEnv) (Value, error) {
	v, err := n.inner.eval(env)
	if err != nil {
		return nil, err
	}
	return Bool(!Truthy(v)), nil
}

type compareOp int

const (
	opEq compareOp = iota
	opNeq
	opIn
	opNotIn
)

type exprCompare struct {
	left  exprNode
	op    compareOp
	right exprNode
}

func (n exprCompare) eval(env *evalEnv) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case opEq:
		return Bool(equal(left, right)), nil
	case opNeq:
		return Bool(!equal(left, right)), nil
	default:
		found, err := contains(right, left)
		if err != nil {
			return nil, err
		}
		if n.op == opNotIn {
			found = !found
		}
		return Bool(found), nil
	}
}

type filterCall struct {
	name  string
	args  []exprNode
	names []string // parallel to args; "" for positional arguments
}

type exprFiltered struct {
	base    exprNode
	filters []filterCall
}

func (n exprFiltered) eval(env *evalEnv) (Value, error) {
	v, err := n.base.eval(env)
	if err != nil {
		return nil, err
	}

	calls := n.filters
	if v == nil {
		// An undefined value may only flow into a default filter.
		idx := -1
		for i, call := range calls {
			if call.name == "default" {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil
		}
		calls = calls[idx:]
	}

	for _, call := range calls {
		fn, ok := env.filters[call.name]
		if !ok {
			return nil, fmt.Errorf("unknown filter '%s'", call.name)
		}
		args := Args{Named: map[string]Value{}}
		for i, argExpr := range call.args {
			av, err := argExpr.eval(env)
			if err != nil {
				return nil, err
			}
			if av == nil {
				return nil, fmt.Errorf("filter '%s': argument is undefined", call.name)
			}
			if call.names[i] != "" {
				args.Named[call.names[i]] = av
			} else {
				args.Positional = append(args.Positional, av)
			}
		}
		v, err = fn(v, args)
		if err != nil {
			return nil, fmt.Errorf("filter '%s': %w", call.name, err)
		}
	}
	return v, nil
}

// exprParser parses the token stream of a single tag.
type exprParser struct {
	tokens    []token
	pos       int
	hasFilter func(string) bool
}

func (p *exprParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *exprParser) match(kind tokenKind) bool {
	if tok, ok := p.peek(); ok && tok.kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) matchKeyword(word string) bool {
	if tok, ok := p.peek(); ok && tok.kind == tokenIdentifier && tok.raw == word {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) peekKeyword(offset int, word string) bool {
	idx := p.pos + offset
	return idx < len(p.tokens) && p.tokens[idx].kind == tokenIdentifier && p.tokens[idx].raw == word
}

func (p *exprParser) expectIdentifier() (string, error) {
	tok, ok := p.peek()
	if !ok || tok.kind != tokenIdentifier {
		return "", p.unexpected("identifier")
	}
	p.pos++
	return tok.raw, nil
}

func (p *exprParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *exprParser) unexpected(want string) error {
	tok, ok := p.peek()
	if !ok {
		return fmt.Errorf("expected %s, found end of tag", want)
	}
	return fmt.Errorf("expected %s, found '%s'", want, tok.raw)
}

func (p *exprParser) parseExpression() (exprNode, error) {
	return p.parseOr()
}

func (p *exprParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.matchKeyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (exprNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.matchKeyword("and") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseNot() (exprNode, error) {
	if p.matchKeyword("not") {
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return p.parseCompare()
}

func (p *exprParser) parseCompare() (exprNode, error) {
	left, err := p.parseFiltered()
	if err != nil {
		return nil, err
	}

	var op compareOp
	switch {
	case p.match(tokenEq):
		op = opEq
	case p.match(tokenNeq):
		op = opNeq
	case p.matchKeyword("in"):
		op = opIn
	case p.peekKeyword(0, "not") && p.peekKeyword(1, "in"):
		p.pos += 2
		op = opNotIn
	default:
		return left, nil
	}

	right, err := p.parseFiltered()
	if err != nil {
		return nil, err
	}
	return exprCompare{left: left, op: op, right: right}, nil
}

func (p *exprParser) parseFiltered() (exprNode, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	var calls []filterCall
	for p.match(tokenPipe) {
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if p.hasFilter != nil && !p.hasFilter(name) {
			return nil, fmt.Errorf("unknown filter '%s'", name)
		}
		call := filterCall{name: name}
		if p.match(tokenLParen) {
			if err := p.parseArgs(&call); err != nil {
				return nil, err
			}
		}
		calls = append(calls, call)
	}

	if len(calls) == 0 {
		return base, nil
	}
	return exprFiltered{base: base, filters: calls}, nil
}

// parseArgs reads "a, key=b)" after the opening parenthesis.
func (p *exprParser) parseArgs(call *filterCall) error {
	if p.match(tokenRParen) {
		return nil
	}
	for {
		argName := ""
		if tok, ok := p.peek(); ok && tok.kind == tokenIdentifier &&
			p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].kind == tokenAssign {
			argName = tok.raw
			p.pos += 2
		}
		arg, err := p.parseOr()
		if err != nil {
			return err
		}
		call.args = append(call.args, arg)
		call.names = append(call.names, argName)

		if p.match(tokenRParen) {
			return nil
		}
		if !p.match(tokenComma) {
			return p.unexpected("',' or ')'")
		}
	}
}

func (p *exprParser) parsePrimary() (exprNode, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.unexpected("expression")
	}

	switch tok.kind {
	case tokenString:
		p.pos++
		return exprLiteral{value: String(tok.raw)}, nil
	case tokenNumber:
		p.pos++
		if _, err := strconv.ParseFloat(tok.raw, 64); err != nil {
			return nil, fmt.Errorf("invalid number literal '%s'", tok.raw)
		}
		return exprLiteral{value: String(tok.raw)}, nil
	case tokenLParen:
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(tokenRParen) {
			return nil, p.unexpected("')'")
		}
		return inner, nil
	case tokenLBracket:
		p.pos++
		var list exprList
		if p.match(tokenRBracket) {
			return list, nil
		}
		for {
			item, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			list.items = append(list.items, item)
			if p.match(tokenRBracket) {
				return list, nil
			}
			if !p.match(tokenComma) {
				return nil, p.unexpected("',' or ']'")
			}
		}
	case tokenIdentifier:
		switch tok.raw {
		case "true", "True":
			p.pos++
			return exprLiteral{value: Bool(true)}, nil
		case "false", "False":
			p.pos++
			return exprLiteral{value: Bool(false)}, nil
		case "and", "or", "not", "in":
			return nil, p.unexpected("expression")
		}
		return p.parsePath()
	default:
		return nil, p.unexpected("expression")
	}
}

func (p *exprParser) parsePath() (exprNode, error) {
	first, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	path := exprPath{parts: []string{first}}
	for p.match(tokenDot) {
		tok, ok := p.peek()
		if !ok || (tok.kind != tokenIdentifier && tok.kind != tokenNumber) {
			return nil, p.unexpected("attribute name")
		}
		p.pos++
		path.parts = append(path.parts, tok.raw)
	}
	return path, nil
}

// parseExpr parses a complete expression from source.
func parseExpr(src string, hasFilter func(string) bool) (exprNode, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &exprParser{tokens: tokens, hasFilter: hasFilter}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.unexpected("end of expression")
	}
	return node, nil
}
