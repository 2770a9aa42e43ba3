package render

import (
	"strings"
)

// Template is a parsed template ready for execution.
type Template struct {
	name  string
	nodes []node
}

// Name returns the template name used in error messages.
func (t *Template) Name() string {
	return t.name
}

type node interface {
	isNode()
}

type textNode struct {
	text string
}

type outputNode struct {
	expr   exprNode
	source string
	line   int
}

type ifBranch struct {
	cond exprNode
	body []node
}

type ifNode struct {
	branches []ifBranch
	orElse   []node
	line     int
}

type forNode struct {
	keyVar   string // set for "for k, v in map"
	valueVar string
	iter     exprNode
	source   string
	body     []node
	line     int
}

type includeNode struct {
	template string
	with     exprNode
	line     int
}

func (textNode) isNode()    {}
func (outputNode) isNode()  {}
func (ifNode) isNode()      {}
func (forNode) isNode()     {}
func (includeNode) isNode() {}

type parser struct {
	name      string
	segs      []segment
	pos       int
	hasFilter func(string) bool
}

// parse turns template source into a Template.
func parse(name, src string, opts lexOptions, hasFilter func(string) bool) (*Template, error) {
	segs, err := lex(name, src, opts)
	if err != nil {
		return nil, err
	}

	p := &parser{name: name, segs: segs, hasFilter: hasFilter}
	nodes, end, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if end != nil {
		return nil, newError(name, end.line, "unexpected '%s'", end.body)
	}
	return &Template{name: name, nodes: nodes}, nil
}

// parseBody reads nodes until a block-closing statement (elif, else,
// endif, endfor) or the end of input. The closing segment is returned so
// the caller can check that it belongs to the enclosing block.
func (p *parser) parseBody() ([]node, *segment, error) {
	var nodes []node

	for p.pos < len(p.segs) {
		seg := p.segs[p.pos]
		p.pos++

		switch seg.kind {
		case segText:
			if seg.body != "" {
				nodes = append(nodes, textNode{text: seg.body})
			}
		case segComment, segMarker:
			// produces no output
		case segOutput:
			if seg.body == "" {
				return nil, nil, newError(p.name, seg.line, "empty expression")
			}
			expr, err := parseExpr(seg.body, p.hasFilter)
			if err != nil {
				return nil, nil, p.wrap(seg, err)
			}
			nodes = append(nodes, outputNode{expr: expr, source: seg.body, line: seg.line})
		case segStatement:
			keyword, rest := splitKeyword(seg.body)
			switch keyword {
			case "if":
				n, err := p.parseIf(seg, rest)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, n)
			case "for":
				n, err := p.parseFor(seg, rest)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, n)
			case "include":
				n, err := p.parseInclude(seg, rest)
				if err != nil {
					return nil, nil, err
				}
				nodes = append(nodes, n)
			case "elif", "else", "endif", "endfor":
				closing := seg
				return nodes, &closing, nil
			case "":
				return nil, nil, newError(p.name, seg.line, "empty statement")
			default:
				return nil, nil, newError(p.name, seg.line, "unknown statement '%s'", keyword)
			}
		}
	}

	return nodes, nil, nil
}

func (p *parser) parseIf(open segment, cond string) (node, error) {
	n := ifNode{line: open.line}

	expr, err := p.condition(open, cond)
	if err != nil {
		return nil, err
	}

	for {
		body, end, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		if end == nil {
			return nil, newError(p.name, open.line, "unclosed 'if', expected '{%% endif %%}'")
		}
		n.branches = append(n.branches, ifBranch{cond: expr, body: body})

		keyword, rest := splitKeyword(end.body)
		switch keyword {
		case "endif":
			return n, nil
		case "elif":
			expr, err = p.condition(*end, rest)
			if err != nil {
				return nil, err
			}
		case "else":
			orElse, closing, err := p.parseBody()
			if err != nil {
				return nil, err
			}
			if closing == nil {
				return nil, newError(p.name, open.line, "unclosed 'if', expected '{%% endif %%}'")
			}
			if kw, _ := splitKeyword(closing.body); kw != "endif" {
				return nil, newError(p.name, closing.line, "unexpected '%s' after 'else'", closing.body)
			}
			n.orElse = orElse
			return n, nil
		default:
			return nil, newError(p.name, end.line, "unexpected '%s' inside 'if'", end.body)
		}
	}
}

func (p *parser) condition(seg segment, src string) (exprNode, error) {
	if strings.TrimSpace(src) == "" {
		return nil, newError(p.name, seg.line, "missing condition")
	}
	expr, err := parseExpr(src, p.hasFilter)
	if err != nil {
		return nil, p.wrap(seg, err)
	}
	return expr, nil
}

func (p *parser) parseFor(open segment, header string) (node, error) {
	vars, iterSrc, ok := strings.Cut(header, " in ")
	if !ok {
		return nil, newError(p.name, open.line, "malformed 'for', expected 'for item in collection'")
	}

	n := forNode{line: open.line, source: strings.TrimSpace(iterSrc)}
	names := strings.Split(vars, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
		if !isIdentifier(names[i]) {
			return nil, newError(p.name, open.line, "invalid loop variable '%s'", names[i])
		}
	}
	switch len(names) {
	case 1:
		n.valueVar = names[0]
	case 2:
		n.keyVar, n.valueVar = names[0], names[1]
	default:
		return nil, newError(p.name, open.line, "too many loop variables")
	}

	iter, err := parseExpr(iterSrc, p.hasFilter)
	if err != nil {
		return nil, p.wrap(open, err)
	}
	n.iter = iter

	body, end, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	if end == nil {
		return nil, newError(p.name, open.line, "unclosed 'for', expected '{%% endfor %%}'")
	}
	if kw, _ := splitKeyword(end.body); kw != "endfor" {
		return nil, newError(p.name, end.line, "unexpected '%s' inside 'for'", end.body)
	}
	n.body = body
	return n, nil
}

func (p *parser) parseInclude(seg segment, args string) (node, error) {
	tokens, err := tokenize(args)
	if err != nil {
		return nil, p.wrap(seg, err)
	}
	if len(tokens) == 0 || tokens[0].kind != tokenString {
		return nil, newError(p.name, seg.line, "include expects a quoted template name")
	}

	n := includeNode{template: tokens[0].raw, line: seg.line}
	if len(tokens) == 1 {
		return n, nil
	}
	if tokens[1].kind != tokenIdentifier || tokens[1].raw != "with" || len(tokens) == 2 {
		return nil, newError(p.name, seg.line, "malformed include, expected 'include \"name\" with value'")
	}

	ep := &exprParser{tokens: tokens[2:], hasFilter: p.hasFilter}
	with, err := ep.parseExpression()
	if err == nil && !ep.done() {
		err = ep.unexpected("end of include")
	}
	if err != nil {
		return nil, p.wrap(seg, err)
	}
	n.with = with
	return n, nil
}

func (p *parser) wrap(seg segment, err error) error {
	return &RenderError{Template: p.name, Line: seg.line, Reason: err.Error(), Err: err}
}

func splitKeyword(body string) (string, string) {
	keyword, rest, _ := strings.Cut(strings.TrimSpace(body), " ")
	return keyword, strings.TrimSpace(rest)
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentStart(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}
