package render

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// maxIncludeDepth bounds nested includes so a cycle fails instead of
// recursing forever.
const maxIncludeDepth = 16

type state struct {
	engine  *Engine
	filters map[string]Filter
	tmpl    *Template
	depth   int
	buf     *bytes.Buffer
}

func (s *state) fail(line int, err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return re
	}
	return &RenderError{Template: s.tmpl.name, Line: line, Reason: err.Error(), Err: err}
}

func (s *state) env(sc *scope) *evalEnv {
	return &evalEnv{scope: sc, filters: s.filters}
}

func (s *state) walk(nodes []node, sc *scope) error {
	for _, n := range nodes {
		if err := s.exec(n, sc); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) exec(n node, sc *scope) error {
	switch n := n.(type) {
	case textNode:
		s.buf.WriteString(n.text)
		return nil

	case outputNode:
		v, err := n.expr.eval(s.env(sc))
		if err != nil {
			return s.fail(n.line, err)
		}
		if v == nil {
			return s.fail(n.line, fmt.Errorf("variable '%s' is undefined", n.source))
		}
		text, err := ToString(v)
		if err != nil {
			return s.fail(n.line, fmt.Errorf("cannot render '%s': %w", n.source, err))
		}
		s.buf.WriteString(text)
		return nil

	case ifNode:
		for _, branch := range n.branches {
			v, err := branch.cond.eval(s.env(sc))
			if err != nil {
				return s.fail(n.line, err)
			}
			if Truthy(v) {
				return s.walk(branch.body, sc)
			}
		}
		return s.walk(n.orElse, sc)

	case forNode:
		return s.execFor(n, sc)

	case includeNode:
		return s.execInclude(n, sc)

	default:
		return s.fail(0, fmt.Errorf("unsupported node %T", n))
	}
}

func (s *state) execFor(n forNode, sc *scope) error {
	v, err := n.iter.eval(s.env(sc))
	if err != nil {
		return s.fail(n.line, err)
	}

	type item struct {
		key   Value
		value Value
	}
	var items []item

	switch coll := v.(type) {
	case nil:
		return s.fail(n.line, fmt.Errorf("variable '%s' is undefined", n.source))
	case List:
		for i, el := range coll {
			items = append(items, item{key: String(strconv.Itoa(i)), value: el})
		}
	case Map:
		for _, k := range coll.Keys() {
			items = append(items, item{key: String(k), value: coll[k]})
		}
	default:
		return s.fail(n.line, fmt.Errorf("cannot iterate over '%s': not a list or map", n.source))
	}

	for i, it := range items {
		vars := Map{
			n.valueVar: it.value,
			"loop": Map{
				"index":  String(strconv.Itoa(i + 1)),
				"index0": String(strconv.Itoa(i)),
				"first":  Bool(i == 0),
				"last":   Bool(i == len(items)-1),
				"length": String(strconv.Itoa(len(items))),
			},
		}
		if n.keyVar != "" {
			vars[n.keyVar] = it.key
		}
		if err := s.walk(n.body, &scope{vars: vars, parent: sc}); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) execInclude(n includeNode, sc *scope) error {
	if s.depth >= maxIncludeDepth {
		return s.fail(n.line, fmt.Errorf("include depth exceeded %d while including '%s'", maxIncludeDepth, n.template))
	}

	tmpl, err := s.engine.lookup(n.template)
	if err != nil {
		return s.fail(n.line, err)
	}

	target := sc
	if n.with != nil {
		v, err := n.with.eval(s.env(sc))
		if err != nil {
			return s.fail(n.line, err)
		}
		sub, ok := v.(Map)
		if !ok {
			return s.fail(n.line, fmt.Errorf("include context for '%s' must be a map", n.template))
		}
		target = &scope{vars: sub}
	}

	child := &state{engine: s.engine, filters: s.filters, tmpl: tmpl, depth: s.depth + 1, buf: s.buf}
	return child.walk(tmpl.nodes, target)
}

// execute renders tmpl against ctx.
func (e *Engine) execute(tmpl *Template, ctx Context) ([]byte, error) {
	var buf bytes.Buffer
	st := &state{engine: e, filters: e.filterTable(), tmpl: tmpl, buf: &buf}
	if err := st.walk(tmpl.nodes, &scope{vars: ctx}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
