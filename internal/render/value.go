package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a template value. The set of implementations is closed:
// String, Bool, List and Map.
type Value interface {
	isValue()
}

// String is a text value. Numbers are carried as strings.
type String string

// Bool is a boolean value.
type Bool bool

// List is an ordered sequence of values.
type List []Value

// Map is a string-keyed set of values. Iteration order is sorted by key.
type Map map[string]Value

func (String) isValue() {}
func (Bool) isValue()   {}
func (List) isValue()   {}
func (Map) isValue()    {}

// Context is the variable environment a template renders against.
type Context = Map

// Strings builds a List of String values.
func Strings(items ...string) List {
	list := make(List, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return list
}

// Truthy reports whether v counts as true in a condition. Undefined
// values, false, and empty strings, lists or maps are false.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case String:
		return val != ""
	case Bool:
		return bool(val)
	case List:
		return len(val) > 0
	case Map:
		return len(val) > 0
	default:
		return false
	}
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case List:
		out := make(List, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case Map:
		return val.Clone()
	default:
		return v
	}
}

// Lookup resolves a dotted path such as "loop.last" against m.
func (m Map) Lookup(path string) (Value, bool) {
	var cur Value = m
	for _, part := range strings.Split(path, ".") {
		next, ok := member(cur, part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// member returns the named attribute of v. Lists accept numeric indexes.
func member(v Value, name string) (Value, bool) {
	switch val := v.(type) {
	case Map:
		item, ok := val[name]
		return item, ok
	case List:
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= len(val) {
			return nil, false
		}
		return val[idx], true
	default:
		return nil, false
	}
}

// ToString converts scalars to text. Lists are joined with ", ".
// Maps have no text form.
func ToString(v Value) (string, error) {
	switch val := v.(type) {
	case String:
		return string(val), nil
	case Bool:
		return strconv.FormatBool(bool(val)), nil
	case List:
		parts := make([]string, len(val))
		for i, item := range val {
			s, err := ToString(item)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ", "), nil
	case Map:
		return "", fmt.Errorf("cannot convert map to string")
	default:
		return "", fmt.Errorf("value is undefined")
	}
}

// FromAny converts Go values into template values. Supported inputs are
// strings, bools, integers, floats, slices and string-keyed maps of those,
// and Values themselves.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return String(strconv.Itoa(val)), nil
	case int64:
		return String(strconv.FormatInt(val, 10)), nil
	case float64:
		return String(strconv.FormatFloat(val, 'f', -1, 64)), nil
	case []string:
		return Strings(val...), nil
	case []any:
		list := make(List, len(val))
		for i, item := range val {
			conv, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = conv
		}
		return list, nil
	case map[string]string:
		m := make(Map, len(val))
		for k, item := range val {
			m[k] = String(item)
		}
		return m, nil
	case map[string]any:
		m := make(Map, len(val))
		for k, item := range val {
			conv, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = conv
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// equal compares two values structurally. Values of different kinds are
// never equal, and an undefined value equals nothing.
func equal(a, b Value) bool {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, item := range av {
			other, ok := bv[k]
			if !ok || !equal(item, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// contains implements the "in" operator.
func contains(container, item Value) (bool, error) {
	switch c := container.(type) {
	case nil:
		return false, nil
	case List:
		for _, el := range c {
			if equal(el, item) {
				return true, nil
			}
		}
		return false, nil
	case Map:
		key, ok := item.(String)
		if !ok {
			return false, nil
		}
		_, found := c[string(key)]
		return found, nil
	case String:
		sub, ok := item.(String)
		if !ok {
			return false, nil
		}
		return strings.Contains(string(c), string(sub)), nil
	default:
		return false, fmt.Errorf("'in' requires a list, map or string on the right")
	}
}
