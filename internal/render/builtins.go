package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/simonhull/forge/internal/filters"
)

// Filter transforms a value inside a template pipeline. The input is nil
// only for filters that follow an undefined value, which is limited to
// "default".
type Filter func(v Value, args Args) (Value, error)

// Args holds the arguments of a filter call.
type Args struct {
	Positional []Value
	Named      map[string]Value
}

// Get returns the argument given by name, or else by position.
func (a Args) Get(name string, pos int) (Value, bool) {
	if v, ok := a.Named[name]; ok {
		return v, true
	}
	if pos >= 0 && pos < len(a.Positional) {
		return a.Positional[pos], true
	}
	return nil, false
}

// String returns a text argument, falling back to def when absent.
func (a Args) String(name string, pos int, def string) (string, error) {
	v, ok := a.Get(name, pos)
	if !ok {
		return def, nil
	}
	return ToString(v)
}

// Int returns an integer argument, falling back to def when absent.
func (a Args) Int(name string, pos int, def int) (int, error) {
	v, ok := a.Get(name, pos)
	if !ok {
		return def, nil
	}
	s, err := ToString(v)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("argument '%s' must be an integer, got '%s'", name, s)
	}
	return n, nil
}

// Bool returns a boolean argument, falling back to def when absent.
func (a Args) Bool(name string, pos int, def bool) bool {
	v, ok := a.Get(name, pos)
	if !ok {
		return def
	}
	return Truthy(v)
}

// StringFilter lifts a string transform into a Filter. Bools are converted
// to "true"/"false", lists are transformed element-wise and maps are
// rejected.
func StringFilter(fn func(string) string) Filter {
	var apply Filter
	apply = func(v Value, args Args) (Value, error) {
		switch val := v.(type) {
		case String:
			return String(fn(string(val))), nil
		case Bool:
			return String(fn(strconv.FormatBool(bool(val)))), nil
		case List:
			out := make(List, len(val))
			for i, item := range val {
				conv, err := apply(item, args)
				if err != nil {
					return nil, err
				}
				out[i] = conv
			}
			return out, nil
		case Map:
			return nil, fmt.Errorf("cannot apply to a map")
		default:
			return nil, fmt.Errorf("value is undefined")
		}
	}
	return apply
}

func builtinFilters() map[string]Filter {
	return map[string]Filter{
		// Case conversion
		"snake_case":   StringFilter(filters.SnakeCase),  // MyApp → my_app
		"pascal_case":  StringFilter(filters.PascalCase), // my_app → MyApp
		"camel_case":   StringFilter(filters.CamelCase),  // my_app → myApp
		"kebab_case":   StringFilter(filters.KebabCase),  // MyApp → my-app
		"shouty_case":  StringFilter(filters.ShoutyCase), // my-app → MY_APP
		"title_case":   StringFilter(filters.TitleCase),  // my-app → My App
		"package_name": StringFilter(filters.PackageName),

		// String manipulation
		"upper":          StringFilter(strings.ToUpper),
		"lower":          StringFilter(strings.ToLower),
		"trim":           StringFilter(strings.TrimSpace),
		"title":          StringFilter(filters.Title),
		"capitalize":     StringFilter(filters.Capitalize),
		"plural":         StringFilter(filters.Pluralize),
		"quote":          StringFilter(filters.Quote),
		"normalize_path": StringFilter(filters.NormalizePath),
		"indent":         indentFilter,
		"replace":        replaceFilter,

		// Collections
		"join":   joinFilter,
		"length": lengthFilter,
		"first":  firstFilter,
		"last":   lastFilter,

		// Utilities
		"default": defaultFilter,
	}
}

func indentFilter(v Value, args Args) (Value, error) {
	width, err := args.Int("width", 0, 4)
	if err != nil {
		return nil, err
	}
	first := args.Bool("first", 1, false)
	return StringFilter(func(s string) string {
		return filters.Indent(s, width, first)
	})(v, args)
}

func replaceFilter(v Value, args Args) (Value, error) {
	from, err := args.String("from", 0, "")
	if err != nil {
		return nil, err
	}
	if from == "" {
		return nil, fmt.Errorf("missing 'from' argument")
	}
	to, err := args.String("to", 1, "")
	if err != nil {
		return nil, err
	}
	return StringFilter(func(s string) string {
		return strings.ReplaceAll(s, from, to)
	})(v, args)
}

func joinFilter(v Value, args Args) (Value, error) {
	sep, err := args.String("sep", 0, "")
	if err != nil {
		return nil, err
	}
	list, ok := v.(List)
	if !ok {
		return nil, fmt.Errorf("expected a list")
	}
	parts := make([]string, len(list))
	for i, item := range list {
		s, err := ToString(item)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	return String(strings.Join(parts, sep)), nil
}

func lengthFilter(v Value, _ Args) (Value, error) {
	switch val := v.(type) {
	case String:
		return String(strconv.Itoa(utf8.RuneCountInString(string(val)))), nil
	case List:
		return String(strconv.Itoa(len(val))), nil
	case Map:
		return String(strconv.Itoa(len(val))), nil
	default:
		return nil, fmt.Errorf("expected a string, list or map")
	}
}

func firstFilter(v Value, _ Args) (Value, error) {
	switch val := v.(type) {
	case List:
		if len(val) == 0 {
			return nil, fmt.Errorf("list is empty")
		}
		return val[0], nil
	case String:
		r, _ := utf8.DecodeRuneInString(string(val))
		if r == utf8.RuneError {
			return String(""), nil
		}
		return String(string(r)), nil
	default:
		return nil, fmt.Errorf("expected a list or string")
	}
}

func lastFilter(v Value, _ Args) (Value, error) {
	switch val := v.(type) {
	case List:
		if len(val) == 0 {
			return nil, fmt.Errorf("list is empty")
		}
		return val[len(val)-1], nil
	case String:
		r, _ := utf8.DecodeLastRuneInString(string(val))
		if r == utf8.RuneError {
			return String(""), nil
		}
		return String(string(r)), nil
	default:
		return nil, fmt.Errorf("expected a list or string")
	}
}

// defaultFilter substitutes its argument for an undefined value.
func defaultFilter(v Value, args Args) (Value, error) {
	if v != nil {
		return v, nil
	}
	def, ok := args.Get("value", 0)
	if !ok {
		return nil, fmt.Errorf("missing 'value' argument")
	}
	return def, nil
}
