// Package render implements forge's template language.
//
// The syntax follows the Jinja family:
//
//	{{ project_name | pascal_case }}         interpolation with filters
//	{% if database %} … {% elif … %} … {% else %} … {% endif %}
//	{% for dep in dependencies %} … {{ loop.last }} … {% endfor %}
//	{% include "partials/header.tmpl" with metadata %}
//	{# comment #}
//	{% raw %}{{ literal }}{% endraw %}
//
// A "-" inside any delimiter ({%- … -%}) strips the whitespace on that
// side of the tag. Values are the closed set String, Bool, List and Map.
package render

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"sort"
	"strings"
	"sync"
)

// ErrTemplateNotFound is returned when a named template is not registered.
var ErrTemplateNotFound = errors.New("template not found")

// Engine parses and renders templates. Parsed templates are cached, so
// one Engine can serve concurrent renders.
type Engine struct {
	opts    lexOptions
	filters map[string]Filter
	sources map[string]string
	cache   map[string]*Template
	mu      sync.RWMutex // Protect filters, sources and cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithTrimBlocks removes the first newline after a block tag or comment
// and strips indentation before one, so control-flow lines leave no
// blank lines behind.
func WithTrimBlocks() Option {
	return func(e *Engine) {
		e.opts.trimBlocks = true
		e.opts.lstripBlocks = true
	}
}

// New creates an engine with the built-in filters.
func New(opts ...Option) *Engine {
	e := &Engine{
		filters: builtinFilters(),
		sources: make(map[string]string),
		cache:   make(map[string]*Template),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterFilter adds or replaces a filter. Cached templates are dropped
// because filter names are resolved at parse time.
func (e *Engine) RegisterFilter(name string, fn Filter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := maps.Clone(e.filters)
	next[name] = fn
	e.filters = next
	e.cache = make(map[string]*Template)
}

// AddTemplate registers template source under name.
func (e *Engine) AddTemplate(name, src string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sources[name] = src
	delete(e.cache, e.getCacheKey("named", name))
}

// LoadFS registers every regular file under root in fsys. Template names
// are slash-separated paths relative to root.
func (e *Engine) LoadFS(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read template from fs '%s': %w", p, err)
		}
		name := strings.TrimPrefix(p, path.Clean(root)+"/")
		e.AddTemplate(name, string(data))
		return nil
	})
}

// Has reports whether a template is registered under name.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.sources[name]
	return ok
}

// Names returns the registered template names in sorted order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.sources))
	for name := range e.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render renders the registered template name against ctx.
func (e *Engine) Render(name string, ctx Context) ([]byte, error) {
	tmpl, err := e.lookup(name)
	if err != nil {
		var re *RenderError
		if errors.As(err, &re) {
			return nil, re
		}
		return nil, &RenderError{Template: name, Reason: err.Error(), Err: err}
	}
	return e.execute(tmpl, ctx)
}

// RenderString renders src against ctx. The name is used for error
// messages; parsed sources are cached by content.
func (e *Engine) RenderString(name, src string, ctx Context) ([]byte, error) {
	cacheKey := e.getCacheKey("string", name+"\x00"+src)

	// Check cache with read lock
	e.mu.RLock()
	tmpl, ok := e.cache[cacheKey]
	e.mu.RUnlock()
	if ok {
		return e.execute(tmpl, ctx)
	}

	tmpl, err := e.Parse(name, src)
	if err != nil {
		return nil, err
	}

	// Cache with write lock
	e.mu.Lock()
	e.cache[cacheKey] = tmpl
	e.mu.Unlock()

	return e.execute(tmpl, ctx)
}

// Parse parses src without caching it. Unknown filters are reported here.
func (e *Engine) Parse(name, src string) (*Template, error) {
	table := e.filterTable()
	return parse(name, src, e.opts, func(filter string) bool {
		_, ok := table[filter]
		return ok
	})
}

// ClearCache drops every parsed template.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*Template)
}

// lookup returns the parsed form of a registered template.
func (e *Engine) lookup(name string) (*Template, error) {
	cacheKey := e.getCacheKey("named", name)

	e.mu.RLock()
	tmpl, cached := e.cache[cacheKey]
	src, registered := e.sources[name]
	e.mu.RUnlock()

	if cached {
		return tmpl, nil
	}
	if !registered {
		return nil, fmt.Errorf("%w: '%s'", ErrTemplateNotFound, name)
	}

	tmpl, err := e.Parse(name, src)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[cacheKey] = tmpl
	e.mu.Unlock()

	return tmpl, nil
}

func (e *Engine) filterTable() map[string]Filter {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filters
}

func (e *Engine) getCacheKey(typ, identifier string) string {
	return fmt.Sprintf("%s:%s", typ, identifier)
}
