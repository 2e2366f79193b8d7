package tabular

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/scrubber/scrub"
)

// Handler opens one family of tabular files.
type Handler interface {
	// Name returns the handler identifier (e.g., "delimited", "workbook")
	Name() string

	// Description returns a human-readable description
	Description() string

	// Extensions returns the file extensions handled, without dot
	Extensions() []string

	// Open opens a source file for rewriting
	Open(path string, opts *OpenOptions) (Container, error)
}

// Registry maps file extensions to handlers.
type Registry struct {
	handlers   map[string]Handler
	extensions map[string]Handler
}

// DefaultRegistry is the global handler registry.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:   make(map[string]Handler),
		extensions: make(map[string]Handler),
	}
}

// Register adds a handler and claims its extensions.
func (r *Registry) Register(h Handler) {
	r.handlers[h.Name()] = h
	for _, ext := range h.Extensions() {
		r.extensions[strings.ToLower(ext)] = h
	}
}

// Get retrieves a handler by name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[strings.ToLower(name)]
	return h, ok
}

// Lookup returns the handler for a file name, matched by extension
// regardless of case.
func (r *Registry) Lookup(filename string) (Handler, error) {
	_, ext := scrub.Stem(filepath.Base(filename))
	if h, ok := r.extensions[strings.ToLower(ext)]; ok && ext != "" {
		return h, nil
	}
	return nil, ErrUnsupportedFormat
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.extensions))
	for ext := range r.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Register adds a handler to the default registry.
func Register(h Handler) {
	DefaultRegistry.Register(h)
}

// Lookup finds a handler in the default registry.
func Lookup(filename string) (Handler, error) {
	return DefaultRegistry.Lookup(filename)
}
