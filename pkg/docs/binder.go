// Package docs binds route metadata to handlers and assembles the OpenAPI
// document served under /docs. Input schemas are derived from the same
// shapes the routes bind request bodies against, so the document can never
// drift from the validation actually enforced.
package docs

import (
	"sort"
	"strings"

	"github.com/vorlage-dev/vorlage/pkg/schema"
)

// Security names the credential requirement of an operation.
type Security int

const (
	// Public operations carry no security requirement.
	Public Security = iota

	// Authenticated operations accept either a bearer API key or the
	// session cookie.
	Authenticated

	// SessionOnly operations require an interactive session.
	SessionOnly
)

// Response documents one status code an operation can answer with.
type Response struct {
	Status      int
	Description string
	Shape       *schema.Definition // entity rendered in the body, if any
}

// Operation is the documentation attached to one method+path pair.
type Operation struct {
	Summary     string
	Description string
	Tag         string
	Security    Security
	Input       *schema.Shape // request body shape, nil for bodyless operations
	Responses   []Response
}

// Binder accumulates documented operations as routes are registered.
type Binder struct {
	operations map[string]map[string]Operation // path -> lowercase method -> op
}

// NewBinder creates an empty Binder.
func NewBinder() *Binder {
	return &Binder{operations: make(map[string]map[string]Operation)}
}

// Bind records the documentation for a method+path pair. Binding the same
// pair twice overwrites the earlier operation.
func (b *Binder) Bind(method, path string, op Operation) {
	method = strings.ToLower(method)
	if b.operations[path] == nil {
		b.operations[path] = make(map[string]Operation)
	}
	b.operations[path][method] = op
}

// paths returns the bound paths in sorted order, so the emitted document is
// deterministic.
func (b *Binder) paths() []string {
	paths := make([]string, 0, len(b.operations))
	for p := range b.operations {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// methods returns the bound methods of a path in sorted order.
func (b *Binder) methods(path string) []string {
	methods := make([]string, 0, len(b.operations[path]))
	for m := range b.operations[path] {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}
