// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"
)

// Registry maps an output format name to a table writer.
// Register in init() blocks from the per-format files.
type Registry[T any] struct {
	kind string
	m    map[string]func(io.Writer, []T) error
}

func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{kind: kind, m: map[string]func(io.Writer, []T) error{}}
}

// Register is idempotent, last wins.
func (r *Registry[T]) Register(format string, fn func(io.Writer, []T) error) { r.m[format] = fn }

func (r *Registry[T]) Has(format string) bool {
	_, ok := r.m[format]
	return ok
}

// Formats lists registered names, sorted.
func (r *Registry[T]) Formats() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Write dispatches to the writer registered for format.
func (r *Registry[T]) Write(format string, w io.Writer, list []T) error {
	fn, ok := r.m[format]
	if !ok {
		return fmt.Errorf("unknown %s format %q (no writer registered)", r.kind, format)
	}
	return fn(w, list)
}
