package formula

import "strings"

// Func is one formula function. Functions are side-effect-free and total:
// they never return an error, they fall back to neutral values instead.
type Func func(args []any) any

// Registry is an immutable, ordered dispatch table of formula functions.
// Substitution passes run in registration order, which keeps evaluation
// deterministic.
type Registry struct {
	names []string
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

func (r *Registry) register(name string, fn Func) {
	upper := strings.ToUpper(name)
	if _, ok := r.funcs[upper]; !ok {
		r.names = append(r.names, upper)
	}
	r.funcs[upper] = fn
}

// Names returns function names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[strings.ToUpper(name)]
	return fn, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[strings.ToUpper(name)]
	return ok
}
