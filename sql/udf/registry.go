package udf

import (
	"sort"
	"sync"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Registry holds functions by name.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]*Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string]*Function)}
}

// Register adds the functions to the registry. Registering again a function
// with the same definition is a no-op; a different function with the same
// name is an error.
func (r *Registry) Register(fns ...*Function) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range fns {
		existing, ok := r.functions[f.name]
		if !ok {
			r.functions[f.name] = f
			continue
		}

		same, err := sameFunction(existing, f)
		if err != nil {
			return err
		}

		if !same {
			return sql.ErrDuplicateFunction.New(f.name)
		}
	}
	return nil
}

// Function returns the function with the given name.
func (r *Registry) Function(name string) (*Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.functions[name]
	if !ok {
		return nil, ErrFunctionNotFound.New(name)
	}
	return f, nil
}

// Call looks up the function with the given name and calls it with the
// arguments.
func (r *Registry) Call(name string, args ...sql.Expression) (*Call, error) {
	f, err := r.Function(name)
	if err != nil {
		return nil, err
	}
	return f.Call(args...)
}

// Names returns the sorted names of the registered functions.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sameFunction(a, b *Function) (bool, error) {
	if a == b {
		return true, nil
	}

	fa, err := a.Fingerprint()
	if err != nil {
		return false, err
	}

	fb, err := b.Fingerprint()
	if err != nil {
		return false, err
	}
	return fa == fb, nil
}
