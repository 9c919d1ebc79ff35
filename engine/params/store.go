// Package params holds the live values of the shader's user parameters
// between reloads, serving as the data source for the control panel.
package params

import (
	"fmt"
	"sync"

	"github.com/pudnax/nuance/engine/layout"
)

// Store keeps the current value of every declared parameter and packs them
// into the byte layout of the active plan. It is safe for concurrent use: the
// control panel sets values while the render loop packs them.
type Store interface {
	// Schema returns the parameter declarations of the active plan, in
	// declaration order. The control panel builds its widgets from this.
	//
	// Returns:
	//   - []layout.Param: the active parameter declarations
	Schema() []layout.Param

	// Values returns a copy of the current parameter values by name.
	//
	// Returns:
	//   - map[string]layout.Value: the current values
	Values() map[string]layout.Value

	// Value returns the current value of one parameter.
	//
	// Parameters:
	//   - name: the parameter name
	//
	// Returns:
	//   - layout.Value: the current value
	//   - bool: false if the name is not in the active schema
	Value(name string) (layout.Value, bool)

	// Set updates one parameter value. The value's kind must match the
	// declared kind.
	//
	// Parameters:
	//   - name: the parameter name
	//   - v: the new value
	//
	// Returns:
	//   - error: an error if the name is unknown or the kind mismatches
	Set(name string, v layout.Value) error

	// ApplyPlan migrates the store to a new schema after a reload: values
	// of surviving parameters (same name and kind) are preserved, removed
	// parameters are dropped, and new parameters adopt their declared
	// defaults.
	//
	// Parameters:
	//   - params: the new parameter declarations
	//   - plan: the new buffer layout
	ApplyPlan(params []layout.Param, plan layout.Plan)

	// Pack serializes the current values into the plan's byte layout.
	// Returns nil and false when nothing changed since the last pack and
	// force is unset, so unchanged frames skip the GPU upload.
	//
	// Parameters:
	//   - force: pack even if no value changed
	//
	// Returns:
	//   - []byte: the packed parameter block (valid until the next Pack)
	//   - bool: true if the block should be uploaded
	Pack(force bool) ([]byte, bool)
}

// store is the implementation of the Store interface.
type store struct {
	mu     sync.RWMutex
	params []layout.Param
	plan   layout.Plan
	values map[string]layout.Value
	buf    []byte
	dirty  bool
}

var _ Store = &store{}

// NewStore creates an empty Store. ApplyPlan installs the first schema.
//
// Returns:
//   - Store: the new store
func NewStore() Store {
	return &store{
		values: make(map[string]layout.Value),
	}
}

func (s *store) Schema() []layout.Param {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

func (s *store) Values() map[string]layout.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]layout.Value, len(s.values))
	for name, v := range s.values {
		out[name] = v
	}
	return out
}

func (s *store) Value(name string) (layout.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[name]
	return v, ok
}

func (s *store) Set(name string, v layout.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.values[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	if cur.Kind != v.Kind {
		return fmt.Errorf("parameter %q is %s, got %s", name, cur.Kind, v.Kind)
	}
	s.values[name] = v
	s.dirty = true
	return nil
}

func (s *store) ApplyPlan(params []layout.Param, plan layout.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]layout.Value, len(params))
	for _, p := range params {
		if v, ok := s.values[p.Name]; ok && v.Kind == p.Kind {
			next[p.Name] = v
			continue
		}
		next[p.Name] = p.Default
	}

	s.params = params
	s.plan = plan
	s.values = next
	s.buf = make([]byte, plan.Size)
	s.dirty = true
}

func (s *store) Pack(force bool) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan.Size == 0 {
		return nil, false
	}
	if !s.dirty && !force {
		return nil, false
	}

	for _, f := range s.plan.Fields {
		v, ok := s.values[f.Name]
		if !ok {
			continue
		}
		if err := v.Pack(s.buf, f.Offset); err != nil {
			continue
		}
	}
	s.dirty = false
	return s.buf, true
}
