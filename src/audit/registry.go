// backend/src/audit/registry.go
package audit

import (
	"sync"

	"github.com/username/fiscasync/backend/src/models"
)

// Registered pairs a control definition with its predicate.
type Registered struct {
	Definition models.ControlDefinition
	Execute    ControlFunc
}

// Registry is the control catalog. It is built once at process start and
// passed by reference into the engine and the orchestrator. Iteration order
// is registration order, which makes runs deterministic and reproducible.
//
// The mutex only guards against concurrent bulk registration from multiple
// entry points; execution itself is single-threaded.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byRef map[string]*Registered
}

// NewRegistry returns an empty control catalog.
func NewRegistry() *Registry {
	return &Registry{byRef: make(map[string]*Registered)}
}

// Register adds a control. Re-registering an existing ref overwrites its
// definition and predicate but keeps the original registration position, so
// bulk registration is idempotent.
func (r *Registry) Register(def models.ControlDefinition, fn ControlFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byRef[def.Ref]; ok {
		existing.Definition = def
		existing.Execute = fn
		return
	}
	r.byRef[def.Ref] = &Registered{Definition: def, Execute: fn}
	r.order = append(r.order, def.Ref)
}

// Get looks up a control by ref. The boolean is false for unknown refs;
// callers treat unregistered rules as soft-missing.
func (r *Registry) Get(ref string) (Registered, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if reg, ok := r.byRef[ref]; ok {
		return *reg, true
	}
	return Registered{}, false
}

// ByLevel returns the active controls of a level, in registration order.
func (r *Registry) ByLevel(level int) []Registered {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Registered
	for _, ref := range r.order {
		reg := r.byRef[ref]
		if reg.Definition.Level == level && reg.Definition.Active {
			out = append(out, *reg)
		}
	}
	return out
}

// ByPhase returns the active controls of a phase, in registration order.
func (r *Registry) ByPhase(phase models.Phase) []Registered {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Registered
	for _, ref := range r.order {
		reg := r.byRef[ref]
		if reg.Definition.Phase == phase && reg.Definition.Active {
			out = append(out, *reg)
		}
	}
	return out
}

// SetActive toggles a control without removing it. Returns false for an
// unknown ref.
func (r *Registry) SetActive(ref string, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.byRef[ref]
	if !ok {
		return false
	}
	reg.Definition.Active = active
	return true
}

// Definitions returns the full catalog including inactive controls, in
// registration order, for introspection and UI.
func (r *Registry) Definitions() []models.ControlDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ControlDefinition, 0, len(r.order))
	for _, ref := range r.order {
		out = append(out, r.byRef[ref].Definition)
	}
	return out
}

// ActiveCount returns the number of active controls.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, reg := range r.byRef {
		if reg.Definition.Active {
			n++
		}
	}
	return n
}
