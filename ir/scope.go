package ir

// Scope tracks which step bindings are visible at a point in the execution
// plan. Bindings are forward-only and block-scoped: a branch arm validates
// against a clone of its parent scope, so nothing an arm defines leaks out.
type Scope struct {
	bindings map[string]struct{}
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{bindings: make(map[string]struct{})}
}

// Clone returns an independent snapshot of the scope.
func (s *Scope) Clone() *Scope {
	out := &Scope{bindings: make(map[string]struct{}, len(s.bindings))}
	for id := range s.bindings {
		out.bindings[id] = struct{}{}
	}
	return out
}

// Add records a step's binding as visible.
func (s *Scope) Add(stepID string) {
	s.bindings[stepID] = struct{}{}
}

// Has reports whether the step's binding is visible.
func (s *Scope) Has(stepID string) bool {
	_, ok := s.bindings[stepID]
	return ok
}

// Len returns the number of visible bindings.
func (s *Scope) Len() int { return len(s.bindings) }
