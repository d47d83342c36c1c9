// Package resolution tracks the names being built by a single top-level
// resolution so re-entrant builds can be reported as cycles.
package resolution

// Stack is the ordered in-progress set of one resolution call tree.
// It is not safe for concurrent use; each top-level call owns its own Stack.
type Stack struct {
	names []string
	index map[string]int
}

// NewStack returns an empty Stack.
func NewStack() *Stack {
	return &Stack{index: make(map[string]int)}
}

// Contains reports whether name is currently being built.
func (s *Stack) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Push marks name as in progress. It reports false without modifying the
// stack if name is already in progress.
func (s *Stack) Push(name string) bool {
	if s.Contains(name) {
		return false
	}
	s.index[name] = len(s.names)
	s.names = append(s.names, name)
	return true
}

// Pop removes name and every frame pushed after it.
func (s *Stack) Pop(name string) {
	pos, ok := s.index[name]
	if !ok {
		return
	}
	for _, n := range s.names[pos:] {
		delete(s.index, n)
	}
	s.names = s.names[:pos]
}

// Chain returns a copy of the in-progress names, outermost first.
func (s *Stack) Chain() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Cycle returns the chain that closes on name: the frames from the first
// occurrence of name to the top, followed by name again.
func (s *Stack) Cycle(name string) []string {
	pos, ok := s.index[name]
	if !ok {
		return []string{name}
	}
	out := make([]string, 0, len(s.names)-pos+1)
	out = append(out, s.names[pos:]...)
	return append(out, name)
}

// Depth returns the number of names in progress.
func (s *Stack) Depth() int {
	return len(s.names)
}
