package step

import "errors"

// Errors for Sequence operations.
var (
	// ErrDuplicateStep indicates two steps were compiled with the same ID.
	ErrDuplicateStep = errors.New("step with this ID already exists")
)

// Sequence is an ordered list of steps. Order is execution order: steps run
// strictly one after another, in the order providers emitted them.
type Sequence struct {
	steps []Step
	index map[string]int
}

// NewSequence creates an empty Sequence.
func NewSequence() *Sequence {
	return &Sequence{
		steps: make([]Step, 0),
		index: make(map[string]int),
	}
}

// Add appends a step to the sequence.
// Returns ErrDuplicateStep if a step with the same ID already exists.
func (s *Sequence) Add(step Step) error {
	id := step.ID().String()

	if _, exists := s.index[id]; exists {
		return ErrDuplicateStep
	}

	s.index[id] = len(s.steps)
	s.steps = append(s.steps, step)
	return nil
}

// Get retrieves a step by ID.
func (s *Sequence) Get(id ID) (Step, bool) {
	i, ok := s.index[id.String()]
	if !ok {
		return nil, false
	}
	return s.steps[i], true
}

// Steps returns the steps in execution order.
func (s *Sequence) Steps() []Step {
	steps := make([]Step, len(s.steps))
	copy(steps, s.steps)
	return steps
}

// Len returns the number of steps in the sequence.
func (s *Sequence) Len() int {
	return len(s.steps)
}

// IsEmpty returns true if the sequence contains no steps.
func (s *Sequence) IsEmpty() bool {
	return len(s.steps) == 0
}
