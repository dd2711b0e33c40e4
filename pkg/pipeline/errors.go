package pipeline

import "errors"

var (
	// ErrStructuralMismatch reports incompatible input metadata, detected
	// during information propagation before any buffer is touched.
	ErrStructuralMismatch = errors.New("pipeline: structural metadata mismatch")

	// ErrRegionOutOfBounds reports a requested extent that cannot be
	// satisfied, or a node that failed to produce what was requested.
	ErrRegionOutOfBounds = errors.New("pipeline: requested extent is not satisfiable")

	// ErrAllocation reports a buffer allocation failure.
	ErrAllocation = errors.New("pipeline: buffer allocation failed")

	// ErrCycle reports a cycle in the node graph.
	ErrCycle = errors.New("pipeline: graph contains a cycle")
)
