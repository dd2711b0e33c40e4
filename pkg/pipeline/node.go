package pipeline

import (
	"context"
	"fmt"

	"github.com/voxelflow/voxelflow/internal/concurrency"
	interrors "github.com/voxelflow/voxelflow/internal/errors"
	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/logger"
)

// Node is a pipeline process node. Concrete nodes embed *Base for wiring
// state and override the protocol hooks they need; Base supplies identity
// pass-through defaults.
type Node interface {
	Name() string

	// GenerateOutputInformation computes the outputs' whole extents and
	// other metadata from the inputs' whole extents (phase 1).
	GenerateOutputInformation() error

	// PropagateRequestedExtent translates the given output's requested
	// extent into requested extents on this node's inputs (phase 2).
	PropagateRequestedExtent(out DataObject) error

	// GenerateData materializes at least the requested extent of every
	// output (phase 3). Implementations stage, fill and commit their
	// output objects; on error the executor discards staged buffers.
	GenerateData(ctx context.Context) error

	base() *Base
}

// Base carries the wiring and bookkeeping state shared by every node:
// input slots, the variable-arity input list, owned outputs, the node's
// modification stamp and the information stamp maintained by the executor.
type Base struct {
	name     string
	self     Node
	log      logger.Logger
	inputs   []DataObject
	outputs  []DataObject
	modified uint64
	infoTime uint64
	workers  int
}

// NewBase returns node state with the given name, a noop logger and
// single-worker generation.
func NewBase(name string) *Base {
	return &Base{
		name:     name,
		log:      logger.NewNoopLogger(),
		modified: tick(),
		workers:  1,
	}
}

func (b *Base) base() *Base { return b }

// Bind associates the embedding node with its Base, so that outputs
// registered afterwards point back at the full node rather than the Base
// alone. Node constructors call it once, before RegisterOutput.
func (b *Base) Bind(self Node) { b.self = self }

func (b *Base) Name() string { return b.name }

// SetLogger replaces the node's logger.
func (b *Base) SetLogger(log logger.Logger) {
	if log != nil {
		b.log = log
	}
}

// Logger returns the node's logger.
func (b *Base) Logger() logger.Logger { return b.log }

// Modified stamps the node as reconfigured, forcing regeneration on the
// next update.
func (b *Base) Modified() { b.modified = tick() }

// ModifiedTime returns the stamp of the node's last configuration change.
func (b *Base) ModifiedTime() uint64 { return b.modified }

// SetInput wires obj into the given input slot, growing the slot list as
// needed. A nil obj clears the slot.
func (b *Base) SetInput(slot int, obj DataObject) {
	for len(b.inputs) <= slot {
		b.inputs = append(b.inputs, nil)
	}
	b.inputs[slot] = obj
	b.Modified()
}

// PushInput appends obj to the variable-arity input list, after any fixed
// slots. Each pushed input becomes one index along the series axis of
// nodes implementing the series pattern.
func (b *Base) PushInput(obj DataObject) {
	b.inputs = append(b.inputs, obj)
	b.Modified()
}

// Input returns the object in the given slot, or nil.
func (b *Base) Input(slot int) DataObject {
	if slot < 0 || slot >= len(b.inputs) {
		return nil
	}
	return b.inputs[slot]
}

// Inputs returns the ordered input slots. Slots may hold nil.
func (b *Base) Inputs() []DataObject { return b.inputs }

// RegisterOutput records obj as an owned output of this node.
func (b *Base) RegisterOutput(obj DataObject) {
	obj.setProducer(b.owner())
	b.outputs = append(b.outputs, obj)
}

// Output returns the output object at the given index, or nil.
func (b *Base) Output(idx int) DataObject {
	if idx < 0 || idx >= len(b.outputs) {
		return nil
	}
	return b.outputs[idx]
}

// Outputs returns the node's owned outputs.
func (b *Base) Outputs() []DataObject { return b.outputs }

// SetWorkers bounds the intra-node parallelism of ParallelGenerate.
func (b *Base) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	b.workers = n
}

// Workers returns the intra-node parallelism bound.
func (b *Base) Workers() int { return b.workers }

// GenerateOutputInformation is the default phase-1 hook: every output
// takes the first input's whole extent. All wired inputs must agree on
// dimensionality.
func (b *Base) GenerateOutputInformation() error {
	first := b.firstInput()
	if first == nil {
		return nil
	}
	dims := first.WholeExtent().Dims()
	for _, in := range b.inputs {
		if in == nil {
			continue
		}
		if in.WholeExtent().Dims() != dims {
			return interrors.With(ErrStructuralMismatch,
				fmt.Errorf("node %q: input dimensionality %d != %d", b.name, in.WholeExtent().Dims(), dims))
		}
	}
	for _, out := range b.outputs {
		out.SetWholeExtent(first.WholeExtent())
	}
	return nil
}

// PropagateRequestedExtent is the default phase-2 hook: every input is
// asked for exactly the output's requested extent.
func (b *Base) PropagateRequestedExtent(out DataObject) error {
	for _, in := range b.inputs {
		if in == nil {
			continue
		}
		in.SetRequestedExtent(out.RequestedExtent())
	}
	return nil
}

// GenerateData is the default phase-3 hook; concrete nodes override it.
func (b *Base) GenerateData(ctx context.Context) error {
	return nil
}

// ParallelGenerate splits region into as many pieces as the node has
// workers and runs fn over the pieces concurrently, joining before return.
// Pieces are disjoint, so workers never share mutable elements; the first
// piece error cancels the rest and is returned. With one worker it
// degenerates to a single call.
func (b *Base) ParallelGenerate(ctx context.Context, region extent.Extent, fn func(ctx context.Context, piece extent.Extent) error) error {
	if b.workers <= 1 || region.Elements() <= 1 {
		return fn(ctx, region)
	}

	p := concurrency.NewPool(ctx, b.workers)
	for _, piece := range extent.Split(region, b.workers) {
		piece := piece
		p.Go(func(ctx context.Context) error {
			return fn(ctx, piece)
		})
	}
	return p.Wait()
}

func (b *Base) firstInput() DataObject {
	for _, in := range b.inputs {
		if in != nil {
			return in
		}
	}
	return nil
}

// owner resolves the Node value that embeds this Base. Without a Bind
// call the Base itself acts as the node, with all-default hooks.
func (b *Base) owner() Node {
	if b.self != nil {
		return b.self
	}
	return b
}
