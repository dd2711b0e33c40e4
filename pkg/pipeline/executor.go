package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	interrors "github.com/voxelflow/voxelflow/internal/errors"
	"github.com/voxelflow/voxelflow/pkg/extent"
	"github.com/voxelflow/voxelflow/pkg/logger"
)

// Executor runs the three-phase update protocol over a node graph. It is
// stateless between updates apart from its logger and tracer; the same
// executor may drive any number of pipelines.
type Executor struct {
	log    logger.Logger
	tracer trace.Tracer
}

type ExecutorOption func(*Executor)

func WithLogger(log logger.Logger) ExecutorOption {
	return func(e *Executor) {
		e.log = log
	}
}

func WithTracer(tracer trace.Tracer) ExecutorOption {
	return func(e *Executor) {
		e.tracer = tracer
	}
}

func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		log:    logger.NewNoopLogger(),
		tracer: otel.Tracer("voxelflow/pkg/pipeline"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UpdateInformation runs phase 1 only: whole extents and other metadata
// are propagated upstream to downstream, recomputed only where the graph
// changed since the last pass.
func (e *Executor) UpdateInformation(ctx context.Context, obj DataObject) error {
	_, span := e.tracer.Start(ctx, "pipeline.UpdateInformation")
	defer span.End()

	st := newUpdateState(e)
	if err := st.information(obj); err != nil {
		return traceError(span, err)
	}
	return nil
}

// Update runs all three phases to satisfy obj's requested extent. An unset
// requested extent defaults to the whole extent.
func (e *Executor) Update(ctx context.Context, obj DataObject) error {
	return e.update(ctx, obj, extent.Extent{})
}

// UpdateExtent sets obj's requested extent and runs all three phases.
func (e *Executor) UpdateExtent(ctx context.Context, obj DataObject, req extent.Extent) error {
	return e.update(ctx, obj, req)
}

func (e *Executor) update(ctx context.Context, obj DataObject, req extent.Extent) error {
	updateID := ulid.Make().String()
	ctx, span := e.tracer.Start(ctx, "pipeline.Update",
		trace.WithAttributes(attribute.String("update_id", updateID)))
	defer span.End()

	start := time.Now()
	updatesTotal.Inc()

	st := newUpdateState(e)

	if err := st.information(obj); err != nil {
		return traceError(span, err)
	}

	if req.Dims() > 0 {
		obj.SetRequestedExtent(req)
	} else if obj.RequestedExtent().Dims() == 0 {
		obj.SetRequestedExtentToWhole()
	}

	if err := st.propagate(obj); err != nil {
		return traceError(span, err)
	}
	if err := st.generate(ctx, obj); err != nil {
		return traceError(span, err)
	}

	updateDurationSeconds.Observe(time.Since(start).Seconds())
	e.log.Debug("pipeline update complete",
		zap.String("update_id", updateID),
		zap.Stringer("requested", obj.RequestedExtent()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func traceError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// updateState is the bookkeeping of one top-level update: which nodes have
// refreshed their metadata, the aggregated pipeline stamps, and the
// recursion path used for cycle detection.
type updateState struct {
	e         *Executor
	infoDone  *hashset.Set
	onPath    *hashset.Set
	pipeTimes map[Node]uint64
}

func newUpdateState(e *Executor) *updateState {
	return &updateState{
		e:         e,
		infoDone:  hashset.New(),
		onPath:    hashset.New(),
		pipeTimes: map[Node]uint64{},
	}
}

// information recursively refreshes metadata upstream-first and computes
// each node's pipeline stamp: the newest modification anywhere in or
// above the node. The stamp is what lets phase 3 prune entire unchanged
// subgraphs without walking them.
func (st *updateState) information(obj DataObject) error {
	n := obj.Producer()
	if n == nil {
		if obj.WholeExtent().Dims() == 0 {
			return interrors.With(ErrStructuralMismatch,
				fmt.Errorf("data object has neither a producer nor a whole extent"))
		}
		return nil
	}
	return st.nodeInformation(n)
}

func (st *updateState) nodeInformation(n Node) error {
	if st.onPath.Contains(n) {
		return interrors.With(ErrCycle, fmt.Errorf("node %q is its own ancestor", n.Name()))
	}
	if st.infoDone.Contains(n) {
		return nil
	}
	st.onPath.Add(n)
	defer st.onPath.Remove(n)

	b := n.base()
	stamp := b.modified
	for _, in := range b.inputs {
		if in == nil {
			continue
		}
		if err := st.information(in); err != nil {
			return err
		}
		if p := in.Producer(); p != nil {
			stamp = max(stamp, st.pipeTimes[p])
		}
		stamp = max(stamp, in.ModifiedTime())
	}
	st.pipeTimes[n] = stamp

	if stamp > b.infoTime {
		if err := n.GenerateOutputInformation(); err != nil {
			return err
		}
		b.infoTime = tick()
	}

	st.infoDone.Add(n)
	return nil
}

// propagate pushes requested extents downstream to upstream, validating
// each against the whole extent before recursing. Objects feeding several
// consumers are visited once per consumer; the last demand wins, which is
// why generation re-propagates per consumer (see generate).
func (st *updateState) propagate(obj DataObject) error {
	if err := validateRequested(obj); err != nil {
		return err
	}
	n := obj.Producer()
	if n == nil {
		return nil
	}
	if st.onPath.Contains(n) {
		return interrors.With(ErrCycle, fmt.Errorf("node %q is its own ancestor", n.Name()))
	}
	st.onPath.Add(n)
	defer st.onPath.Remove(n)

	if err := n.PropagateRequestedExtent(obj); err != nil {
		return err
	}
	for _, in := range n.base().inputs {
		if in == nil {
			continue
		}
		if err := st.propagate(in); err != nil {
			return err
		}
	}
	return nil
}

func validateRequested(obj DataObject) error {
	req := obj.RequestedExtent()
	if req.IsEmpty() {
		return nil
	}
	if !obj.WholeExtent().Contains(req) {
		return interrors.With(ErrRegionOutOfBounds,
			fmt.Errorf("%s requested %v outside whole extent %v", describe(obj), req, obj.WholeExtent()))
	}
	return nil
}

// generate runs phase 3 for obj: decide staleness, re-propagate this
// consumer's demand, update the input subtrees, then let the node
// materialize its outputs. A fresh node prunes its whole upstream walk.
func (st *updateState) generate(ctx context.Context, obj DataObject) error {
	n := obj.Producer()
	if n == nil {
		if !obj.BufferedExtent().Contains(obj.RequestedExtent()) {
			return interrors.With(ErrRegionOutOfBounds,
				fmt.Errorf("external object buffers %v which does not cover requested %v",
					obj.BufferedExtent(), obj.RequestedExtent()))
		}
		return nil
	}

	b := n.base()
	if !st.stale(n) {
		nodesSkippedTotal.Inc()
		st.e.log.Debug("node up to date", zap.String("node", n.Name()))
		return nil
	}

	if st.onPath.Contains(n) {
		return interrors.With(ErrCycle, fmt.Errorf("node %q is its own ancestor", n.Name()))
	}
	st.onPath.Add(n)
	defer st.onPath.Remove(n)

	// Refresh this consumer's demand before updating upstream: an object
	// shared by several consumers holds whichever demand was propagated
	// last, and it must be this node's when its inputs regenerate.
	if err := n.PropagateRequestedExtent(obj); err != nil {
		return err
	}
	for _, in := range b.inputs {
		if in == nil {
			continue
		}
		if err := validateRequested(in); err != nil {
			return err
		}
		if err := st.generate(ctx, in); err != nil {
			return err
		}
	}

	genCtx, span := st.e.tracer.Start(ctx, "pipeline.GenerateData",
		trace.WithAttributes(attribute.String("node", n.Name())))
	err := n.GenerateData(genCtx)
	if err != nil {
		for _, out := range b.outputs {
			out.discardStaging()
		}
		traceError(span, err)
		span.End()
		return fmt.Errorf("node %q: %w", n.Name(), err)
	}
	span.End()

	for _, out := range b.outputs {
		if !out.BufferedExtent().Contains(out.RequestedExtent()) {
			return interrors.With(ErrRegionOutOfBounds,
				fmt.Errorf("node %q produced %v which does not cover requested %v",
					n.Name(), out.BufferedExtent(), out.RequestedExtent()))
		}
	}

	nodesGeneratedTotal.Inc()
	st.e.log.Debug("node generated",
		zap.String("node", n.Name()),
		zap.Stringer("requested", obj.RequestedExtent()),
	)

	// Streaming memory bound: flagged inputs are freed as soon as this
	// consumer is done with them.
	for _, in := range b.inputs {
		if in != nil && in.ReleaseDataFlag() {
			in.ReleaseData()
		}
	}
	return nil
}

// stale reports whether n must regenerate: something in or above the node
// changed after its outputs were produced, or an output does not buffer
// what is requested of it.
func (st *updateState) stale(n Node) bool {
	b := n.base()
	stamp := st.pipeTimes[n]
	for _, out := range b.outputs {
		if stamp > out.ModifiedTime() {
			return true
		}
		if !out.BufferedExtent().Contains(out.RequestedExtent()) {
			return true
		}
	}
	return false
}

func describe(obj DataObject) string {
	if p := obj.Producer(); p != nil {
		return fmt.Sprintf("output of node %q", p.Name())
	}
	return "external data object"
}
