// Package pipeline implements the demand-driven execution engine: data
// objects carrying whole/requested/buffered extents, process nodes wired
// into a DAG, the three-phase update protocol (information propagation,
// requested-extent propagation, data generation), and the streaming driver
// that replays an update in bounded-memory pieces.
//
// The executor walks the graph single-threaded; parallelism is internal to
// a node's generation step (see Base.ParallelGenerate). A node is only
// recomputed when it, or something upstream of it, changed since its
// outputs were produced, or when its outputs do not yet buffer the
// requested extent.
package pipeline
