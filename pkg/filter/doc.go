// Package filter provides the concrete pipeline nodes shipped with
// voxelflow: an external-reader source, a pass-through monitor, sub-extent
// extraction, shift-scale, region statistics, the series-joining node that
// collects pushed inputs into one extra axis, and a streaming sink.
//
// Every node here is a plain client of the pipeline core: it embeds
// pipeline.Base and implements the protocol hooks for its own extent
// arithmetic.
package filter
