// Package runekit implements the rendering core of a terminal UI framework:
// a cell/grid model, a strategy-picking reconciler, a control-sequence
// renderer, a coalescing/backpressure pipeline, and a console capture layer
// that lets a live region coexist with a process's own stdout/stderr.
package runekit
