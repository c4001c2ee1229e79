// Package stream implements the execution engine: a lazy, multi-valued
// computation type that can fork into alternative branches, a credit-gated
// dispatcher that decides whether a branch runs inline or on a new worker,
// run-loop drivers that advance a computation to exhaustion, and the
// checkpoint/replay machinery that captures unfinished branches as journals
// and resumes them later.
//
// Dispatching a worker is the only operation in the engine that creates
// concurrency; everything else is synchronous composition. The only shared
// state between workers of one run is the run core: its result queue, its
// pending-branch registry and its credit counter.
package stream
