// Package streamly provides a concurrent, nondeterministic stream engine.
//
// A computation is built as a stream.Stream value that can produce zero,
// one or many results by forking into alternative branches. Running it
// advances the stream one result at a time under a bounded pool of workers:
// each alternation point either runs inline or, when a credit is available,
// is handed to a new worker whose results flow back through the run's
// result queue. In-flight branches can be checkpointed as ordered decision
// journals and resumed later.
//
// The engine comes with pluggable service layers:
//
//   - stream    – the computation type, dispatcher and run-loop drivers
//   - journal   – branch decision logs and recording sets
//   - dao       – recording persistence (memory, filesystem, SQLite)
//   - messaging – the queue abstraction backing a run's result channel
//
// End-users typically interact with the engine via the high-level Service
// façade exposed by the root package:
//
//	srv := streamly.New()
//	rt := srv.Runtime()
//	values, _ := streamly.ToList(ctx, rt, stream.Each([]int{1, 2, 3}))
//
// For more details see the individual sub-packages.
package streamly
