// Package async provides cancellable task handles and executors.
//
// A Task moves from pending to exactly one terminal state, done or
// cancelled. A RequestTask additionally owns a callback delegate and
// guarantees it is invoked at most once, and never after Cancel.
//
// Executors decouple where work runs from where callbacks run. Engines run
// their own work on a WorkerPool and dispatch callbacks on an Executor
// supplied by the caller.
package async
