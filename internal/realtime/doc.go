// Package realtime keeps client-side state consistent with the remote
// store while allowing immediate local feedback.
//
// # Moving parts
//
//   - Debouncer collapses bursts of per-row change notifications into a
//     single reload per resource key.
//   - Loader fetches a resource with filters and sort and decodes rows
//     into typed values.
//   - Scope owns the in-memory rows of one (resource, filter) pair and
//     guards them with generation/sequence stamps so late results for a
//     superseded scope are silently dropped and an older reload can
//     never overwrite a newer one.
//   - Scope.Mutate applies an optimistic update synchronously, issues
//     the remote call, and applies the exact inverse on failure.
//   - Manager owns change-feed subscriptions per scope key and tears
//     the old feed down whenever a scope is re-pointed.
//   - Session wires the above together; Bind attaches a typed Binding
//     for one resource to a session.
//
// # Data flow
//
// UI action -> Scope.Mutate (local + remote) -> store change feed ->
// Debouncer -> Loader -> Scope.ApplyResult -> row callbacks.
//
// Reloads fully replace the scope's rows, so a reload that re-confirms
// an optimistic change is naturally idempotent: nothing is ever
// double-applied.
package realtime
