// Package flows contains the engine's flow orchestration logic, decoupled
// from the root package through dependency structs. Each flow returns a
// result value carrying a failure classification instead of an error so the
// root package owns error mapping, audit emission, and metrics.
package flows
