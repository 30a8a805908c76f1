// Package engine provides the runtime decision engine that evaluates agent
// actions against the active policy bundle's rules.
//
// The engine is stateless per call, performs no I/O, and is deterministic:
// identical inputs always produce identical decisions. It reads an immutable
// rule snapshot that is swapped wholesale on bundle activation, so unbounded
// concurrent callers need no locking on the hot path.
//
// # Evaluation Flow
//
//	Decide(agent, action, context)
//	       |
//	Sort rules by priority descending (stable; authoring order breaks ties)
//	       |
//	For each enabled rule targeting (agent, action):
//	  all conditions match context? -> collect
//	       |
//	No matches -> configured default decision (fail-open allow by default)
//	Otherwise  -> highest-priority match wins, regardless of effect
//
// A narrow high-priority allow is meant to override a broad lower-priority
// deny, so the winning rule is chosen by priority alone, never by effect.
//
// # Condition Matchers
//
// Two ConditionMatcher strategies implement deliberately different condition
// semantics:
//
//   - LiveMatcher: plain context keys; non-numeric expected values require
//     exact equality, numeric expected values match when actual >= expected.
//     Missing context keys never match (fail closed).
//   - SimMatcher: condition keys carry their own comparator as a prefix
//     (">=", "<=", ">", "<", "==", "!="); comparisons are exact and typed.
//     Unknown operators are configuration errors, surfaced before matching.
//
// The divergence is intentional and preserved: the simulator exists to test
// parity against live behavior, so the two DSLs are never silently unified.
package engine
