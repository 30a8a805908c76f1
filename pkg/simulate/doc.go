// Package simulate provides the offline what-if engine: it replays a
// candidate rule set against a batch of cases (canned fixtures, seeded
// synthetic traffic, or caller-supplied) and reports decision-rate
// statistics, estimated resource cost, and governance-budget breaches,
// without ever touching the live bundle.
//
// The simulator deliberately evaluates conditions with a stricter DSL than
// the live engine (see pkg/policy/engine.SimMatcher): candidate rules are
// validated up front and an unknown comparison operator aborts the run
// instead of silently not matching.
//
// Compare runs two rule sets over the same case batch and diffs the
// per-case outcomes, which is how an operator sizes the blast radius of a
// proposed rule edit before activating it.
//
// Each Run and Compare call is independent and CPU-bound; Compare evaluates
// the two rule sets concurrently.
package simulate
