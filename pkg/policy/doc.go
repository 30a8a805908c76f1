// Package policy defines the data model for the Polaris governance
// control-plane: authorization rules, resource budgets, policy decisions,
// versioned rule bundles, and simulation cases.
//
// The types in this package carry no behavior beyond validation and small
// derived accessors. Evaluation semantics live in pkg/policy/engine, bundle
// lifecycle transitions in pkg/lifecycle, and offline what-if analysis in
// pkg/simulate.
//
// # Rules and Bundles
//
// A PolicyRule authorizes or blocks a single (agent, action) combination,
// optionally narrowed by conditions over a flat key/value request context.
// Rules are grouped into immutable, versioned PolicyBundles; exactly one
// bundle serves live traffic at a time, optionally alongside one in-flight
// canary (see pkg/lifecycle).
//
// # Condition Semantics
//
// Conditions are interpreted by two deliberately distinct matchers: the live
// engine uses exact-match with numeric-threshold (>=) semantics, while the
// simulator uses a six-operator prefix DSL. See pkg/policy/engine for both.
package policy
