// Package lifecycle owns the policy-bundle rollout state machine:
//
//	draft -> active(canary 1-99%) -> active(100%, fully promoted) -> superseded
//
// with a rollback transition from any active state back to the bundle that
// was active before it.
//
// Activation requires an approval id and always deactivates whichever bundle
// was previously active, so at most one bundle is fully promoted at a time
// and at most one additional bundle is an in-flight canary. Transitions run
// under a manager-level mutex and a single store transaction, which keeps
// that invariant from being even transiently violated under concurrent
// lifecycle calls.
//
// Promotion is gated: EvaluateGates checks a live metrics snapshot (sample
// size, error rate, deny rate, cost regression against baseline) and returns
// an itemized pass/fail result. Gate failures are normal results, not
// errors; they block promotion without crashing callers. The Scheduler in
// this package drives periodic gate re-evaluation on a cron cadence; the
// manager itself owns no background work.
package lifecycle
