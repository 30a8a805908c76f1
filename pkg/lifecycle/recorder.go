package lifecycle

import (
	"context"
	"sync"

	"polaris-hq/polaris/pkg/policy"
)

// MetricsSource supplies live decision statistics for a bundle version.
// The gate scheduler consumes it; deployments with an external metrics
// pipeline implement it against that pipeline, single-instance deployments
// use the in-process Recorder.
type MetricsSource interface {
	Snapshot(ctx context.Context, version string) (GateMetrics, error)
}

// Recorder accumulates per-bundle decision statistics in process. The
// decide path feeds it; CheckGates and the scheduler read snapshots from
// it. Baseline cost is taken from the fully promoted bundle's recorded
// average.
type Recorder struct {
	mu       sync.RWMutex
	byBundle map[string]*bundleStats

	// baselineVersion is the fully promoted bundle whose average cost is
	// the canary's comparison baseline.
	baselineVersion string
}

type bundleStats struct {
	total     int64
	errors    int64
	denies    int64
	costSum   float64
	costCount int64
}

// NewRecorder creates an empty decision recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		byBundle: make(map[string]*bundleStats),
	}
}

// SetBaseline names the bundle version whose cost is the comparison
// baseline, normally the fully promoted bundle.
func (r *Recorder) SetBaseline(version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baselineVersion = version
}

// RecordDecision records one decision outcome for a bundle version. Cost is
// ignored when negative (unmeasured).
func (r *Recorder) RecordDecision(version string, effect policy.Effect, cost float64, errored bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.byBundle[version]
	if !ok {
		stats = &bundleStats{}
		r.byBundle[version] = stats
	}

	stats.total++
	if errored {
		stats.errors++
	}
	if effect == policy.EffectDeny {
		stats.denies++
	}
	if cost >= 0 {
		stats.costSum += cost
		stats.costCount++
	}
}

// Snapshot returns the gate-metrics view for a bundle version.
func (r *Recorder) Snapshot(ctx context.Context, version string) (GateMetrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics := GateMetrics{}
	if stats, ok := r.byBundle[version]; ok {
		metrics.TotalDecisions = stats.total
		metrics.ErrorCount = stats.errors
		metrics.DenyCount = stats.denies
		metrics.CanaryAvgCost = stats.avgCost()
	}
	if baseline, ok := r.byBundle[r.baselineVersion]; ok && r.baselineVersion != version {
		metrics.BaselineAvgCost = baseline.avgCost()
	}
	return metrics, nil
}

func (s *bundleStats) avgCost() float64 {
	if s.costCount == 0 {
		return 0
	}
	return s.costSum / float64(s.costCount)
}
