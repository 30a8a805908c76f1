// Polaris is a governance control plane for autonomous agent fleets.
//
// It centralizes the authorization decisions agents must obtain before
// acting, and manages the lifecycle of the policy bundles those decisions
// are made from:
//   - Policy-based allow/deny/approval decisions for agent actions
//   - Canary activation, quality gates, promotion, and rollback for
//     policy bundles
//   - What-if simulation of candidate rule sets against fixture and
//     synthetic decision datasets
//   - Incident records for rollbacks and governance breaches
//
// Usage:
//
//	# Start the control plane with default configuration
//	polaris run
//
//	# Start with a custom configuration file
//	polaris run --config /etc/polaris/config.yaml
//
//	# Validate bundle files before ingesting them
//	polaris lint --dir bundles/
//
//	# Replay a candidate rule set against the synthetic dataset
//	polaris simulate --rules bundles/candidate.yaml --dataset synthetic
//
//	# Show version information
//	polaris version
package main

func main() {
	Execute()
}
