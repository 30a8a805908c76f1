package engine

import (
	"sort"

	"polaris-hq/polaris/pkg/policy"
)

// SortByPriority returns a copy of rules ordered by priority descending.
// The sort is stable, so rules with equal priority keep their authoring
// order and the first match wins among ties. This ordering is a documented
// contract, not incidental container behavior.
func SortByPriority(rules []*policy.PolicyRule) []*policy.PolicyRule {
	sorted := make([]*policy.PolicyRule, len(rules))
	copy(sorted, rules)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}
