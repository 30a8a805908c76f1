package policy

// Budget is a resource ceiling for a single agent execution. All fields are
// optional; a dimension is only enforced when both its limit and the
// corresponding usage value are supplied.
type Budget struct {
	// MS is the wall-clock limit in milliseconds.
	MS *float64 `yaml:"ms,omitempty" json:"ms,omitempty"`

	// Ops is the operation-count limit.
	Ops *int64 `yaml:"ops,omitempty" json:"ops,omitempty"`

	// CostCents is the monetary limit in cents.
	CostCents *float64 `yaml:"cost_cents,omitempty" json:"cost_cents,omitempty"`
}

// BudgetUsage carries the observed resource usage of an execution, matched
// dimension-for-dimension against a Budget. Nil fields are unmeasured.
type BudgetUsage struct {
	MS        *float64 `json:"ms,omitempty"`
	Ops       *int64   `json:"ops,omitempty"`
	CostCents *float64 `json:"cost_cents,omitempty"`
}

// BudgetReport is the per-dimension result of a budget check.
type BudgetReport struct {
	// MSExceeded is true when the wall-clock limit was exceeded.
	MSExceeded bool `json:"ms_exceeded"`

	// OpsExceeded is true when the operation-count limit was exceeded.
	OpsExceeded bool `json:"ops_exceeded"`

	// CostExceeded is true when the cost limit was exceeded.
	CostExceeded bool `json:"cost_exceeded"`

	// Exceeded is true when any checked dimension was exceeded.
	Exceeded bool `json:"exceeded"`
}

// HasLimit reports whether any dimension of the budget is set.
func (b *Budget) HasLimit() bool {
	return b.MS != nil || b.Ops != nil || b.CostCents != nil
}

// IsExceeded compares observed usage against the budget. A dimension is
// checked only when both the limit and the usage value are present.
func (b *Budget) IsExceeded(usage BudgetUsage) BudgetReport {
	var report BudgetReport

	if b.MS != nil && usage.MS != nil && *usage.MS > *b.MS {
		report.MSExceeded = true
	}
	if b.Ops != nil && usage.Ops != nil && *usage.Ops > *b.Ops {
		report.OpsExceeded = true
	}
	if b.CostCents != nil && usage.CostCents != nil && *usage.CostCents > *b.CostCents {
		report.CostExceeded = true
	}

	report.Exceeded = report.MSExceeded || report.OpsExceeded || report.CostExceeded
	return report
}
