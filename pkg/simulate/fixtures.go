package simulate

import "polaris-hq/polaris/pkg/policy"

// Fixtures returns the curated replay corpus: at least one case per known
// agent/action pair, spanning the context shapes rules commonly condition
// on. Callers receive a fresh copy on every call.
func Fixtures() []policy.SimCase {
	fixtures := []policy.SimCase{
		{
			CaseID: "fx-email-quarantine-high",
			Agent:  "email_triage",
			Action: "quarantine",
			Context: map[string]interface{}{
				"confidence":   0.97,
				"spam_score":   92.0,
				"sender_known": false,
			},
		},
		{
			CaseID: "fx-email-quarantine-low",
			Agent:  "email_triage",
			Action: "quarantine",
			Context: map[string]interface{}{
				"confidence":   0.41,
				"spam_score":   18.0,
				"sender_known": true,
			},
		},
		{
			CaseID: "fx-email-label",
			Agent:  "email_triage",
			Action: "apply_label",
			Context: map[string]interface{}{
				"confidence": 0.88,
				"label":      "newsletter",
			},
		},
		{
			CaseID: "fx-ksync-update",
			Agent:  "knowledge_sync",
			Action: "update_article",
			Context: map[string]interface{}{
				"staleness_days": 45.0,
				"article_views":  1200.0,
			},
		},
		{
			CaseID: "fx-ksync-delete",
			Agent:  "knowledge_sync",
			Action: "delete_article",
			Context: map[string]interface{}{
				"staleness_days": 400.0,
				"article_views":  3.0,
			},
		},
		{
			CaseID: "fx-report-publish",
			Agent:  "report_writer",
			Action: "publish",
			Context: map[string]interface{}{
				"reviewer_count": 2.0,
				"word_count":     1800.0,
			},
		},
		{
			CaseID: "fx-report-publish-unreviewed",
			Agent:  "report_writer",
			Action: "publish",
			Context: map[string]interface{}{
				"reviewer_count": 0.0,
				"word_count":     950.0,
			},
		},
		{
			CaseID: "fx-warehouse-vacuum",
			Agent:  "warehouse_monitor",
			Action: "run_maintenance",
			Context: map[string]interface{}{
				"table_size_gb": 120.0,
				"off_peak":      true,
			},
		},
		{
			CaseID: "fx-warehouse-drop",
			Agent:  "warehouse_monitor",
			Action: "drop_partition",
			Context: map[string]interface{}{
				"partition_age_days": 800.0,
				"row_count":          0.0,
			},
		},
	}
	out := make([]policy.SimCase, len(fixtures))
	for i, c := range fixtures {
		out[i] = c
		out[i].Context = make(map[string]interface{}, len(c.Context))
		for k, v := range c.Context {
			out[i].Context[k] = v
		}
	}
	return out
}
