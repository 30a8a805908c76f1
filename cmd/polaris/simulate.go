package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"polaris-hq/polaris/pkg/cli"
	"polaris-hq/polaris/pkg/policy"
	"polaris-hq/polaris/pkg/policy/source"
	"polaris-hq/polaris/pkg/simulate"
)

// progressCaseThreshold is the batch size at which the simulate command
// starts drawing a progress bar.
const progressCaseThreshold = 2000

var simulateFlags struct {
	rules       string
	compare     string
	dataset     string
	cases       string
	count       int
	seed        int64
	costCeiling float64
	format      string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a candidate rule set offline",
	Long: `Replay a candidate rule set against a decision dataset without
touching live traffic.

The rules come from a bundle YAML file; the draft state of the bundle is
irrelevant, only its rules are used. Datasets:
  - fixtures:  a small curated batch of known agent actions (default)
  - synthetic: generated cases, deterministic for a given seed
  - custom:    cases loaded from a YAML file via --cases

With --compare, a second rule set is replayed against the same dataset and
the per-case decision changes between the two are reported.

Examples:
  # Replay a candidate against the fixture dataset
  polaris simulate --rules bundles/candidate.yaml

  # Larger synthetic batch, reproducible by seed
  polaris simulate --rules bundles/candidate.yaml --dataset synthetic --count 5000 --seed 7

  # Diff a candidate against the current bundle
  polaris simulate --rules bundles/current.yaml --compare bundles/candidate.yaml

  # JSON report for CI/CD
  polaris simulate --rules bundles/candidate.yaml --format json`,
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&simulateFlags.rules, "rules", "r", "", "bundle file providing the rule set (required)")
	simulateCmd.Flags().StringVar(&simulateFlags.compare, "compare", "", "second bundle file to diff against --rules")
	simulateCmd.Flags().StringVar(&simulateFlags.dataset, "dataset", "fixtures", "dataset: fixtures, synthetic, custom")
	simulateCmd.Flags().StringVar(&simulateFlags.cases, "cases", "", "YAML file of cases for the custom dataset")
	simulateCmd.Flags().IntVar(&simulateFlags.count, "count", simulate.DefaultSyntheticCount, "synthetic case count")
	simulateCmd.Flags().Int64Var(&simulateFlags.seed, "seed", simulate.DefaultSyntheticSeed, "synthetic dataset seed")
	simulateCmd.Flags().Float64Var(&simulateFlags.costCeiling, "cost-ceiling", simulate.DefaultCostCeiling, "governance cost ceiling in dollars")
	simulateCmd.Flags().StringVar(&simulateFlags.format, "format", "text", "output format: text, json")

	simulateCmd.MarkFlagRequired("rules")
}

// loadRuleSet reads a bundle file and returns its rules. A directory path
// concatenates the rules of every bundle in it.
func loadRuleSet(ctx context.Context, path string) ([]*policy.PolicyRule, error) {
	bundles, err := source.NewFileSource(path, nil).Load(ctx)
	if err != nil {
		return nil, err
	}
	var rules []*policy.PolicyRule
	for _, bundle := range bundles {
		rules = append(rules, bundle.Rules...)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules found in %q", path)
	}
	return rules, nil
}

func loadDataset(ctx context.Context) ([]policy.SimCase, error) {
	switch simulateFlags.dataset {
	case "fixtures":
		return simulate.Fixtures(), nil
	case "synthetic":
		if simulateFlags.count <= 0 {
			return nil, fmt.Errorf("--count must be positive")
		}
		return simulate.GenerateSynthetic(simulateFlags.count, simulateFlags.seed), nil
	case "custom":
		if simulateFlags.cases == "" {
			return nil, fmt.Errorf("custom dataset requires --cases")
		}
		data, err := os.ReadFile(simulateFlags.cases)
		if err != nil {
			return nil, fmt.Errorf("failed to read cases file: %w", err)
		}
		var cases []policy.SimCase
		if err := yaml.Unmarshal(data, &cases); err != nil {
			return nil, fmt.Errorf("failed to parse cases file: %w", err)
		}
		if len(cases) == 0 {
			return nil, fmt.Errorf("cases file %q contains no cases", simulateFlags.cases)
		}
		return cases, nil
	default:
		return nil, fmt.Errorf("unknown dataset %q, must be fixtures, synthetic, or custom", simulateFlags.dataset)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rules, err := loadRuleSet(ctx, simulateFlags.rules)
	if err != nil {
		return cli.NewCommandError("simulate", err)
	}
	cases, err := loadDataset(ctx)
	if err != nil {
		return cli.NewCommandError("simulate", err)
	}

	simOpts := []simulate.Option{simulate.WithCostCeiling(simulateFlags.costCeiling)}

	if simulateFlags.compare != "" {
		rulesB, err := loadRuleSet(ctx, simulateFlags.compare)
		if err != nil {
			return cli.NewCommandError("simulate", err)
		}
		comparison, err := simulate.New(nil, simOpts...).Compare(rules, rulesB, cases)
		if err != nil {
			return cli.NewCommandError("simulate", err)
		}
		return printComparison(comparison)
	}

	// Large batches get a progress bar on stderr; JSON mode stays silent
	// so reports pipe cleanly.
	var progress cli.ProgressReporter
	if simulateFlags.format != "json" && len(cases) >= progressCaseThreshold {
		progress = cli.NewProgressReporter(os.Stderr)
		progress.Start(int64(len(cases)))
		simOpts = append(simOpts, simulate.WithProgress(func(completed, total int) {
			progress.Update(int64(completed))
		}))
	}

	report, err := simulate.New(nil, simOpts...).Run(rules, cases)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return cli.NewCommandError("simulate", err)
	}
	return printReport(report)
}

func printReport(report *simulate.Report) error {
	if simulateFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, report)
	}

	s := report.Summary
	fmt.Printf("Cases:            %d\n", s.TotalCases)
	fmt.Printf("Allow:            %d (%.1f%%)\n", s.AllowCount, s.AllowRate*100)
	fmt.Printf("Deny:             %d (%.1f%%)\n", s.DenyCount, s.DenyRate*100)
	fmt.Printf("Approval:         %d (%.1f%%)\n", s.ApprovalCount, s.ApprovalRate*100)
	fmt.Printf("No match:         %d (%.1f%%)\n", s.NoMatchCount, s.NoMatchRate*100)
	fmt.Printf("Estimated cost:   $%.2f\n", s.EstimatedCost)
	fmt.Printf("Estimated compute: %.1f units\n", s.EstimatedCompute)

	if len(s.Breaches) > 0 {
		fmt.Println()
		for _, breach := range s.Breaches {
			fmt.Printf("✗ %s\n", breach)
		}
		return cli.NewCommandError("simulate", fmt.Errorf("%d governance breaches", len(s.Breaches)))
	}
	return nil
}

func printComparison(comparison *simulate.Comparison) error {
	if simulateFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, comparison)
	}

	fmt.Printf("Cases:           %d\n", comparison.SummaryA.TotalCases)
	fmt.Printf("Changed:         %d\n", comparison.TotalChanges)
	fmt.Printf("Allow rate:      %+.1f%%\n", comparison.Deltas.AllowRate*100)
	fmt.Printf("Deny rate:       %+.1f%%\n", comparison.Deltas.DenyRate*100)
	fmt.Printf("Approval rate:   %+.1f%%\n", comparison.Deltas.ApprovalRate*100)
	fmt.Printf("Estimated cost:  %+.2f\n", comparison.Deltas.EstimatedCost)

	if comparison.TotalChanges > 0 {
		fmt.Println()
		for _, change := range comparison.Changes {
			fmt.Printf("  %s (%s/%s): %s[%s] -> %s[%s]\n",
				change.CaseID, change.Agent, change.Action,
				orNone(string(change.EffectA)), orNone(change.RuleA),
				orNone(string(change.EffectB)), orNone(change.RuleB))
		}
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
