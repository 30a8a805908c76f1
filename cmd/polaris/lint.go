package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"polaris-hq/polaris/pkg/cli"
	"polaris-hq/polaris/pkg/policy/source"
)

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate bundle files",
	Long: `Validate policy bundle YAML files for syntax and semantic errors.

The lint command parses bundle files and performs the same validation the
server applies at ingestion:
  - YAML syntax validation
  - Bundle structure validation (version, rules)
  - Rule validation (effects, priorities, duplicate IDs)

Examples:
  # Lint a single file
  polaris lint --file bundles/candidate.yaml

  # Lint a directory
  polaris lint --dir bundles/

  # JSON output for CI/CD
  polaris lint --dir bundles/ --format json`,
	RunE: lintBundles,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "bundle file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of bundle files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

type lintResult struct {
	File    string   `json:"file"`
	Valid   bool     `json:"valid"`
	Bundles int      `json:"bundles"`
	Rules   int      `json:"rules"`
	Errors  []string `json:"errors,omitempty"`
}

func lintBundles(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list bundle files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no bundle files found")
	}

	ctx := context.Background()
	results := make([]lintResult, 0, len(files))
	failures := 0

	for _, file := range files {
		result := lintResult{File: file, Valid: true}

		bundles, err := source.NewFileSource(file, nil).Load(ctx)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
			failures++
		} else {
			result.Bundles = len(bundles)
			for _, bundle := range bundles {
				result.Rules += len(bundle.Rules)
			}
		}
		results = append(results, result)
	}

	if lintFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, result := range results {
			if result.Valid {
				fmt.Printf("✓ %s (%d bundles, %d rules)\n", result.File, result.Bundles, result.Rules)
			} else {
				fmt.Printf("✗ %s\n", result.File)
				for _, msg := range result.Errors {
					fmt.Printf("    %s\n", msg)
				}
			}
		}
		fmt.Printf("\n%d files checked, %d invalid\n", len(results), failures)
	}

	if failures > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d of %d files invalid", failures, len(results)))
	}
	return nil
}
