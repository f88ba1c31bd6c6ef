package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [rule-file...]",
	Short: "Check rule files without scoring anything",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		rs, err := loadRuleSet(path)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d rules, %d keyword categories\n", path, len(rs.Rules), len(rs.KeywordCategories))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d rule files are invalid", failed, len(args))
	}
	return nil
}
