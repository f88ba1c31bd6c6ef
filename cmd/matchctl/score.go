package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/talent-matcher/internal/matching"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a profile document against a rule file",
	Long:  "Scores one candidate profile file against a job rule file and prints the match result as JSON.",
	RunE:  runScore,
}

var (
	scoreRules   string
	scoreProfile string
	scoreText    string
	scoreOutput  string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreRules, "rules", "r", "", "Path to the YAML or JSON rule file (required)")
	scoreCmd.Flags().StringVarP(&scoreProfile, "profile", "p", "", "Path to the YAML or JSON profile file (required)")
	scoreCmd.Flags().StringVarP(&scoreText, "text", "t", "", "Path to a plain text resume used for keyword matching")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Write the result to this file instead of stdout")

	if err := scoreCmd.MarkFlagRequired("rules"); err != nil {
		panic(fmt.Sprintf("failed to mark rules flag as required: %v", err))
	}
	if err := scoreCmd.MarkFlagRequired("profile"); err != nil {
		panic(fmt.Sprintf("failed to mark profile flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	rs, err := loadRuleSet(scoreRules)
	if err != nil {
		return err
	}

	profile, err := loadProfile(scoreProfile)
	if err != nil {
		return err
	}

	text, err := readText(scoreText)
	if err != nil {
		return err
	}
	if text == "" {
		text = profile.ResumeText
	}

	policy := matching.DefaultPolicy()
	engine := matching.NewEngine(matching.NewScorer(policy, nil), matching.NewKeywordMatcher(policy.FuzzyThreshold))

	result := engine.Match(context.Background(), rs, matching.Candidate{
		Name:       profile.Name,
		Document:   profile.Document,
		ResumeText: text,
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match result: %w", err)
	}

	if scoreOutput != "" {
		if err := os.WriteFile(scoreOutput, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", scoreOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Overall score %.2f written to %s\n", result.OverallScoreWeighted, scoreOutput)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
