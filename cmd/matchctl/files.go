package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/talent-matcher/internal/models"
)

// ruleFile is the on-disk layout of a job's rules.
type ruleFile struct {
	JDVersion         int                      `yaml:"jd_version"`
	Rules             []models.Rule            `yaml:"rules"`
	KeywordCategories []models.KeywordCategory `yaml:"keyword_categories"`
}

// profileFile holds a candidate document; a file without a "document" key
// is taken to be the document itself.
type profileFile struct {
	Name       string         `yaml:"name"`
	Document   map[string]any `yaml:"document"`
	ResumeText string         `yaml:"resume_text"`
}

// loadRuleSet reads and validates a YAML or JSON rule file.
func loadRuleSet(path string) (*models.RuleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(content, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}

	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("%w: rule file %s has no rules", models.ErrInvalidRuleSet, path)
	}
	if err := models.ValidateRules(rf.Rules); err != nil {
		return nil, err
	}
	if err := models.ValidateKeywordCategories(rf.KeywordCategories); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRuleSet, err)
	}

	version := rf.JDVersion
	if version == 0 {
		version = 1
	}
	return &models.RuleSet{
		Version:           version,
		IsActive:          true,
		Rules:             rf.Rules,
		KeywordCategories: rf.KeywordCategories,
	}, nil
}

func loadProfile(path string) (*profileFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(content, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}

	if pf.Document == nil {
		var doc map[string]any
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse profile file %s: %w", path, err)
		}
		pf.Document = doc
	}
	if len(pf.Document) == 0 {
		return nil, fmt.Errorf("profile file %s is empty", path)
	}
	return &pf, nil
}

func readText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file %s: %w", path, err)
	}
	return strings.TrimSpace(string(content)), nil
}
