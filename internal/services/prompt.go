package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSimilarityPrompt asks the model how well candidate text satisfies
// one job requirement.
func (pb *PromptBuilder) BuildSimilarityPrompt(requirement, candidateText string) string {
	return fmt.Sprintf(`You are an expert technical recruiter comparing one job requirement with a candidate's profile data.

JOB REQUIREMENT:
%s

CANDIDATE DATA:
%s

Rate how well the candidate data satisfies the requirement on a scale from 0.0 to 1.0:
- 1.0: the candidate data states the requirement directly or exceeds it
- 0.7: strongly related experience, minor gaps
- 0.4: partially related
- 0.0: unrelated or no evidence

Judge only on the text above. Do not reward keyword stuffing.

Return your response in the following JSON format:
{
  "similarity": <0.0-1.0>,
  "reason": "<one sentence>"
}`,
		strings.TrimSpace(requirement), truncateRunes(strings.TrimSpace(candidateText), 8000))
}

// SimilarityVerdict is the model's answer to a similarity prompt.
type SimilarityVerdict struct {
	Similarity float64 `json:"similarity"`
	Reason     string  `json:"reason"`
}

func parseJSONResponse(response string, target any) error {
	// Try to extract JSON from response (LLM might wrap it in markdown)
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w\nResponse: %s", err, response)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// BuildProfileExtractionPrompt asks the model to turn resume text into the
// profile document layout the rules read from.
func (pb *PromptBuilder) BuildProfileExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert resume parser. Extract the candidate's profile from the resume below.

RESUME:
%s

Return only facts stated in the resume. Use null for anything missing.
Return your response in the following JSON format:
{
  "name": "<full name>",
  "title": "<current or most recent job title>",
  "summary": "<two sentence professional summary>",
  "contact": {"email": "<email>", "location": "<city, country>"},
  "skills": {"technical": ["<skill>"], "soft": ["<skill>"], "tools": ["<tool>"]},
  "experience": [
    {"title": "<job title>", "company": "<company>", "years": <number>, "description": "<what they did>"}
  ],
  "education": [{"degree": "<degree>", "field": "<field>", "institution": "<institution>"}],
  "certifications": ["<certification>"],
  "derived": {"total_years": <number>, "skills_count": <number>}
}`, truncateRunes(strings.TrimSpace(resumeText), 20000))
}
