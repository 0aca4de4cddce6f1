package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"diskwise/internal/model"
)

// modelVerdict is the JSON shape expected from the model-call adapter.
// Required fields are pointers so absence is distinguishable from zero
// values; unknown extra fields are ignored.
type modelVerdict struct {
	SafeToDelete *bool    `json:"safe_to_delete"`
	Confidence   *float64 `json:"confidence"`
	Reason       *string  `json:"reason"`
	Category     *string  `json:"category"`
	AutoApprove  *bool    `json:"auto_approve"`
}

// parseModelDecision extracts and validates the model's verdict from raw
// response text. The model decision supersedes the heuristic on success;
// only a missing category falls back to the heuristic's.
func parseModelDecision(raw string, heuristic model.Decision) (model.Decision, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return model.Decision{}, err
	}

	var verdict modelVerdict
	if err := json.Unmarshal([]byte(payload), &verdict); err != nil {
		return model.Decision{}, fmt.Errorf("invalid JSON in model response: %w", err)
	}

	if verdict.SafeToDelete == nil {
		return model.Decision{}, fmt.Errorf("model response missing safe_to_delete")
	}
	if verdict.Confidence == nil {
		return model.Decision{}, fmt.Errorf("model response missing confidence")
	}
	if verdict.Reason == nil || strings.TrimSpace(*verdict.Reason) == "" {
		return model.Decision{}, fmt.Errorf("model response missing reason")
	}

	category := heuristic.Category
	if verdict.Category != nil && *verdict.Category != "" {
		category = model.Category(strings.ToUpper(strings.TrimSpace(*verdict.Category)))
	}

	autoApprove := false
	if verdict.AutoApprove != nil {
		autoApprove = *verdict.AutoApprove
	}

	return model.Decision{
		Category:        category,
		Safe:            *verdict.SafeToDelete,
		Confidence:      model.ClampConfidence(*verdict.Confidence),
		Reason:          strings.TrimSpace(*verdict.Reason),
		AutoApprove:     autoApprove,
		IsModelDecision: true,
	}, nil
}

// extractJSONObject strips any enclosing formatting (markdown fences, prose)
// and returns the outermost {...} span of the response.
func extractJSONObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	// Remove markdown code fences if present.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object found in model response")
	}

	return s[start : end+1], nil
}
