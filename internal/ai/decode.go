package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/zenith/internal/domain"
)

// cleanModelJSON strips Markdown fences and surrounding chatter from a model
// response, keeping the outermost JSON object or array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	opening, closing := "[", "]"
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	if objStart != -1 && (arrStart == -1 || objStart < arrStart) {
		opening, closing = "{", "}"
	}
	if start := strings.Index(s, opening); start != -1 {
		if end := strings.LastIndex(s, closing); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

type receiptPayload struct {
	Merchant string   `json:"merchant"`
	Total    *float64 `json:"total"`
	Date     string   `json:"date"`
}

// decodeReceipt keeps whatever fields are usable; a bad total or date is
// dropped rather than failing the whole extraction.
func decodeReceipt(raw string) (Receipt, error) {
	var p receiptPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &p); err != nil {
		return Receipt{}, fmt.Errorf("decodeReceipt: unmarshal JSON: %w", err)
	}

	r := Receipt{Merchant: strings.TrimSpace(p.Merchant)}
	if p.Total != nil {
		if total, err := domain.AmountFromFloat(*p.Total); err == nil && total.IsPositive() {
			r.Total = &total
		}
	}
	if p.Date != "" {
		if d, err := domain.ParseDate(p.Date); err == nil {
			r.Date = &d
		}
	}
	return r, nil
}

type goalSuggestionPayload struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"targetAmount"`
}

// decodeGoalSuggestions drops entries without a name or a positive target.
func decodeGoalSuggestions(raw string) ([]domain.GoalSuggestion, error) {
	var items []goalSuggestionPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &items); err != nil {
		return nil, fmt.Errorf("decodeGoalSuggestions: unmarshal JSON: %w", err)
	}

	out := make([]domain.GoalSuggestion, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		target, err := domain.AmountFromFloat(it.TargetAmount)
		if err != nil || !target.IsPositive() {
			continue
		}
		out = append(out, domain.GoalSuggestion{Name: name, TargetAmount: target})
	}
	return out, nil
}
