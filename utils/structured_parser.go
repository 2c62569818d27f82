package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Aashish23092/bill-extraction/dto"
)

const lineItemsSchema = `{
  "type": "object",
  "required": ["line_items"],
  "properties": {
    "line_items": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

var (
	lineItemsValidator = jsonschema.MustCompileString("line_items.json", lineItemsSchema)

	// Donut wraps its output in task tokens like <s_invoice>...</s_invoice>
	openingTaskToken = regexp.MustCompile(`^<s_[a-zA-Z0-9_-]+>`)
	closingTaskToken = regexp.MustCompile(`</s_[a-zA-Z0-9_-]+>$`)
	codeFence        = regexp.MustCompile("^```[a-zA-Z]*\\s*|\\s*```$")
)

// ParseStructuredLineItems maps a structured model payload to line items.
// The payload must be a JSON object carrying a "line_items" array; anything
// else is returned as an error so the caller can fall back to OCR. Numeric
// sub-fields are read leniently and default to 0.
func ParseStructuredLineItems(raw string) ([]dto.LineItem, error) {
	cleaned := CleanModelOutput(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("structured output is not JSON: %w", err)
	}
	if err := lineItemsValidator.Validate(doc); err != nil {
		return nil, fmt.Errorf("structured output does not match line_items schema: %w", err)
	}

	entries := doc.(map[string]any)["line_items"].([]any)
	items := make([]dto.LineItem, 0, len(entries))
	for _, e := range entries {
		entry := e.(map[string]any)

		name, _ := entry["name"].(string)
		name = strings.TrimSpace(name)
		if !IsValidItemName(name) {
			continue
		}

		qtyValue := entry["qty"]
		if qtyValue == nil {
			qtyValue = entry["quantity"]
		}

		items = append(items, dto.LineItem{
			Name:     name,
			Quantity: lenientNumber(qtyValue),
			Rate:     lenientNumber(entry["rate"]),
			Amount:   lenientNumber(entry["amount"]),
		})
	}
	return items, nil
}

// CleanModelOutput strips Donut task tokens and Markdown code fences.
func CleanModelOutput(text string) string {
	text = strings.TrimSpace(text)

	if loc := openingTaskToken.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[loc[1]:])
	}
	if loc := closingTaskToken.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[:loc[0]])
	}

	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// lenientNumber never fails: missing, empty, malformed or negative values read as 0.
func lenientNumber(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
