package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Aashish23092/bill-extraction/dto"
)

var (
	numericTokenRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
	dateTokenRegex    = regexp.MustCompile(`^[0-9]{1,2}/[0-9]{1,2}/[0-9]{4}$`)
)

// IsNumericToken reports whether the whole token is an unsigned integer or decimal literal.
func IsNumericToken(token string) bool {
	return numericTokenRegex.MatchString(token)
}

// IsDateToken reports whether the whole token is a D/M/YYYY style date.
func IsDateToken(token string) bool {
	return dateTokenRegex.MatchString(token)
}

// ParseLineItem turns one OCR text line into a line item.
// The last three numeric tokens are read as quantity, rate and amount; the
// amount is then recomputed as quantity*rate since the OCR amount column is
// the noisiest of the three. Digit-only product codes in the name still
// count as numeric tokens and can shift that tail.
func ParseLineItem(line string) (dto.LineItem, bool) {
	tokens := strings.Fields(line)

	// name + qty + rate + amount
	if len(tokens) < 4 {
		return dto.LineItem{}, false
	}

	var numbers []string
	var nameTokens []string
	for _, t := range tokens {
		switch {
		case IsNumericToken(t):
			numbers = append(numbers, t)
		case IsDateToken(t):
		default:
			nameTokens = append(nameTokens, t)
		}
	}
	if len(numbers) < 3 {
		return dto.LineItem{}, false
	}

	tail := numbers[len(numbers)-3:]
	qty, err := strconv.ParseFloat(tail[0], 64)
	if err != nil {
		return dto.LineItem{}, false
	}
	rate, err := strconv.ParseFloat(tail[1], 64)
	if err != nil {
		return dto.LineItem{}, false
	}

	name := strings.TrimSpace(strings.Join(nameTokens, " "))
	if !IsValidItemName(name) {
		return dto.LineItem{}, false
	}

	return dto.LineItem{
		Name:     name,
		Quantity: qty,
		Rate:     rate,
		Amount:   qty * rate,
	}, true
}

// ParseLineItemsFromText runs ParseLineItem over every line, keeping line order.
func ParseLineItemsFromText(lines []string) []dto.LineItem {
	items := make([]dto.LineItem, 0, len(lines))
	for _, line := range lines {
		if item, ok := ParseLineItem(line); ok {
			items = append(items, item)
		}
	}
	return items
}

// IsValidItemName filters empty names and summary/footer rows.
func IsValidItemName(name string) bool {
	return name != "" && !strings.Contains(strings.ToLower(name), "total")
}

// SplitTextLines splits raw OCR output into trimmed, non-empty lines.
func SplitTextLines(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	raw := strings.Split(text, "\n")

	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
