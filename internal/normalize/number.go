package normalize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var firstNumber = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?`)

// parseNumber reads the first number in s, accepting currency signs, thousands
// separators, an explicit sign on either side of the currency sign, and
// accounting parentheses for negatives.
func parseNumber(s string) (*decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)

	m := firstNumber.FindString(s)
	if m == "" {
		return nil, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(m, "+"))
	if err != nil {
		return nil, false
	}
	if neg && d.IsPositive() {
		d = d.Neg()
	}
	return &d, true
}

// numberValue converts a decoded JSON value into a decimal.
func numberValue(v any) (*decimal.Decimal, bool) {
	switch x := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return nil, false
		}
		return &d, true
	case float64:
		d := decimal.NewFromFloat(x)
		return &d, true
	case string:
		if isSentinel(x) {
			return nil, false
		}
		return parseNumber(x)
	default:
		return nil, false
	}
}

// textValue converts a decoded JSON value into display text.
func textValue(v any) string {
	switch x := v.(type) {
	case string:
		if isSentinel(x) {
			return ""
		}
		return Sanitize(x)
	case json.Number:
		return x.String()
	case float64:
		return decimal.NewFromFloat(x).String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
