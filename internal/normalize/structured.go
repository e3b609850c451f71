package normalize

import (
	"strings"

	"tradeshot/internal/types"
)

var aliases = struct {
	ticker, direction, entry, exit, pnlAmount, pnl, timeframe, dateTime, notes []string
}{
	ticker:    []string{"ticker", "symbol", "instrument"},
	direction: []string{"direction", "side", "position", "type"},
	entry:     []string{"entry_price", "entry", "open_price"},
	exit:      []string{"exit_price", "exit", "close_price"},
	pnlAmount: []string{"pnl_amount", "pnl_value", "profit"},
	pnl:       []string{"pnl", "pnl_text", "result"},
	timeframe: []string{"timeframe"},
	dateTime:  []string{"date_time", "datetime", "time"},
	notes:     []string{"reason_or_annotations", "notes", "annotations"},
}

// isFailureReply reports whether the analyzer answered with an error object,
// e.g. {"error": "API request timed out", "ticker": "UNKNOWN", "pnl_amount": 0}.
// Its placeholder values are not trade data.
func isFailureReply(fields map[string]any) bool {
	for k, v := range fields {
		if strings.EqualFold(strings.TrimSpace(k), "error") && v != nil && v != false && textValue(v) != "" {
			return true
		}
	}
	return false
}

// fromStructured reads trade fields out of a decoded analyzer object. Keys are
// matched case-insensitively; the first alias with a usable value wins.
func fromStructured(fields map[string]any) extraction {
	m := make(map[string]any, len(fields))
	for k, v := range fields {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}

	var e extraction
	if v, ok := lookup(m, aliases.ticker, func(v any) bool { return cleanTicker(textValue(v)) != "" }); ok {
		e.ticker = cleanTicker(textValue(v))
	}
	if v, ok := lookup(m, aliases.direction, func(v any) bool {
		return types.ParseDirection(textValue(v)) != types.DirectionUnknown
	}); ok {
		e.direction = types.ParseDirection(textValue(v))
	}
	if v, ok := lookup(m, aliases.entry, isNumber); ok {
		e.entry, _ = numberValue(v)
	}
	if v, ok := lookup(m, aliases.exit, isNumber); ok {
		e.exit, _ = numberValue(v)
	}
	if v, ok := lookup(m, aliases.pnlAmount, isNumber); ok {
		e.pnlAmount, _ = numberValue(v)
	}
	if v, ok := lookup(m, aliases.pnl, isText); ok {
		e.pnl = textValue(v)
		if e.pnlAmount == nil {
			e.pnlAmount, _ = parseNumber(e.pnl)
		}
	}
	if v, ok := lookup(m, aliases.timeframe, isText); ok {
		e.timeframe = textValue(v)
	}
	if v, ok := lookup(m, aliases.dateTime, isText); ok {
		e.dateTime = textValue(v)
	}
	if v, ok := lookup(m, aliases.notes, isText); ok {
		e.notes = textValue(v)
	}
	return e
}

func lookup(m map[string]any, keys []string, usable func(any) bool) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil && usable(v) {
			return v, true
		}
	}
	return nil, false
}

func isNumber(v any) bool {
	_, ok := numberValue(v)
	return ok
}

func isText(v any) bool {
	return textValue(v) != ""
}
