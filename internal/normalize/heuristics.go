package normalize

import (
	"regexp"
	"strings"

	"tradeshot/internal/types"
)

const number = `\(?[+-]?\$?[+-]?\d[\d,]*(?:\.\d+)?\)?`

var (
	labelledNumber = regexp.MustCompile(
		`(?i)\b(stop[ -]?loss|take[ -]?profit|entry|open|avg|fill|exit|close|closed|pnl|p&l|p/l|profit|loss|net|realized)` +
			`(?:[ _-]?(price|px|pnl|p&l|p/l|amount|value))?\s*["']?\s*[:=]?\s*["']?\s*(` + number + `)`)
	signedAmount = regexp.MustCompile(`(?:^|\s)([+-]\$?\d[\d,]*(?:\.\d+)?|\$[+-]\d[\d,]*(?:\.\d+)?)`)
	directionRe  = regexp.MustCompile(`(?i)\b(long|buy|bought|short|sell|sold)\b`)
	dateTimeRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}(?::\d{2})?`)
	tickerRe     = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}(?:!|[/.][A-Z0-9]{1,6})?$|^[A-Z][0-9]?!$`)
	intervalRe   = regexp.MustCompile(`^[MHDW]\d{1,3}$`)
)

// Words that show up in upper case on trading screens but are never symbols.
var notTickers = map[string]bool{
	"LONG": true, "SHORT": true, "BUY": true, "SELL": true, "BOUGHT": true, "SOLD": true,
	"ENTRY": true, "EXIT": true, "OPEN": true, "CLOSE": true, "CLOSED": true, "AVG": true, "FILL": true,
	"FILLED": true, "PNL": true, "PROFIT": true, "LOSS": true, "NET": true, "REALIZED": true,
	"UNREALIZED": true, "TOTAL": true, "QTY": true, "SIZE": true, "PRICE": true, "ORDER": true,
	"ORDERS": true, "TRADE": true, "TRADES": true, "MARKET": true, "LIMIT": true, "STOP": true,
	"POSITION": true, "POSITIONS": true, "BALANCE": true, "ACCOUNT": true, "SIDE": true, "DATE": true,
	"TIME": true, "LAST": true, "BID": true, "ASK": true, "VOL": true, "VOLUME": true, "HIGH": true,
	"LOW": true, "CHANGE": true, "CHG": true, "COMMISSION": true, "FEE": true, "FEES": true,
	"USD": true, "USDT": true, "EUR": true, "GBP": true, "JPY": true, "AM": true, "PM": true,
	"ET": true, "EST": true, "EDT": true, "UTC": true, "GMT": true, "CST": true, "TP": true,
	"SL": true, "GTC": true, "DAY": true, "OK": true, "UNKNOWN": true, "ERROR": true, "NULL": true,
	"NONE": true, "NA": true, "JSON": true, "TICKER": true, "SYMBOL": true,
	"OCR": true, "API": true, "AI": true, "LLM": true, "TEXT": true, "IMAGE": true, "CHART": true,
	"SCREENSHOT": true, "PDF": true, "PNG": true, "JPG": true, "JPEG": true, "HTTP": true,
}

// fromText is the fallback path: keyword and pattern matching over free text.
func fromText(text string) extraction {
	var e extraction
	e.ticker = findTicker(text, nil)

	if m := directionRe.FindStringSubmatch(text); m != nil {
		e.direction = types.ParseDirection(m[1])
	}

	for _, m := range labelledNumber.FindAllStringSubmatch(text, -1) {
		label, suffix, raw := strings.ToLower(m[1]), strings.ToLower(m[2]), m[3]
		v, ok := parseNumber(raw)
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(label, "stop") || strings.HasPrefix(label, "take"):
			// order levels, not results
			continue
		case isPnLLabel(label) || isPnLLabel(suffix):
			if e.pnlAmount == nil {
				if label == "loss" && !hasSign(raw) && v.IsPositive() {
					neg := v.Neg()
					v = &neg
				}
				e.pnlAmount = v
			}
		case label == "exit" || label == "close" || label == "closed":
			if e.exit == nil {
				e.exit = v
			}
		default:
			if e.entry == nil {
				e.entry = v
			}
		}
	}

	if e.pnlAmount == nil {
		if m := signedAmount.FindStringSubmatch(text); m != nil {
			e.pnlAmount, _ = parseNumber(m[1])
		}
	}

	e.dateTime = dateTimeRe.FindString(text)
	return e
}

func isPnLLabel(s string) bool {
	switch s {
	case "pnl", "p&l", "p/l", "profit", "loss", "net", "realized":
		return true
	}
	return false
}

func hasSign(s string) bool {
	return strings.ContainsAny(s, "+-()")
}

// looksLikeContract accepts only symbols that plain English words never
// resemble: NQ1!, BTC/USD, ES1.
func looksLikeContract(tok string) bool {
	return strings.ContainsAny(tok, "0123456789!/")
}

// findTicker returns the first token that looks like an instrument symbol and
// passes accept, when accept is set.
func findTicker(text string, accept func(string) bool) string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', ',', ';', '(', ')', '[', ']', '|', '"', '\'', '{', '}':
			return true
		}
		return false
	})
	for _, tok := range tokens {
		tok = strings.TrimRight(tok, ":.")
		if notTickers[tok] || intervalRe.MatchString(tok) {
			continue
		}
		if tickerRe.MatchString(tok) && (accept == nil || accept(tok)) {
			return tok
		}
	}
	return ""
}
