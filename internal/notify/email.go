package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/shopspring/decimal"

	"tradeshot/internal/normalize"
	"tradeshot/internal/types"
)

const textBody = `Trade Alert: {{.Ticker}} ({{.Outcome}})

Ticker:     {{.Ticker}}
Direction:  {{.Direction}}
{{- if .Entry}}
Entry:      {{.Entry}}{{end}}
{{- if .Exit}}
Exit:       {{.Exit}}{{end}}
PnL:        {{.PnL}}
{{- if .Timeframe}}
Timeframe:  {{.Timeframe}}{{end}}
{{- if .DateTime}}
Time:       {{.DateTime}}{{end}}
Confidence: {{.Confidence}}%
Trade ID:   {{.TradeID}}
{{- if .Notes}}

Notes: {{.Notes}}{{end}}
{{- if .Summary}}

{{.Summary}}{{end}}
`

const htmlBody = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
<h2 class="title">Trade Alert: {{.Ticker}}</h2>
<p class="outcome {{.OutcomeClass}}">{{.Outcome}}</p>
<table class="trade">
<tr><th>Ticker</th><td class="ticker">{{.Ticker}}</td></tr>
<tr><th>Direction</th><td class="direction">{{.Direction}}</td></tr>
{{if .Entry}}<tr><th>Entry</th><td class="entry">{{.Entry}}</td></tr>{{end}}
{{if .Exit}}<tr><th>Exit</th><td class="exit">{{.Exit}}</td></tr>{{end}}
<tr><th>PnL</th><td class="pnl">{{.PnL}}</td></tr>
{{if .Timeframe}}<tr><th>Timeframe</th><td class="timeframe">{{.Timeframe}}</td></tr>{{end}}
{{if .DateTime}}<tr><th>Time</th><td class="datetime">{{.DateTime}}</td></tr>{{end}}
<tr><th>Confidence</th><td class="confidence">{{.Confidence}}%</td></tr>
<tr><th>Trade ID</th><td class="trade-id">{{.TradeID}}</td></tr>
</table>
{{if .Notes}}<p class="notes">{{.Notes}}</p>{{end}}
{{range .Paragraphs}}<p class="summary">{{.}}</p>
{{end}}</body>
</html>
`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))
)

type emailView struct {
	TradeID      string
	Ticker       string
	Direction    string
	Entry        string
	Exit         string
	PnL          string
	Timeframe    string
	DateTime     string
	Confidence   string
	Notes        string
	Outcome      string
	OutcomeClass string
	Summary      string
	Paragraphs   []string
}

// Subject is the email subject line for rec.
func Subject(rec types.TradeRecord) string {
	return fmt.Sprintf("Trade Alert: %s - %s", normalize.Sanitize(rec.Ticker), rec.Outcome())
}

// RenderEmail builds the subject and both bodies. Every value is passed
// through the sanitizer first.
func RenderEmail(rec types.TradeRecord, summary string) (subject, text, html string, err error) {
	v := emailView{
		TradeID:      normalize.Sanitize(rec.TradeID),
		Ticker:       normalize.Sanitize(rec.Ticker),
		Direction:    strings.ToUpper(string(rec.Direction)),
		Entry:        formatPrice(rec.EntryPrice),
		Exit:         formatPrice(rec.ExitPrice),
		PnL:          formatPnL(rec.PnLAmount),
		Timeframe:    normalize.Sanitize(rec.Timeframe),
		DateTime:     normalize.Sanitize(rec.DateTime),
		Confidence:   fmt.Sprintf("%.1f", rec.Confidence),
		Notes:        normalize.Sanitize(rec.ReasonOrAnnotations),
		Outcome:      rec.Outcome(),
		OutcomeClass: strings.ToLower(rec.Outcome()),
		Summary:      normalize.Sanitize(summary),
	}
	for _, p := range strings.Split(v.Summary, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			v.Paragraphs = append(v.Paragraphs, p)
		}
	}

	var tb, hb bytes.Buffer
	if err := textTmpl.Execute(&tb, v); err != nil {
		return "", "", "", fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTmpl.Execute(&hb, v); err != nil {
		return "", "", "", fmt.Errorf("render html body: %w", err)
	}
	return Subject(rec), tb.String(), hb.String(), nil
}

// PlainSummary is the summary used when no summarizer is configured or it
// fails.
func PlainSummary(rec types.TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s trade", rec.Ticker, rec.Direction)
	if rec.EntryPrice != nil {
		fmt.Fprintf(&b, ", entry %s", rec.EntryPrice.String())
	}
	if rec.ExitPrice != nil {
		fmt.Fprintf(&b, ", exit %s", rec.ExitPrice.String())
	}
	fmt.Fprintf(&b, ", PnL %s.", formatPnL(rec.PnLAmount))
	return b.String()
}

func formatPrice(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func formatPnL(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	s := d.Abs().StringFixed(2)
	switch {
	case d.IsNegative():
		return "-$" + s
	case d.IsPositive():
		return "+$" + s
	default:
		return "$" + s
	}
}
