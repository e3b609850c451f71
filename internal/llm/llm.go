// Package llm holds what the analyzer providers share: prompts and the
// defensive reply digging used on every provider response.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tradeshot/internal/types"
)

// ErrNotConfigured is returned by providers that have no credentials.
var ErrNotConfigured = errors.New("llm provider not configured")

const DefaultSystemPrompt = "You are a precise trading journal assistant. You read OCR text from trading platform screenshots and answer with JSON only."

// AnalysisPrompt asks the model to turn OCR text into the trade JSON object.
func AnalysisPrompt(rawText string) string {
	return fmt.Sprintf(`A trader has uploaded a screenshot of their trading platform.
The OCR-extracted text is below. Analyze it and output a single JSON object.

OCR TEXT:
"""
%s
"""

Use exactly these keys, with null for anything you cannot find:
- ticker (e.g. NQ1!, BTCUSD)
- timeframe (e.g. 3m, 5m)
- entry_price (number)
- exit_price (number)
- direction ("long" or "short")
- pnl (the PnL text as shown)
- pnl_amount (signed number, negative for a loss)
- date_time (if visible)
- reason_or_annotations (if visible)

Return ONLY the JSON object.`, rawText)
}

// SummaryPrompt asks for a short plain-text email summary of rec.
func SummaryPrompt(rec types.TradeRecord) string {
	b, _ := json.Marshal(rec)
	return fmt.Sprintf(`Write a concise trade review for the trader's journal, at most 300 words,
in plain text paragraphs without markdown. Cover what was traded, the result, and one takeaway.

Trade:
%s`, string(b))
}

// ExtractContent digs the assistant text out of a provider response body.
// It understands OpenAI-style choices, Anthropic content blocks and a few
// older completion shapes, and falls back to the raw body.
func ExtractContent(body []byte) string {
	var anyResp any
	if err := json.Unmarshal(body, &anyResp); err != nil {
		return strings.TrimSpace(string(body))
	}
	m, ok := anyResp.(map[string]any)
	if !ok {
		return strings.TrimSpace(string(body))
	}

	// choices[0].message.content or choices[0].text
	if arr, ok := m["choices"].([]any); ok && len(arr) > 0 {
		if c0, ok := arr[0].(map[string]any); ok {
			if msg, ok := c0["message"].(map[string]any); ok {
				if s, ok := msg["content"].(string); ok && strings.TrimSpace(s) != "" {
					return s
				}
			}
			if s, ok := c0["text"].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}

	// content: [{type: text, text: ...}]
	if arr, ok := m["content"].([]any); ok {
		var parts []string
		for _, item := range arr {
			if block, ok := item.(map[string]any); ok {
				if s, ok := block["text"].(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, s)
				}
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}

	// messages[0].content
	if arr, ok := m["messages"].([]any); ok && len(arr) > 0 {
		if first, ok := arr[0].(map[string]any); ok {
			if s, ok := first["content"].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}

	for _, k := range []string{"completion", "output", "output_text", "completion_text", "result"} {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	return strings.TrimSpace(string(body))
}
