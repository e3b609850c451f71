package types

import (
	"encoding/json"
	"strings"
)

// Recognition is what the text recognizer read from one screenshot.
type Recognition struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Words      int     `json:"words"`
}

// AnalyzerOutput is the analyzer reply resolved once into either a JSON
// object (Structured) or plain prose (Unstructured).
type AnalyzerOutput struct {
	fields map[string]any
	text   string
}

// Structured wraps a decoded JSON object.
func Structured(fields map[string]any) AnalyzerOutput {
	return AnalyzerOutput{fields: fields}
}

// Unstructured wraps free text that did not contain a JSON object.
func Unstructured(text string) AnalyzerOutput {
	return AnalyzerOutput{text: text}
}

// IsStructured reports which variant this is.
func (a AnalyzerOutput) IsStructured() bool {
	return a.fields != nil
}

// Fields returns the decoded object, or nil for the unstructured variant.
func (a AnalyzerOutput) Fields() map[string]any {
	return a.fields
}

// Text returns the raw text of the unstructured variant.
func (a AnalyzerOutput) Text() string {
	return a.text
}

// ResolveAnalyzerOutput strips markdown code fences and tries the whole reply,
// then the first '{' to the last '}', as a JSON object.
func ResolveAnalyzerOutput(raw string) AnalyzerOutput {
	t := stripCodeFence(strings.TrimSpace(raw))
	if t == "" {
		return Unstructured("")
	}

	if strings.HasPrefix(t, "{") {
		if m, ok := decodeObject(t); ok {
			return Structured(m)
		}
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		if m, ok := decodeObject(t[start : end+1]); ok {
			return Structured(m)
		}
	}
	return Unstructured(t)
}

func decodeObject(s string) (map[string]any, bool) {
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line (```json)
		if !strings.Contains(s[:nl], "{") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
