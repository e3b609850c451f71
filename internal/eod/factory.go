package eod

import (
	"errors"
	"time"

	"tradeshot/internal/interfaces"
)

var defaultSummarizer interfaces.EodSummarizer = unconfigured{}

type unconfigured struct{}

func (unconfigured) SummarizeDay(time.Time) (string, error) {
	return "", errors.New("eod summarizer not initialized")
}

func (unconfigured) SummarizeToday() (string, error) {
	return "", errors.New("eod summarizer not initialized")
}

// SetDefaultSummarizer replaces the package summarizer (e.g. with one wrapped
// with observability).
func SetDefaultSummarizer(summarizer interfaces.EodSummarizer) {
	defaultSummarizer = summarizer
}

// NewSummarizer summarizes records from source into summaryDir.
func NewSummarizer(source RecordSource, summaryDir string) interfaces.EodSummarizer {
	return &eodSummarizer{source: source, dir: summaryDir, now: time.Now}
}

func SummarizeDay(t time.Time) (string, error) {
	return defaultSummarizer.SummarizeDay(t)
}

func SummarizeToday() (string, error) {
	return defaultSummarizer.SummarizeToday()
}
