package interfaces

import "time"

type EodSummarizer interface {
	SummarizeDay(t time.Time) (jsonPath string, err error)
	SummarizeToday() (jsonPath string, err error)
}
