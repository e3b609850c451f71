package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// StorageResult reports the two writes the trade log performs for a record.
// A log failure means the trade will not be searchable later; a file failure
// means there is no standalone artifact. Neither rolls the other back.
type StorageResult struct {
	LogPath    string
	RecordPath string
	LogErr     error
	FileErr    error
}

func (s StorageResult) OK() bool          { return s.LogErr == nil && s.FileErr == nil }
func (s StorageResult) Searchable() bool  { return s.LogErr == nil }
func (s StorageResult) HasArtifact() bool { return s.FileErr == nil }

// SavedFiles lists the paths that were actually written.
func (s StorageResult) SavedFiles() []string {
	files := make([]string, 0, 2)
	if s.LogErr == nil && s.LogPath != "" {
		files = append(files, s.LogPath)
	}
	if s.FileErr == nil && s.RecordPath != "" {
		files = append(files, s.RecordPath)
	}
	return files
}

func (s StorageResult) MarshalJSON() ([]byte, error) {
	out := struct {
		LogPath    string `json:"log_path,omitempty"`
		RecordPath string `json:"record_path,omitempty"`
		LogError   string `json:"log_error,omitempty"`
		FileError  string `json:"file_error,omitempty"`
	}{LogPath: s.LogPath, RecordPath: s.RecordPath}
	if s.LogErr != nil {
		out.LogError = s.LogErr.Error()
	}
	if s.FileErr != nil {
		out.FileError = s.FileErr.Error()
	}
	return json.Marshal(out)
}

// Result is the complete answer for one processed screenshot. It is always
// produced, even when every stage degraded.
type Result struct {
	TradeID            string             `json:"trade_id"`
	Image              string             `json:"image"`
	Ticker             string             `json:"ticker"`
	Direction          Direction          `json:"direction"`
	EntryPrice         *decimal.Decimal   `json:"entry_price,omitempty"`
	ExitPrice          *decimal.Decimal   `json:"exit_price,omitempty"`
	PnLAmount          *decimal.Decimal   `json:"pnl_amount,omitempty"`
	Confidence         float64            `json:"confidence"`
	Record             TradeRecord        `json:"record"`
	SavedFiles         []string           `json:"saved_files"`
	Storage            StorageResult      `json:"storage"`
	NotificationStatus NotificationStatus `json:"notification_status"`
	EmailSent          bool               `json:"email_sent"`
	ArchiveKeys        []string           `json:"archive_keys,omitempty"`
	Warnings           []string           `json:"warnings,omitempty"`
	Error              string             `json:"error,omitempty"`
}

// BatchResult aggregates a directory run.
type BatchResult struct {
	Total         int      `json:"total"`
	OK            int      `json:"ok"`
	Fail          int      `json:"fail"`
	EmailsSent    int      `json:"emails_sent"`
	EmailFailures int      `json:"email_failures"`
	Details       []Result `json:"details"`
}

// NotificationAttempt is one line of the email attempt log.
type NotificationAttempt struct {
	AttemptID  string `json:"attempt_id"`
	TradeID    string `json:"trade_id"`
	Recipient  string `json:"recipient,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Status     string `json:"status"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
	Timestamp  string `json:"timestamp"`
}
