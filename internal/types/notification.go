package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NotificationKind is the closed set of outcomes of the notification step.
type NotificationKind int

const (
	// NotificationPending is the zero value: the dispatcher has not run yet.
	NotificationPending NotificationKind = iota
	NotificationNotRequested
	NotificationNotConfigured
	NotificationNoAmount
	NotificationSent
	NotificationFailed
)

const (
	statusNotRequested  = "not requested"
	statusNotConfigured = "not configured"
	statusNoAmount      = "no amount to report"
	sentPrefix          = "sent to "
	failedPrefix        = "failed: "
)

// NotificationStatus records what happened to the optional email for a trade.
// Sent carries the recipient address, Failed carries the reason.
type NotificationStatus struct {
	Kind   NotificationKind
	Detail string
}

func NotRequested() NotificationStatus  { return NotificationStatus{Kind: NotificationNotRequested} }
func NotConfigured() NotificationStatus { return NotificationStatus{Kind: NotificationNotConfigured} }
func NoAmountToReport() NotificationStatus {
	return NotificationStatus{Kind: NotificationNoAmount}
}

func SentTo(address string) NotificationStatus {
	return NotificationStatus{Kind: NotificationSent, Detail: address}
}

func Failed(reason string) NotificationStatus {
	return NotificationStatus{Kind: NotificationFailed, Detail: reason}
}

// IsZero lets encoding/json omit a status that was never decided.
func (s NotificationStatus) IsZero() bool {
	return s.Kind == NotificationPending
}

// Sent reports whether the email went out.
func (s NotificationStatus) Sent() bool {
	return s.Kind == NotificationSent
}

func (s NotificationStatus) String() string {
	switch s.Kind {
	case NotificationNotRequested:
		return statusNotRequested
	case NotificationNotConfigured:
		return statusNotConfigured
	case NotificationNoAmount:
		return statusNoAmount
	case NotificationSent:
		return sentPrefix + s.Detail
	case NotificationFailed:
		return failedPrefix + s.Detail
	default:
		return ""
	}
}

// ParseNotificationStatus is the inverse of String.
func ParseNotificationStatus(s string) (NotificationStatus, error) {
	switch {
	case s == "":
		return NotificationStatus{}, nil
	case s == statusNotRequested:
		return NotRequested(), nil
	case s == statusNotConfigured:
		return NotConfigured(), nil
	case s == statusNoAmount:
		return NoAmountToReport(), nil
	case strings.HasPrefix(s, sentPrefix):
		return SentTo(strings.TrimPrefix(s, sentPrefix)), nil
	case strings.HasPrefix(s, failedPrefix):
		return Failed(strings.TrimPrefix(s, failedPrefix)), nil
	default:
		return NotificationStatus{}, fmt.Errorf("unknown notification status %q", s)
	}
}

func (s NotificationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *NotificationStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParseNotificationStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
