package notify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tradeshot/internal/api"
	"tradeshot/internal/interfaces"
)

const DefaultSendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// SendGrid delivers mail through the SendGrid v3 mail/send endpoint.
type SendGrid struct {
	client   *api.Client
	endpoint string
	apiKey   string
	from     string
	to       string
	retry    *api.RetryConfig
}

var _ interfaces.Sender = (*SendGrid)(nil)

type SendGridParams struct {
	Endpoint string
	APIKey   string
	From     string
	To       string
	Timeout  time.Duration
}

func NewSendGrid(p SendGridParams) *SendGrid {
	if p.Endpoint == "" {
		p.Endpoint = DefaultSendGridEndpoint
	}
	if p.Timeout <= 0 {
		p.Timeout = 15 * time.Second
	}
	return &SendGrid{
		client: api.NewClient(
			api.WithTimeout(p.Timeout),
			api.WithHeader("Authorization", "Bearer "+p.APIKey),
			api.WithLogging(true),
		),
		endpoint: p.Endpoint,
		apiKey:   p.APIKey,
		from:     p.From,
		to:       p.To,
		// mail/send is not idempotent: a timed out POST may already be queued.
		retry: &api.RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Retryable:   api.NotDelivered,
		},
	}
}

func (s *SendGrid) Recipient() string { return s.to }

type sgAddress struct {
	Email string `json:"email"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPersonalization struct {
	To      []sgAddress `json:"to"`
	Subject string      `json:"subject"`
}

type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// Send posts msg and returns the HTTP status. SendGrid answers 202 on accept.
func (s *SendGrid) Send(ctx context.Context, msg interfaces.Message) (int, error) {
	if s.apiKey == "" || s.from == "" {
		return 0, errors.New("sendgrid is not configured")
	}
	to := msg.To
	if to == "" {
		to = s.to
	}

	body := sgMail{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: to}}, Subject: msg.Subject}},
		From:             sgAddress{Email: s.from},
		Subject:          msg.Subject,
		Content: []sgContent{
			{Type: "text/plain", Value: msg.Text},
			{Type: "text/html", Value: msg.HTML},
		},
	}

	req := api.NewRequest(http.MethodPost, s.endpoint).WithContext(ctx).WithBody(body)
	resp, err := s.client.DoWithRetry(req, s.retry)
	if err != nil {
		return api.StatusCode(err), err
	}
	return resp.StatusCode, nil
}
