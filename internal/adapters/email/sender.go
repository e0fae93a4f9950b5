// Package email delivers account mail through an external provider.
package email

import (
	"context"
	"time"
)

// SendRequest is one outgoing mail. From falls back to the sender's default.
type SendRequest struct {
	To      []string
	From    string
	Subject string
	HTML    string
	Text    string // plain-text alternative; empty lets the provider derive one
	ReplyTo string
	Kind    string // tags the mail at the provider, e.g. "welcome"
}

// SendResult identifies an accepted mail at the provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender hands mail to a provider. Implementations log every call.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
