package email

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the most mails one batch call may carry.
const resendBatchLimit = 100

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	client      *resend.Client
	defaultFrom string
}

// NewResendSender builds a sender for apiKey. from is used when a request leaves From empty.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), defaultFrom: from}
}

// Send hands one mail to Resend.
// PRE: req has a recipient and a subject
// POST: returns the provider message id
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	resp, err := s.client.Emails.SendWithContext(ctx, s.toResend(req))
	if err != nil {
		slog.Error("email_event", "event", "send_failed", "kind", req.Kind, "recipients", len(req.To), "error", err)
		return SendResult{}, fmt.Errorf("resend: send %q: %w", req.Subject, err)
	}
	slog.Info("email_event", "event", "sent", "kind", req.Kind, "message_id", resp.Id, "recipients", len(req.To))
	return SendResult{MessageID: resp.Id, SentAt: time.Now()}, nil
}

// SendBatch splits reqs into provider batches. Results keep request order; on
// error the results of earlier batches are returned with it.
func (s *ResendSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for chunk := range slices.Chunk(reqs, resendBatchLimit) {
		batch := make([]*resend.SendEmailRequest, len(chunk))
		for i, req := range chunk {
			batch[i] = s.toResend(req)
		}
		resp, err := s.client.Batch.SendWithContext(ctx, batch)
		if err != nil {
			slog.Error("email_event", "event", "batch_failed", "size", len(chunk), "delivered", len(results), "error", err)
			return results, fmt.Errorf("resend: batch of %d: %w", len(chunk), err)
		}
		now := time.Now()
		for _, item := range resp.Data {
			results = append(results, SendResult{MessageID: item.Id, SentAt: now})
		}
		slog.Info("email_event", "event", "batch_sent", "size", len(chunk))
	}
	return results, nil
}

func (s *ResendSender) toResend(req SendRequest) *resend.SendEmailRequest {
	out := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
		Text:    req.Text,
		ReplyTo: req.ReplyTo,
	}
	if out.From == "" {
		out.From = s.defaultFrom
	}
	if req.Kind != "" {
		out.Tags = []resend.Tag{{Name: "kind", Value: req.Kind}}
	}
	return out
}
