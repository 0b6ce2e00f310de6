package notify

import (
	"context"
	"errors"

	"drivon-backend/internal/logging"
	"drivon-backend/internal/providers"
)

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}

// Failure records one recipient that could not be reached.
type Failure struct {
	Recipient string
	Code      string
}

func (f Failure) String() string { return f.Recipient + ":" + f.Code }

// Report aggregates the outcome of one fan-out.
type Report struct {
	Delivered int
	Failures  []Failure
}

// Ok reports whether at least one recipient received the message.
func (r Report) Ok() bool { return r.Delivered > 0 }

// Details renders the failure list as "<recipient>:<code>" strings, in
// attempt order.
func (r Report) Details() []string {
	details := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		details = append(details, f.String())
	}
	return details
}

// Service fans one message out to every configured admin chat. Each
// recipient gets a single independent attempt; a partial failure never stops
// the remaining deliveries.
type Service struct {
	sender     Sender
	recipients []string
	logger     *logging.Logger
}

func New(sender Sender, recipients []string, logger *logging.Logger) *Service {
	return &Service{sender: sender, recipients: recipients, logger: logger}
}

// Deliver sends text to all recipients in configured order and reports every
// outcome. No retries.
func (s *Service) Deliver(ctx context.Context, text string) Report {
	var report Report
	for _, recipient := range s.recipients {
		err := s.sender.Send(ctx, recipient, text)
		if err == nil {
			report.Delivered++
			continue
		}
		code := providers.CodeRequestFailed
		var sendErr *providers.SendError
		if errors.As(err, &sendErr) {
			code = sendErr.Code
		}
		report.Failures = append(report.Failures, Failure{Recipient: recipient, Code: code})
	}
	s.logger.Infof("Fan-out finished: delivered=%d failed=%d", report.Delivered, len(report.Failures))
	return report
}
