package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"

	"drivon-backend/internal/logging"
)

const sendTimeout = 12 * time.Second

// Closed set of per-recipient delivery failure codes. HTTP-status failures
// use the form "http_<code>".
const (
	CodeUnreachable       = "telegram_unreachable"
	CodeRemoteRejected    = "remote_rejected"
	CodeMalformedResponse = "malformed_response"
	CodeRequestFailed     = "telegram_request_failed"
)

// SendError is a classified failure of one Telegram delivery attempt.
type SendError struct {
	Code string
	Err  error
}

func (e *SendError) Error() string { return fmt.Sprintf("%s: %v", e.Code, e.Err) }

func (e *SendError) Unwrap() error { return e.Err }

// TelegramSender delivers admin messages through the Bot API, one bounded
// call per recipient, rate limited process-wide.
type TelegramSender struct {
	bot      *bot.Bot
	threadID int
	limiter  *rate.Limiter
	logger   *logging.Logger
}

// Option customizes the underlying bot client.
type Option func(*senderOptions)

type senderOptions struct {
	serverURL string
	client    *http.Client
}

// WithServerURL overrides the Bot API base URL.
func WithServerURL(serverURL string) Option {
	return func(o *senderOptions) { o.serverURL = serverURL }
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *senderOptions) { o.client = client }
}

func NewTelegramSender(token string, threadID, ratePerSecond int, logger *logging.Logger, opts ...Option) (*TelegramSender, error) {
	o := senderOptions{client: &http.Client{Timeout: sendTimeout}}
	for _, opt := range opts {
		opt(&o)
	}

	botOpts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(sendTimeout, o.client),
	}
	if o.serverURL != "" {
		botOpts = append(botOpts, bot.WithServerURL(o.serverURL))
	}

	b, err := bot.New(token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	return &TelegramSender{
		bot:      b,
		threadID: threadID,
		limiter:  rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
		logger:   logger,
	}, nil
}

// Send delivers one message to one chat. Failures come back as a *SendError
// carrying a code from the closed set above.
func (s *TelegramSender) Send(ctx context.Context, chatID, text string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &SendError{Code: CodeRequestFailed, Err: fmt.Errorf("telegram rate limit wait: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:             chatID,
		Text:               text,
		LinkPreviewOptions: &tgmodels.LinkPreviewOptions{IsDisabled: bot.True()},
	}
	if s.threadID != 0 {
		params.MessageThreadID = s.threadID
	}

	if _, err := s.bot.SendMessage(ctx, params); err != nil {
		s.logger.Errorf("Telegram send to chat %s failed: %v", chatID, err)
		return &SendError{Code: classify(err), Err: err}
	}
	return nil
}

// classify maps a go-telegram/bot error onto one delivery failure code.
func classify(err error) string {
	var netErr *url.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var tooMany *bot.TooManyRequestsError

	switch {
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return CodeUnreachable
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return CodeMalformedResponse
	case errors.Is(err, bot.ErrorUnauthorized):
		return "http_401"
	case errors.Is(err, bot.ErrorForbidden):
		return "http_403"
	case errors.Is(err, bot.ErrorNotFound):
		return "http_404"
	case errors.Is(err, bot.ErrorConflict):
		return "http_409"
	case errors.As(err, &tooMany), errors.Is(err, bot.ErrorTooManyRequests):
		return "http_429"
	case errors.Is(err, bot.ErrorBadRequest):
		return CodeRemoteRejected
	default:
		return CodeRequestFailed
	}
}
