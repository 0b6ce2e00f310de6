package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"drivon-backend/internal/config"
	"drivon-backend/internal/logging"
	"drivon-backend/internal/models"
	"drivon-backend/internal/notify"
	"drivon-backend/internal/request"
)

// MaxBodyBytes bounds the submit-request payload at the transport layer.
const MaxBodyBytes = 20_000

// Notifier fans a message out to the configured admin chats.
type Notifier interface {
	Deliver(ctx context.Context, text string) notify.Report
}

// ServicesSource yields the current services listing.
type ServicesSource interface {
	Get(ctx context.Context) ([]models.Service, error)
}

type Handler struct {
	cfg      config.Config
	logger   *logging.Logger
	notifier Notifier
	services ServicesSource
	now      func() time.Time
}

func NewHandler(cfg config.Config, logger *logging.Logger, notifier Notifier, services ServicesSource) *Handler {
	return &Handler{
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
		services: services,
		now:      time.Now,
	}
}

// SubmitRequest validates a form submission and fans it out to the admin
// chats. The configuration check runs before the body is touched.
func (h *Handler) SubmitRequest(c *gin.Context) {
	if h.cfg.Telegram.BotToken == "" || len(h.cfg.Telegram.AdminIDs) == 0 || h.notifier == nil {
		h.logger.Errorf("Submit rejected: BOT_TOKEN or ADMIN_IDS not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "server_not_configured"})
		return
	}

	length := c.Request.ContentLength
	if length <= 0 || length > MaxBodyBytes {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_body_size"})
		return
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBodyBytes+1))
	if err != nil || len(raw) == 0 || len(raw) > MaxBodyBytes {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_body_size"})
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		code := "invalid_json"
		if errors.As(err, &typeErr) {
			// Valid JSON, wrong top-level type.
			code = "invalid_payload"
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": code})
		return
	}
	if payload == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid_payload"})
		return
	}

	req, err := request.Sanitize(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	text := request.AdminMessage(req, c.ClientIP(), h.now())
	report := h.notifier.Deliver(c.Request.Context(), text)
	if !report.Ok() {
		h.logger.Errorf("Telegram delivery failed for every admin: %v", report.Details())
		c.JSON(http.StatusBadGateway, gin.H{
			"ok":      false,
			"error":   "telegram_send_failed",
			"details": report.Details(),
		})
		return
	}

	h.logger.Infof("Request from %q delivered to %d admin(s)", req.Name, report.Delivered)
	c.JSON(http.StatusOK, gin.H{"ok": true, "delivered": report.Delivered})
}

// ListServices serves the cached services listing.
func (h *Handler) ListServices(c *gin.Context) {
	if h.cfg.DB.URL == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "database_not_configured"})
		return
	}
	if h.services == nil {
		// DSN present but the pool never came up in this deployment.
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "database_unavailable"})
		return
	}

	services, err := h.services.Get(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Services fetch failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "services_query_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "services": services, "count": len(services)})
}
