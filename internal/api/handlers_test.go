package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivon-backend/internal/config"
	"drivon-backend/internal/logging"
	"drivon-backend/internal/models"
	"drivon-backend/internal/notify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubNotifier struct {
	report  notify.Report
	gotText string
}

func (s *stubNotifier) Deliver(_ context.Context, text string) notify.Report {
	s.gotText = text
	return s.report
}

type stubSource struct {
	services []models.Service
	err      error
}

func (s *stubSource) Get(context.Context) ([]models.Service, error) {
	return s.services, s.err
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.AdminIDs = []string{"100", "200"}
	cfg.DB.URL = "postgresql://localhost/drivon"
	cfg.Static.Dir = t.TempDir()
	return cfg
}

func serve(cfg config.Config, notifier Notifier, source ServicesSource, req *http.Request) *httptest.ResponseRecorder {
	logger := logging.NewNop()
	h := NewHandler(cfg, logger, notifier, source)
	router := NewRouter(cfg, logger, h)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const validBody = `{"name":"Иван","phone":"+7 (900) 123-45-67","car":"Lada","service":"Мойка","comment":"утром"}`

func TestSubmitRequestSuccess(t *testing.T) {
	notifier := &stubNotifier{report: notify.Report{Delivered: 2}}
	w := serve(testConfig(t), notifier, &stubSource{}, postRequest(validBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"delivered":2}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, notifier.gotText, "Имя: Иван")
}

func TestSubmitRequestPartialFailureStillSucceeds(t *testing.T) {
	notifier := &stubNotifier{report: notify.Report{
		Delivered: 2,
		Failures:  []notify.Failure{{Recipient: "100", Code: "telegram_unreachable"}},
	}}
	w := serve(testConfig(t), notifier, &stubSource{}, postRequest(validBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"delivered":2}`, w.Body.String())
}

func TestSubmitRequestAllRecipientsFailed(t *testing.T) {
	notifier := &stubNotifier{report: notify.Report{
		Failures: []notify.Failure{
			{Recipient: "100", Code: "telegram_unreachable"},
			{Recipient: "200", Code: "http_403"},
		},
	}}
	w := serve(testConfig(t), notifier, &stubSource{}, postRequest(validBody))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t,
		`{"ok":false,"error":"telegram_send_failed","details":["100:telegram_unreachable","200:http_403"]}`,
		w.Body.String())
}

func TestSubmitRequestNotConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telegram.BotToken = ""
	w := serve(cfg, &stubNotifier{}, &stubSource{}, postRequest(validBody))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"server_not_configured"}`, w.Body.String())
}

func TestSubmitRequestBodyGuards(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"empty body", "", "invalid_body_size"},
		{"oversized body", strings.Repeat("a", MaxBodyBytes+1), "invalid_body_size"},
		{"broken json", `{"name":`, "invalid_json"},
		{"json array", `[1,2,3]`, "invalid_payload"},
		{"json null", `null`, "invalid_payload"},
		{"json string", `"hello"`, "invalid_payload"},
		{"missing phone", `{"name":"Иван","car":"Lada","service":"Мойка"}`, "phone_required"},
		{"bad phone", `{"name":"Иван","phone":"123","car":"Lada","service":"Мойка"}`, "phone_invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(testConfig(t), &stubNotifier{report: notify.Report{Delivered: 1}}, &stubSource{}, postRequest(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"ok":false,"error":"`+tt.wantCode+`"}`, w.Body.String())
		})
	}
}

func TestListServices(t *testing.T) {
	source := &stubSource{services: []models.Service{
		{ID: 1, Name: "Диагностика", Description: "", DurationMinutes: 60, BasePrice: "2500.00"},
		{ID: 2, Name: "Мойка", Description: "кузов", DurationMinutes: 30, BasePrice: "800.00"},
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	w := serve(testConfig(t), &stubNotifier{}, source, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"ok": true,
		"count": 2,
		"services": [
			{"id":1,"name":"Диагностика","description":"","duration_minutes":60,"base_price":"2500.00"},
			{"id":2,"name":"Мойка","description":"кузов","duration_minutes":30,"base_price":"800.00"}
		]
	}`, w.Body.String())
}

func TestListServicesErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DB.URL = ""
		req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
		w := serve(cfg, &stubNotifier{}, &stubSource{}, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"ok":false,"error":"database_not_configured"}`, w.Body.String())
	})

	t.Run("store unavailable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
		w := serve(testConfig(t), &stubNotifier{}, nil, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"ok":false,"error":"database_unavailable"}`, w.Body.String())
	})

	t.Run("query failed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
		w := serve(testConfig(t), &stubNotifier{}, &stubSource{err: errors.New("timeout")}, req)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.JSONEq(t, `{"ok":false,"error":"services_query_failed"}`, w.Body.String())
	})
}

func TestOptionsRoutes(t *testing.T) {
	tests := []struct {
		path      string
		wantAllow string
	}{
		{"/api/request", "POST, OPTIONS"},
		{"/api/services", "GET, OPTIONS"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, tt.path, nil)
		w := serve(testConfig(t), &stubNotifier{}, &stubSource{}, req)
		assert.Equal(t, http.StatusNoContent, w.Code, tt.path)
		assert.Equal(t, tt.wantAllow, w.Header().Get("Allow"), tt.path)
	}
}

func TestUnknownAPIRouteIs404JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := serve(testConfig(t), &stubNotifier{}, &stubSource{}, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"not_found"}`, w.Body.String())
}

func TestStaticFileServing(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Static.Dir, "index.html"), []byte("<h1>DRIVON</h1>"), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := serve(cfg, &stubNotifier{}, &stubSource{}, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "DRIVON")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestNonGetOutsideAPIIs404(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/index.html", strings.NewReader("x"))
	w := serve(testConfig(t), &stubNotifier{}, &stubSource{}, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
