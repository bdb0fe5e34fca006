package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanqian/roofbook/internal/domain/auth"
	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/lead"
	"github.com/yanqian/roofbook/internal/domain/payment"
	"github.com/yanqian/roofbook/internal/domain/schedule"
	"github.com/yanqian/roofbook/internal/infra/appointmentrepo"
	"github.com/yanqian/roofbook/internal/infra/config"
	"github.com/yanqian/roofbook/internal/infra/holdstore"
	"github.com/yanqian/roofbook/internal/infra/leadrepo"
	"github.com/yanqian/roofbook/internal/infra/paymentrepo"
	"github.com/yanqian/roofbook/internal/infra/receipts"
	"github.com/yanqian/roofbook/internal/infra/staffrepo"
	"github.com/yanqian/roofbook/pkg/util"
)

// 2026-10-15 is a Thursday; 2026-10-19 is a Monday; 2026-10-17 is a Saturday.
var testNow = time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []booking.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg booking.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return nil
}

type testServer struct {
	server   *http.Server
	notifier *recordingNotifier
	staff    auth.Repository
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) testServer {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	for _, fn := range mutate {
		fn(cfg)
	}
	logger := newTestLogger()
	resolver := schedule.NewResolver(schedule.DefaultWeeklyHours(), schedule.Config{
		Location: time.UTC,
		Now:      util.FixedClock(testNow),
	})
	leads := leadrepo.NewMemoryRepository()
	notifier := &recordingNotifier{}
	appts := appointmentrepo.NewMemoryRepository()
	bookingSvc := booking.NewService(
		booking.Config{DurationMinutes: 60, UnitRate: 4.5, MaxSpecialRequests: 1000, HoldTTL: 5 * time.Minute},
		resolver, appts, notifier, lead.NewBookingLeads(leads),
		holdstore.NewMemoryStore(), receipts.NewMemoryStore(), logger,
	)
	staff := staffrepo.NewMemoryRepository()
	hash, err := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = staff.Add(context.Background(), "office@roofbook.test", "Office", string(hash))
	require.NoError(t, err)

	handler := NewHandler(
		bookingSvc,
		booking.NewOperations(appts, notifier, logger),
		lead.NewService(leads, logger),
		payment.NewService(nil, paymentrepo.NewMemoryRepository(), leads, logger),
		auth.NewService(auth.Config{Secret: "test-secret", TokenTTL: time.Hour, RefreshTokenTTL: 24 * time.Hour}, staff, logger),
		logger,
	)
	return testServer{server: NewRouter(cfg, handler), notifier: notifier, staff: staff}
}

func TestRouter_AvailabilityEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/availability/days/2026-10-19", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var day schedule.DayAvailability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &day))
	require.True(t, day.IsBookable)
	require.Equal(t, 20, day.CapacityRemaining)

	rec = ts.do(http.MethodGet, "/api/v1/availability/days/2026-10-17", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &day))
	require.False(t, day.IsOpen)

	rec = ts.do(http.MethodGet, "/api/v1/availability/slots/2026-10-23", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var slots struct {
		Slots []schedule.SlotAvailability `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	require.Len(t, slots.Slots, 18)
	require.Equal(t, "8:00 AM", slots.Slots[0].Time.Label())
	require.Equal(t, "4:30 PM", slots.Slots[17].Time.Label())

	rec = ts.do(http.MethodGet, "/api/v1/availability/days/10-19-2026", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_CalendarDefaultsToSelectedMonth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/availability/calendar?selected=2026-11-02", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var grid schedule.MonthGrid
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
	require.Equal(t, "2026-11", grid.Month)
	require.Equal(t, "2026-10", grid.Prev)

	rec = ts.do(http.MethodGet, "/api/v1/availability/calendar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
	require.Equal(t, "2026-10", grid.Month)

	rec = ts.do(http.MethodGet, "/api/v1/availability/calendar?month=October", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_BookingLifecycle(t *testing.T) {
	ts := newTestServer(t)
	body := `{"date":"2026-10-19","time":"9:00 AM","name":"Dana Whitfield","email":"dana@example.com",
		"phone":"555-010-2030","propertyAddress":"12 Elm St","roofAreaSqft":2000,"termsAccepted":true}`

	rec := ts.do(http.MethodPost, "/api/v1/bookings/review", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary booking.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.NotNil(t, summary.Estimate)
	require.EqualValues(t, 8100, summary.Estimate.Low)
	require.EqualValues(t, 9900, summary.Estimate.High)

	rec = ts.do(http.MethodPost, "/api/v1/bookings", body, map[string]string{"Idempotency-Key": "abc"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var confirmation booking.Confirmation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &confirmation))
	require.NotEmpty(t, confirmation.ConfirmationNumber)

	rec = ts.do(http.MethodPost, "/api/v1/bookings", body, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, booking.CodeSlotUnavailable, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = ts.do(http.MethodGet, "/api/v1/bookings/confirmations/"+confirmation.ConfirmationNumber, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var receipt booking.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	require.Equal(t, confirmation.AppointmentID, receipt.AppointmentID)

	rec = ts.do(http.MethodGet, "/api/v1/bookings/confirmations/RR-NOPE", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_BookingErrorsMapToStatus(t *testing.T) {
	ts := newTestServer(t)
	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"terms", `{"date":"2026-10-19","time":"9:00 AM","name":"A","email":"a@b.co","phone":"1","propertyAddress":"x"}`, http.StatusUnprocessableEntity, booking.CodeTermsNotAccepted},
		{"closed day", `{"date":"2026-10-17","time":"9:00 AM","name":"A","email":"a@b.co","phone":"1","propertyAddress":"x","termsAccepted":true}`, http.StatusUnprocessableEntity, booking.CodeDateUnavailable},
		{"off grid", `{"date":"2026-10-19","time":"9:15 AM","name":"A","email":"a@b.co","phone":"1","propertyAddress":"x","termsAccepted":true}`, http.StatusConflict, booking.CodeSlotUnavailable},
		{"validation", `{"date":"2026-10-19","time":"9:00 AM","name":"A","email":"nope","phone":"1","propertyAddress":"x","termsAccepted":true}`, http.StatusBadRequest, booking.CodeValidation},
		{"bad json", `{"date":19}`, http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(http.MethodPost, "/api/v1/bookings", tc.body, nil)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.code, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
		})
	}
	require.Empty(t, ts.notifier.msgs)
}

func TestRouter_HoldsAndMeasurements(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/holds", `{"date":"2026-10-19","time":"10:00 AM"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var hold booking.Hold
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hold))
	require.NotEmpty(t, hold.Token)

	rec = ts.do(http.MethodPost, "/api/v1/holds", `{"date":"2026-10-19","time":"10:00 AM"}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, booking.CodeHoldConflict, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = ts.do(http.MethodDelete, "/api/v1/holds/"+hold.Token+"?date=2026-10-19&time=10:00%20AM", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/measurements", `{"name":"Dana","email":"dana@example.com","propertyAddress":"12 Elm St","totalSqft":1800}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created lead.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = ts.do(http.MethodGet, "/api/v1/measurements/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/measurements/missing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_OpsRequiresStaffToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/ops/appointments", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/ops/appointments", "", map[string]string{"Authorization": "Bearer nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = ts.do(http.MethodPost, "/api/v1/auth/login", `{"email":"office@roofbook.test","password":"wrong"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/auth/login", `{"email":"office@roofbook.test","password":"pass1234"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	bearer := map[string]string{"Authorization": "Bearer " + login.Token}

	booked := ts.do(http.MethodPost, "/api/v1/bookings", `{"date":"2026-10-19","time":"9:00 AM","name":"Dana","email":"dana@example.com","phone":"1","propertyAddress":"12 Elm St","termsAccepted":true}`, nil)
	require.Equal(t, http.StatusCreated, booked.Code)
	var confirmation booking.Confirmation
	require.NoError(t, json.Unmarshal(booked.Body.Bytes(), &confirmation))

	rec = ts.do(http.MethodGet, "/api/v1/ops/appointments?date=2026-10-19&status=confirmed", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Appointments []booking.Appointment `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Appointments, 1)

	rec = ts.do(http.MethodPost, "/api/v1/ops/appointments/"+confirmation.AppointmentID+"/cancel", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(http.MethodPost, "/api/v1/ops/appointments/"+confirmation.AppointmentID+"/complete", "", bearer)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, booking.CodeInvalidTransition, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = ts.do(http.MethodGet, "/api/v1/ops/appointments?status=bogus", "", bearer)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/v1/ops/me", "", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_WebhookAndHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/payments/stripe/webhook", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, "/api/v1/payments/stripe/webhook", `{}`, map[string]string{"Stripe-Signature": "t=1,v1=x"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, payment.CodeNotConfigured, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = ts.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/healthz", "", nil).Code)
	rec := ts.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.HTTP.AllowedOrigins = []string{"https://roofbook.example"}
	})
	rec := ts.do(http.MethodOptions, "/api/v1/bookings", "", map[string]string{"Origin": "https://roofbook.example"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://roofbook.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}

func (ts testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.server.Handler.ServeHTTP(rec, req)
	return rec
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
