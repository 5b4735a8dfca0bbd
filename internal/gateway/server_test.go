package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/httputil"
	"shareit/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userHeader = config.DefaultUserHeader

var gatewayNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

type upstreamCall struct {
	Method    string
	Path      string
	Query     string
	User      string
	RequestID string
	Body      string
}

// newUpstream records every forwarded call and answers with 201 and a JSON echo.
func newUpstream(t *testing.T) (*httptest.Server, *[]upstreamCall) {
	t.Helper()
	calls := &[]upstreamCall{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		call := upstreamCall{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			User:      r.Header.Get(userHeader),
			RequestID: r.Header.Get(httputil.RequestIDHeader),
			Body:      string(body),
		}
		*calls = append(*calls, call)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(call)
	}))
	t.Cleanup(ts.Close)
	return ts, calls
}

func newTestGateway(upstreamURL string, limiter ratelimit.Limiter) *Server {
	logger := zerolog.Nop()
	client := NewClient(upstreamURL, userHeader, time.Second)
	validator := NewValidator(func() time.Time { return gatewayNow })
	return NewServer(config.GatewayConfig{Port: 0, Timeout: time.Second}, userHeader, client, limiter, validator, &logger)
}

func send(t *testing.T, h http.Handler, method, target string, user string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestGatewayForwards(t *testing.T) {
	upstream, calls := newUpstream(t)
	h := newTestGateway(upstream.URL, nil).Handler()

	rec := send(t, h, http.MethodPost, "/items", "7", `{"name":"Drill","description":"Cordless","available":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.Method)
	assert.Equal(t, "/items", call.Path)
	assert.Equal(t, "7", call.User)
	assert.NotEmpty(t, call.RequestID)
	assert.Equal(t, rec.Header().Get(httputil.RequestIDHeader), call.RequestID)
	assert.JSONEq(t, `{"name":"Drill","description":"Cordless","available":true}`, call.Body)

	rec = send(t, h, http.MethodPatch, "/bookings/3?approved=true", "7", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "approved=true", (*calls)[1].Query)

	rec = send(t, h, http.MethodGet, "/items/search?text=dri%20ll", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "text=dri%20ll", (*calls)[2].Query)
}

func TestGatewayRejectsBeforeForwarding(t *testing.T) {
	upstream, calls := newUpstream(t)
	h := newTestGateway(upstream.URL, nil).Handler()

	future := gatewayNow.Add(time.Hour).Format(time.RFC3339)
	later := gatewayNow.Add(2 * time.Hour).Format(time.RFC3339)
	past := gatewayNow.Add(-time.Hour).Format(time.RFC3339)

	tests := []struct {
		name     string
		method   string
		target   string
		user     string
		body     string
		category string
		contains string
	}{
		{"MissingHeader", http.MethodGet, "/items", "", "", "missing header", userHeader},
		{"BadHeader", http.MethodGet, "/bookings", "x", "", "validation error", userHeader},
		{"BlankUserName", http.MethodPost, "/users", "", `{"name":"  ","email":"a@b.com"}`, "validation error", "name must not be blank"},
		{"BadEmail", http.MethodPost, "/users", "", `{"name":"A","email":"nope"}`, "validation error", "email"},
		{"PatchBadEmail", http.MethodPatch, "/users/1", "", `{"email":"nope"}`, "validation error", "email"},
		{"ItemWithoutAvailable", http.MethodPost, "/items", "1", `{"name":"A","description":"B"}`, "validation error", "available is required"},
		{"BlankComment", http.MethodPost, "/items/1/comment", "1", `{"text":""}`, "validation error", "text"},
		{"BlankRequest", http.MethodPost, "/requests", "1", `{"description":" "}`, "validation error", "description"},
		{"MalformedJSON", http.MethodPost, "/requests", "1", `{"description":`, "validation error", "invalid JSON"},
		{"EmptyBody", http.MethodPost, "/users", "", "", "validation error", "body is required"},
		{"UnknownState", http.MethodGet, "/bookings/owner?state=UNSUPPORTED_STATUS", "1", "", "validation error", "UNSUPPORTED_STATUS"},
		{"BadApproved", http.MethodPatch, "/bookings/1?approved=yes", "1", "", "validation error", "approved"},
		{"BookingMissingItem", http.MethodPost, "/bookings", "1",
			fmt.Sprintf(`{"start":%q,"end":%q}`, future, later), "validation error", "itemId is required"},
		{"BookingStartInPast", http.MethodPost, "/bookings", "1",
			fmt.Sprintf(`{"itemId":1,"start":%q,"end":%q}`, past, later), "validation error", "start must not be in the past"},
		{"BookingEndBeforeStart", http.MethodPost, "/bookings", "1",
			fmt.Sprintf(`{"itemId":1,"start":%q,"end":%q}`, later, future), "validation error", "end must be after start"},
		{"BookingEqualBounds", http.MethodPost, "/bookings", "1",
			fmt.Sprintf(`{"itemId":1,"start":%q,"end":%q}`, future, future), "validation error", "end must be after start"},
		{"BookingMissingEnd", http.MethodPost, "/bookings", "1",
			fmt.Sprintf(`{"itemId":1,"start":%q}`, future), "validation error", "end is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(t, h, tt.method, tt.target, tt.user, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := errorBody(t, rec)
			assert.Equal(t, tt.category, body.Error)
			assert.Contains(t, body.Description, tt.contains)
		})
	}
	assert.Empty(t, *calls)
}

func TestGatewayValidPayloadsPass(t *testing.T) {
	upstream, calls := newUpstream(t)
	h := newTestGateway(upstream.URL, nil).Handler()

	start := gatewayNow.Add(time.Hour).Format("2006-01-02T15:04:05")
	end := gatewayNow.Add(2 * time.Hour).Format("2006-01-02T15:04:05")

	requests := []struct{ method, target, user, body string }{
		{http.MethodPost, "/users", "", `{"name":"A","email":"a@example.com"}`},
		{http.MethodPatch, "/users/1", "", `{"name":""}`},
		{http.MethodPatch, "/items/1", "1", `{"available":false}`},
		{http.MethodPost, "/bookings", "1", fmt.Sprintf(`{"itemId":1,"start":%q,"end":%q}`, start, end)},
		{http.MethodGet, "/bookings?state=future", "1", ""},
		{http.MethodGet, "/items/1", "", ""},
		{http.MethodGet, "/requests/1", "", ""},
		{http.MethodDelete, "/users/1", "", ""},
	}
	for _, r := range requests {
		rec := send(t, h, r.method, r.target, r.user, r.body)
		assert.Equal(t, http.StatusCreated, rec.Code, r.target)
	}
	assert.Len(t, *calls, len(requests))
}

func TestGatewayUpstreamStatusRelayed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusConflict, httputil.ErrorBody{Error: "conflict", Description: "dup"})
	}))
	defer upstream.Close()

	rec := send(t, newTestGateway(upstream.URL, nil).Handler(), http.MethodPost, "/users", "", `{"name":"A","email":"a@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "dup", errorBody(t, rec).Description)
}

func TestGatewayUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	rec := send(t, newTestGateway(url, nil).Handler(), http.MethodGet, "/users", "", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "bad gateway", errorBody(t, rec).Error)
}

func TestGatewayRateLimit(t *testing.T) {
	upstream, calls := newUpstream(t)
	limiter := ratelimit.NewMemoryStore(ratelimit.Budget{Requests: 2, Window: time.Hour})
	h := newTestGateway(upstream.URL, limiter).Handler()

	for i := 0; i < 2; i++ {
		rec := send(t, h, http.MethodGet, "/items", "5", "")
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := send(t, h, http.MethodGet, "/items", "5", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too many requests", errorBody(t, rec).Error)

	rec = send(t, h, http.MethodGet, "/items", "6", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = send(t, h, http.MethodGet, "/healthz", "5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, *calls, 3)
}
