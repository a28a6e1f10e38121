package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rosemary-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturedLogger returns a logger whose JSON entries land in the returned buffer.
func capturedLogger() (zerolog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return zerolog.New(buf), buf
}

// logEntries decodes every JSON line written to buf.
func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCORS_StoreRoutes(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		wantStatus  int
		wantReached bool
	}{
		{"cart preflight", http.MethodOptions, "/api/cart/items", http.StatusNoContent, false},
		{"catalog admin preflight", http.MethodOptions, "/api/products/7", http.StatusNoContent, false},
		{"add to cart", http.MethodPost, "/api/cart/items", http.StatusCreated, true},
		{"remove product", http.MethodDelete, "/api/products/7", http.StatusCreated, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusCreated)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantReached, reached)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

			methods := w.Header().Get("Access-Control-Allow-Methods")
			for _, m := range []string{http.MethodPut, http.MethodDelete} {
				assert.Contains(t, methods, m)
			}
			allowed := w.Header().Get("Access-Control-Allow-Headers")
			for _, h := range []string{"X-API-Key", ActorTypeHeader, ActorIDHeader, RequestIDHeader} {
				assert.Contains(t, allowed, h)
			}
		})
	}
}

func TestAPIKeyAuth_RejectsWithCorrelatedError(t *testing.T) {
	const key = "store-key-0123456789"

	tests := []struct {
		name        string
		path        string
		key         string
		wantStatus  int
		wantMessage string
		wantLogged  string
	}{
		{
			name:       "checkout with valid key",
			path:       "/api/checkout",
			key:        key,
			wantStatus: http.StatusOK,
		},
		{
			name:        "wrong key is truncated in the log",
			path:        "/api/orders/3/accept",
			key:         "guessed-key-abcdef",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "invalid API key",
			wantLogged:  "guessed-",
		},
		{
			name:        "missing key",
			path:        "/api/reports/daily-sales",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "missing API key",
		},
		{
			name:       "health stays open",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := capturedLogger()
			handler := RequestID(APIKeyAuth(key, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.Header.Set(RequestIDHeader, "till-42")
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusUnauthorized {
				assert.Empty(t, buf.String())
				return
			}

			resp := decodeError(t, w)
			assert.Equal(t, model.ErrCodeUnauthorised, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, "till-42", resp.CorrelationID)

			entries := logEntries(t, buf)
			require.Len(t, entries, 1)
			assert.Equal(t, "warn", entries[0]["level"])
			assert.Equal(t, tt.path, entries[0]["path"])
			if tt.wantLogged != "" {
				assert.Equal(t, tt.wantLogged, entries[0]["provided_key"])
				assert.NotContains(t, buf.String(), tt.key)
			}
		})
	}
}

func TestLogging_RecordsRequestOutcome(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		status    int
		writeBody bool
		wantLevel string
	}{
		{"cart totals", http.MethodGet, "/api/cart", http.StatusOK, true, "info"},
		{"implicit ok", http.MethodGet, "/api/products", 0, true, "info"},
		{"out of stock", http.MethodPost, "/api/checkout", http.StatusConflict, false, "info"},
		{"lock timeout", http.MethodPost, "/api/checkout", http.StatusServiceUnavailable, false, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := capturedLogger()
			handler := RequestID(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.writeBody {
					_, _ = w.Write([]byte("{}"))
				}
			})))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set(RequestIDHeader, "basket-7")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			wantStatus := tt.status
			if wantStatus == 0 {
				wantStatus = http.StatusOK
			}
			assert.Equal(t, wantStatus, w.Code)

			entries := logEntries(t, buf)
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, "http request", entry["message"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.method, entry["method"])
			assert.Equal(t, tt.path, entry["path"])
			assert.Equal(t, "basket-7", entry["request_id"])
			assert.EqualValues(t, wantStatus, entry["status"])
			assert.Contains(t, entry, "duration")
		})
	}
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"string panic", "cart store unavailable"},
		{"error panic", assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := capturedLogger()
			handler := RequestID(Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			})))

			req := httptest.NewRequest(http.MethodPost, "/api/orders/9/reject", nil)
			req.Header.Set(RequestIDHeader, "order-9")
			w := httptest.NewRecorder()
			require.NotPanics(t, func() { handler.ServeHTTP(w, req) })

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, model.ErrCodeInternalError, resp.Error)
			assert.Equal(t, "order-9", resp.CorrelationID)

			entries := logEntries(t, buf)
			require.Len(t, entries, 1)
			assert.Equal(t, "panic recovered", entries[0]["message"])
			assert.Equal(t, "/api/orders/9/reject", entries[0]["path"])
			assert.Equal(t, "order-9", entries[0]["request_id"])
		})
	}
}

func TestRecovery_PassesThroughHealthyHandlers(t *testing.T) {
	logger, buf := capturedLogger()
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cart/items/3", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, buf.String())
}

func TestMiddlewareChain_PanicIsLoggedAsServerError(t *testing.T) {
	logger, buf := capturedLogger()
	handler := RequestID(Logging(logger)(Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("stock row vanished")
	}))))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/checkout", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)

	entries := logEntries(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "panic recovered", entries[0]["message"])
	assert.Equal(t, "http request", entries[1]["message"])
	assert.Equal(t, "error", entries[1]["level"])
	assert.EqualValues(t, http.StatusInternalServerError, entries[1]["status"])
	for _, entry := range entries {
		assert.Equal(t, id, entry["request_id"])
	}
}
