package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
)

func ok(context.Context) error { return nil }

func TestLive(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(nil, time.Second, &testutil.Logger{}).Live(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		code   int
		body   string
	}{
		{
			name:   "all up",
			checks: map[string]Check{"postgres": ok, "redis": ok},
			code:   http.StatusOK,
			body:   `{"status":"ok","checks":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name: "mongo down",
			checks: map[string]Check{
				"postgres": ok,
				"mongo":    func(context.Context) error { return errors.New("connection refused") },
			},
			code: http.StatusServiceUnavailable,
			body: `{"status":"unavailable","checks":{"postgres":"ok","mongo":"unavailable"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHandler(tt.checks, time.Second, &testutil.Logger{}).Ready(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
