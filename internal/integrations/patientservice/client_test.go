package patientservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestClient_GetPatient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/patients/p1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"p1","fullName":"Nimal Silva"}`))
		case "/internal/patients/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nopLogger{})

	patient, err := client.GetPatient(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Nimal Silva", patient.FullName)

	_, err = client.GetPatientWithGracefulDegradation(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPatientNotFound)

	_, err = client.GetPatientWithGracefulDegradation(context.Background(), "broken")
	assert.ErrorIs(t, err, ErrServiceDegraded)
}

func TestClient_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, nopLogger{})

	_, err := client.GetPatientWithGracefulDegradation(context.Background(), "p1")

	assert.ErrorIs(t, err, ErrServiceDegraded)
}
