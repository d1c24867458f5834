package confirm_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
)

type stubService struct {
	err error
}

func (s *stubService) Confirm(_ context.Context, id string, _ domain.Actor) (*models.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: id, Status: string(domain.StatusConfirmed)}, nil
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "confirmed", code: http.StatusOK},
		{name: "not found", err: appointments.ErrAppointmentNotFound, code: http.StatusNotFound},
		{name: "patient", err: appointments.ErrAccessDenied, code: http.StatusForbidden},
		{name: "already cancelled", err: appointments.ErrInvalidState, code: http.StatusUnprocessableEntity},
		{name: "storage down", err: appointments.ErrInternal, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := mux.NewRouter()
			router.Use(middleware.Auth)
			router.HandleFunc("/appointments/{appointmentId}/confirm", NewHandler(&stubService{err: tt.err}, &testutil.Logger{}).Handle)

			r := httptest.NewRequest(http.MethodPatch, "/appointments/a1/confirm", nil)
			r.Header.Set(middleware.HeaderUserID, "s1")
			r.Header.Set(middleware.HeaderUserType, "STAFF")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			assert.Equal(t, tt.code, w.Code)
		})
	}
}
