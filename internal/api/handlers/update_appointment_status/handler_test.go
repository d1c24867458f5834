package update_appointment_status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
)

type stubService struct {
	got *models.UpdateStatusRequest
	err error
}

func (s *stubService) UpdateStatus(_ context.Context, id string, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: id, Status: req.Status}, nil
}

func serve(svc AppointmentService, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/appointments/{appointmentId}/status", NewHandler(svc, &testutil.Logger{}).Handle)

	r := httptest.NewRequest(http.MethodPatch, "/appointments/a1/status", strings.NewReader(body))
	r.Header.Set(middleware.HeaderUserID, "s1")
	r.Header.Set(middleware.HeaderUserType, "STAFF")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle(t *testing.T) {
	svc := &stubService{}
	w := serve(svc, `{"status":"CHECKED_IN"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.got.Actor.UserID)

	tests := []struct {
		err  error
		code int
	}{
		{err: appointments.ErrAppointmentNotFound, code: http.StatusNotFound},
		{err: appointments.ErrAccessDenied, code: http.StatusForbidden},
		{err: appointments.ErrInvalidInput, code: http.StatusBadRequest},
		{err: appointments.ErrInvalidState, code: http.StatusUnprocessableEntity},
		{err: appointments.ErrInternal, code: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, serve(&stubService{err: tt.err}, `{"status":"X"}`).Code, tt.err.Error())
	}

	assert.Equal(t, http.StatusBadRequest, serve(svc, `{"status":`).Code)
}
