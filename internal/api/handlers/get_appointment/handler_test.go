package get_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
)

type stubService struct {
	actor domain.Actor
	err   error
}

func (s *stubService) GetByID(_ context.Context, id string, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.actor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: id, Status: string(domain.StatusBooked)}, nil
}

func serve(svc AppointmentService, headers map[string]string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.Use(middleware.Auth)
	router.HandleFunc("/appointments/{appointmentId}", NewHandler(svc, &testutil.Logger{}).Handle)

	r := httptest.NewRequest(http.MethodGet, "/appointments/a1", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle(t *testing.T) {
	svc := &stubService{}

	w := serve(svc, map[string]string{middleware.HeaderUserID: "p1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"a1"`)
	assert.Equal(t, domain.Actor{UserID: "p1", UserType: domain.UserTypePatient}, svc.actor)
}

func TestHandle_Errors(t *testing.T) {
	patient := map[string]string{middleware.HeaderUserID: "p1"}

	assert.Equal(t, http.StatusUnauthorized, serve(&stubService{}, nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(&stubService{err: appointments.ErrAppointmentNotFound}, patient).Code)
	assert.Equal(t, http.StatusForbidden, serve(&stubService{err: appointments.ErrAccessDenied}, patient).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&stubService{err: appointments.ErrInternal}, patient).Code)
}
