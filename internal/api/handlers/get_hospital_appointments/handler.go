package get_hospital_appointments

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
)

const (
	msgMissingUserID = "Missing user ID"
	msgInvalidFilter = "Invalid filter, dates are expected as YYYY-MM-DD"
	msgForbidden     = "Only staff can list hospital appointments"
)

type Handler struct {
	service  AppointmentService
	location *time.Location
	logger   Logger
}

func NewHandler(service AppointmentService, location *time.Location, logger Logger) *Handler {
	return &Handler{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/hospitals/{hospitalId}/appointments
// Query params: department, doctor, status, date | from+to (YYYY-MM-DD), includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	hospitalID := mux.Vars(r)["hospitalId"]

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /hospitals/{id}/appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req, err := ToServiceRequest(r, actor, hospitalID, h.location)
	if err != nil {
		h.logger.Warn("GET /hospitals/{id}/appointments - Invalid filter: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	result, err := h.service.ListHospital(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /hospitals/{id}/appointments - Access denied: hospital_id=%s, user_id=%s", hospitalID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /hospitals/{id}/appointments - Invalid filter: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilter)

		default:
			h.logger.Error("GET /hospitals/{id}/appointments - Failed to list: hospital_id=%s, error=%v", hospitalID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /hospitals/{id}/appointments - Appointments retrieved: hospital_id=%s, count=%d", hospitalID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
