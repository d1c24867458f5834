package get_my_appointments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgMissingUserID   = "Missing user ID"
	msgInvalidUpcoming = "Invalid upcoming flag, expected true or false"
	msgInvalidStatus   = "Invalid status"
	msgForbidden       = "Only patients have personal appointments"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/me
// Query params: status (optional), upcoming (optional, bool)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /appointments/me - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	req := &models.ListMyAppointmentsRequest{
		Actor:  actor,
		Status: handlers.QueryString(r, "status"),
	}

	if raw := handlers.QueryString(r, "upcoming"); raw != nil {
		upcoming, err := strconv.ParseBool(*raw)
		if err != nil {
			h.logger.Warn("GET /appointments/me - Invalid upcoming flag: %v", err)
			handlers.RespondBadRequest(w, msgInvalidUpcoming)
			return
		}
		req.Upcoming = upcoming
	}

	result, err := h.service.ListMine(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /appointments/me - Invalid status: user_id=%s", actor.UserID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, appointments.ErrAccessDenied):
			h.logger.Warn("GET /appointments/me - Not a patient: user_id=%s", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /appointments/me - Failed to list appointments: user_id=%s, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments/me - Appointments retrieved: user_id=%s, count=%d", actor.UserID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
