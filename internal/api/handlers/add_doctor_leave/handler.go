package add_doctor_leave

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors/models"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgMissingUserID      = "Missing user ID"
	msgDoctorNotFound     = "Doctor not found"
	msgForbidden          = "Only staff can manage doctor leaves"
)

type Handler struct {
	service DoctorService
	logger  Logger
}

func NewHandler(service DoctorService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/doctors/{doctorId}/leaves
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /doctors/{id}/leaves - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.AddLeaveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /doctors/{id}/leaves - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.Actor = actor

	result, err := h.service.AddLeave(r.Context(), doctorID, &req)
	if err != nil {
		if handlers.RespondIfValidation(w, err) {
			h.logger.Warn("POST /doctors/{id}/leaves - Validation failed: %v", err)
			return
		}

		switch {
		case errors.Is(err, doctors.ErrAccessDenied):
			h.logger.Warn("POST /doctors/{id}/leaves - Access denied: user_id=%s", actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, doctors.ErrDoctorNotFound):
			handlers.RespondNotFound(w, msgDoctorNotFound)

		default:
			h.logger.Error("POST /doctors/{id}/leaves - Failed to add leave: doctor_id=%s, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /doctors/{id}/leaves - Leave added: doctor_id=%s, total=%d", doctorID, len(result.Leaves))
	handlers.RespondJSON(w, http.StatusCreated, result)
}
