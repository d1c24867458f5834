package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgMissingUserID      = "Missing user ID"
	msgNotFound           = "Appointment not found"
	msgForbidden          = "Access denied"
	msgCannotReschedule   = "Appointment cannot be rescheduled in its current status"
	msgSlotConflict       = "New time slot is not available"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointmentId"]

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &rescheduleAppointment.Request{
		AppointmentID: appointmentID,
		NewDate:       req.NewDate,
		Actor:         actor,
	})
	if err != nil {
		if handlers.RespondIfValidation(w, err) {
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Validation failed: id=%s, error=%v", appointmentID, err)
			return
		}

		switch {
		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Not found: id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleAppointment.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Access denied: id=%s, user_id=%s", appointmentID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleAppointment.ErrInvalidState):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid state: id=%s, error=%v", appointmentID, err)
			handlers.RespondUnprocessable(w, msgCannotReschedule)

		case errors.Is(err, rescheduleAppointment.ErrSlotConflict):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot conflict: id=%s, new_date=%s", appointmentID, req.NewDate)
			handlers.RespondConflict(w, msgSlotConflict)

		default:
			h.logger.Error("PATCH /appointments/{id}/reschedule - Failed to reschedule: request_id=%s, id=%s, error=%v", middleware.GetRequestID(r.Context()), appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/reschedule - Appointment rescheduled: id=%s, new_date=%s", appointmentID, req.NewDate)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(result))
}
