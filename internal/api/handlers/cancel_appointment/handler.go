package cancel_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	cancelAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_appointment"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgMissingUserID      = "Missing user ID"
	msgNotFound           = "Appointment not found"
	msgForbidden          = "Access denied"
	msgCannotCancel       = "Appointment cannot be cancelled in its current status"
	msgTooLate            = "Appointments can only be cancelled more than 24 hours in advance"
)

type Handler struct {
	useCase CancelAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CancelAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointmentId"]

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/{id}/cancel - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CancelAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &cancelAppointment.Request{
		AppointmentID: appointmentID,
		Reason:        req.Reason,
		Actor:         actor,
	})
	if err != nil {
		if handlers.RespondIfValidation(w, err) {
			h.logger.Warn("PATCH /appointments/{id}/cancel - Validation failed: id=%s, error=%v", appointmentID, err)
			return
		}

		switch {
		case errors.Is(err, cancelAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Not found: id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancelAppointment.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Access denied: id=%s, user_id=%s", appointmentID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, cancelAppointment.ErrCancellationWindowClosed):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Too late to cancel: id=%s, user_id=%s", appointmentID, actor.UserID)
			handlers.RespondForbidden(w, msgTooLate)

		case errors.Is(err, cancelAppointment.ErrInvalidState):
			h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid state: id=%s, error=%v", appointmentID, err)
			handlers.RespondUnprocessable(w, msgCannotCancel)

		default:
			h.logger.Error("PATCH /appointments/{id}/cancel - Failed to cancel: request_id=%s, id=%s, error=%v", middleware.GetRequestID(r.Context()), appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/cancel - Appointment cancelled: id=%s, user_id=%s", appointmentID, actor.UserID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(result))
}
