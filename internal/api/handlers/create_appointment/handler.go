package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgMissingUserID      = "Missing user ID"
	msgSlotConflict       = "This time slot is already booked. Please choose a different time."
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor))
	if err != nil {
		if handlers.RespondIfValidation(w, err) {
			h.logger.Warn("POST /appointments - Validation failed: user_id=%s, error=%v", actor.UserID, err)
			return
		}

		switch {
		case errors.Is(err, createAppointment.ErrSlotConflict):
			h.logger.Warn("POST /appointments - Slot conflict: user_id=%s, hospital=%s, department=%s, date=%s",
				actor.UserID, req.Hospital, req.Department, req.Date)
			handlers.RespondConflict(w, msgSlotConflict)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: request_id=%s, user_id=%s, error=%v", middleware.GetRequestID(r.Context()), actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: id=%s, number=%s, user_id=%s",
		result.ID, result.AppointmentNumber, actor.UserID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainAppointment(result))
}
