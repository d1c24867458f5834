package check_doctor_availability

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	checkAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_doctor_availability"
)

const (
	msgInvalidRequestBody = "Invalid request body"
	msgDoctorNotFound     = "Doctor not found"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/doctors/{doctorId}/availability-check
// Недоступность врача не ошибка: ответ 200 с available=false
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]

	var req AvailabilityCheckRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /doctors/{id}/availability-check - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(doctorID))
	if err != nil {
		if handlers.RespondIfValidation(w, err) {
			h.logger.Warn("POST /doctors/{id}/availability-check - Validation failed: %v", err)
			return
		}

		switch {
		case errors.Is(err, checkAvailability.ErrDoctorNotFound):
			h.logger.Warn("POST /doctors/{id}/availability-check - Doctor not found: doctor_id=%s", doctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		default:
			h.logger.Error("POST /doctors/{id}/availability-check - Failed to check: doctor_id=%s, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /doctors/{id}/availability-check - Checked: doctor_id=%s, available=%t", doctorID, resp.Available)
	handlers.RespondJSON(w, http.StatusOK, &AvailabilityCheckResponse{
		Available: resp.Available,
		Message:   resp.Message,
	})
}
