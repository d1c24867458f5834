package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

const (
	msgDoctorNotFound = "Doctor not found"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/available-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]

	req := &getAvailableSlots.Request{
		DoctorID: doctorID,
		Date:     r.URL.Query().Get("date"),
	}

	resp, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		if handlers.RespondIfValidation(w, err) {
			h.logger.Warn("GET /doctors/{id}/available-slots - Validation failed: %v", err)
			return
		}

		switch {
		case errors.Is(err, getAvailableSlots.ErrDoctorNotFound):
			h.logger.Warn("GET /doctors/{id}/available-slots - Doctor not found: doctor_id=%s", doctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		default:
			h.logger.Error("GET /doctors/{id}/available-slots - Failed to get slots: doctor_id=%s, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /doctors/{id}/available-slots - Slots retrieved: doctor_id=%s, date=%s, count=%d",
		doctorID, req.Date, len(resp.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
