package get_doctor_leaves

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors"
)

const msgDoctorNotFound = "Doctor not found"

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

// Handle GET /api/v1/doctors/{doctorId}/leaves
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]

	result, err := h.service.GetLeaves(r.Context(), doctorID)
	if err != nil {
		if handlers.RespondIfValidation(w, err) {
			return
		}
		if errors.Is(err, doctors.ErrDoctorNotFound) {
			handlers.RespondNotFound(w, msgDoctorNotFound)
			return
		}
		h.logger.Error("GET /doctors/{id}/leaves - Failed to get leaves: doctor_id=%s, error=%v", doctorID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
