package get_available_slots

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AvailableSlotsResponse свободные слоты врача на день
type AvailableSlotsResponse struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date"`
	Slots    []Slot `json:"slots"`
}

type Slot struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// FromUseCaseResponse конвертирует ответ usecase в DTO
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	out := &AvailableSlotsResponse{
		DoctorID: resp.DoctorID,
		Date:     resp.Date.Format(domain.DateFormat),
		Slots:    make([]Slot, 0, len(resp.Slots)),
	}
	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, Slot{Start: s.Start, End: s.End})
	}
	return out
}
