package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на получение свободных слотов врача
type Request struct {
	DoctorID string // ID врача (ObjectID)
	Date     string // Дата в формате YYYY-MM-DD
}

// Response модель ответа со списком свободных слотов
type Response struct {
	DoctorID string
	Date     time.Time // Начало дня в часовом поясе расписания
	Slots    []Slot
}

// Slot свободный слот сетки
type Slot struct {
	Start types.TimeString
	End   types.TimeString
}
