package create_appointment

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// Request модель запроса на создание записи
type Request struct {
	Actor     domain.Actor            // Кто создаёт запись
	PatientID string                  // Пациент; для пациента берётся из Actor
	Input     scheduling.BookingInput // Поля запроса в исходном виде
	Priority  *string                 // NORMAL, URGENT или EMERGENCY (опционально)
}
