package reschedule_appointment

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Request модель запроса на перенос записи
type Request struct {
	AppointmentID string       // ID записи
	NewDate       string       // Новая дата в ISO-8601
	Actor         domain.Actor // Кто переносит
}
