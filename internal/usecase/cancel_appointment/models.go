package cancel_appointment

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Request модель запроса на отмену записи
type Request struct {
	AppointmentID string       // ID записи
	Reason        *string      // Причина отмены (опционально)
	Actor         domain.Actor // Кто отменяет
}
