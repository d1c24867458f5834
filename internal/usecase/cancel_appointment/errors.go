package cancel_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("cancel_appointment: appointment not found")

	// ErrAccessDenied возвращается, когда пациент отменяет чужую запись
	ErrAccessDenied = errors.New("cancel_appointment: access denied")

	// ErrInvalidState возвращается, когда статус записи не допускает отмену
	ErrInvalidState = errors.New("cancel_appointment: appointment cannot be cancelled")

	// ErrCancellationWindowClosed возвращается, когда до приёма осталось слишком мало времени
	ErrCancellationWindowClosed = errors.New("cancel_appointment: too late to cancel")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_appointment: internal error")
)
