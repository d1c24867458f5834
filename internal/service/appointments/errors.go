package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")

	// ErrAccessDenied возвращается, когда у актора нет прав на операцию
	ErrAccessDenied = errors.New("appointments: access denied")

	// ErrInvalidState возвращается, когда переход статуса не разрешён
	ErrInvalidState = errors.New("appointments: invalid status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("appointments: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("appointments: internal error")
)
