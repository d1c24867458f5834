package reschedule_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrAccessDenied возвращается, когда пациент переносит чужую запись
	ErrAccessDenied = errors.New("reschedule_appointment: access denied")

	// ErrInvalidState возвращается, когда статус записи не допускает перенос
	ErrInvalidState = errors.New("reschedule_appointment: appointment cannot be rescheduled")

	// ErrSlotConflict возвращается, когда новое время уже занято
	ErrSlotConflict = errors.New("reschedule_appointment: new time slot is not available")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
