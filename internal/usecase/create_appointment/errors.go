package create_appointment

import "errors"

var (
	// ErrSlotConflict возвращается, когда окно ±30 минут в отделении уже занято
	ErrSlotConflict = errors.New("create_appointment: time slot already booked")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
