package doctors

import "errors"

var (
	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("doctors: doctor not found")

	// ErrAccessDenied возвращается, когда отпуск добавляет не сотрудник
	ErrAccessDenied = errors.New("doctors: access denied")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("doctors: internal error")
)
