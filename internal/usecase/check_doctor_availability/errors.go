package check_doctor_availability

import "errors"

var (
	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("check_doctor_availability: doctor not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("check_doctor_availability: internal error")
)
