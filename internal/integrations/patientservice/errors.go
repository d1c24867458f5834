package patientservice

import "errors"

var (
	// ErrPatientNotFound возвращается, когда пациент не найден
	ErrPatientNotFound = errors.New("patientservice: patient not found")

	// ErrInvalidResponse возвращается при неожиданном ответе сервиса
	ErrInvalidResponse = errors.New("patientservice: invalid response")

	// ErrServiceDegraded возвращается, когда сервис пациентов недоступен
	ErrServiceDegraded = errors.New("patientservice: service degraded")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("patientservice: internal error")
)
