package doctor

import "errors"

var (
	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("doctor.repository: doctor not found")

	// ErrInvalidID возвращается для идентификатора, не являющегося ObjectID
	ErrInvalidID = errors.New("doctor.repository: invalid doctor id")

	// ErrFind возвращается при ошибке чтения документа
	ErrFind = errors.New("doctor.repository: failed to find document")

	// ErrUpdate возвращается при ошибке обновления документа
	ErrUpdate = errors.New("doctor.repository: failed to update document")

	// ErrDecode возвращается при ошибке декодирования документа
	ErrDecode = errors.New("doctor.repository: failed to decode document")
)
