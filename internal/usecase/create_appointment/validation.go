package create_appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// validateRequest запускает все проверки и собирает ошибки по всем полям сразу
func validateRequest(v *scheduling.Validator, req *Request, now time.Time) (time.Time, domain.Priority, error) {
	verr := scheduling.NewValidationError()

	date, err := v.ValidateBooking(req.Input, now)
	if err != nil && !errors.As(err, &verr) {
		return time.Time{}, "", fmt.Errorf("%w: validate booking: %v", ErrInternal, err)
	}

	// Персонал записывает пациента явно, пациент записывает себя
	if req.Actor.IsStaff() {
		verr.Add("patient", v.ValidateReference(req.PatientID, "Patient", true))
	}

	priority := domain.PriorityNormal
	if req.Priority != nil && strings.TrimSpace(*req.Priority) != "" {
		priority = domain.Priority(strings.ToUpper(strings.TrimSpace(*req.Priority)))
		if !priority.IsValid() {
			verr.Add("priority", &scheduling.FieldError{
				Kind:    scheduling.KindInvalidValue,
				Message: "Priority must be one of NORMAL, URGENT, EMERGENCY",
			})
		}
	}

	if err := verr.OrNil(); err != nil {
		return time.Time{}, "", err
	}
	return date, priority, nil
}

// patientID определяет владельца записи
func patientID(req *Request) string {
	if req.Actor.IsPatient() {
		return req.Actor.UserID
	}
	return req.PatientID
}

// reasonOrDefault возвращает причину визита или значение по умолчанию
func reasonOrDefault(reason *string) string {
	if reason == nil || strings.TrimSpace(*reason) == "" {
		return domain.DefaultReason
	}
	return strings.TrimSpace(*reason)
}
