package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// validateRequest проверяет ID врача и дату и возвращает начало дня в часовом поясе расписания
func validateRequest(v *scheduling.Validator, req *Request) (time.Time, error) {
	verr := scheduling.NewValidationError()
	verr.Add("doctorId", v.ValidateReference(req.DoctorID, "Doctor", true))

	var day time.Time
	if req.Date == "" {
		verr.Add("date", &scheduling.FieldError{Kind: scheduling.KindRequired, Message: "Date is required"})
	} else {
		parsed, err := time.ParseInLocation(domain.DateFormat, req.Date, v.Rules().Location)
		if err != nil {
			verr.Add("date", &scheduling.FieldError{Kind: scheduling.KindInvalidDate, Message: "Invalid date format, expected YYYY-MM-DD"})
		} else {
			day = parsed
		}
	}

	return day, verr.OrNil()
}
