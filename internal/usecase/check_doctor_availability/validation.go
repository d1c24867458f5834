package check_doctor_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// target день проверки и, если известно, точное время приёма
type target struct {
	day     time.Time
	instant *time.Time
}

// validateRequest разбирает дату и время.
// Точное время известно, если передан timeSlot или дата содержит время.
func validateRequest(v *scheduling.Validator, req *Request) (target, error) {
	rules := v.Rules()
	verr := scheduling.NewValidationError()
	verr.Add("doctorId", v.ValidateReference(req.DoctorID, "Doctor", true))

	var result target
	switch {
	case req.Date == "":
		verr.Add("date", &scheduling.FieldError{Kind: scheduling.KindRequired, Message: "Date is required"})
	default:
		if day, err := time.ParseInLocation(domain.DateFormat, req.Date, rules.Location); err == nil {
			result.day = day
		} else if at, err := v.ParseDate(req.Date); err == nil {
			result.day = rules.StartOfDay(at)
			result.instant = &at
		} else {
			verr.Add("date", &scheduling.FieldError{Kind: scheduling.KindInvalidDate, Message: "Invalid date format"})
		}
	}

	if req.TimeSlot != nil && *req.TimeSlot != "" {
		slot, err := types.NewTimeStringFromString(*req.TimeSlot)
		if err != nil {
			verr.Add("timeSlot", &scheduling.FieldError{Kind: scheduling.KindInvalidValue, Message: "Invalid time slot format, expected HH:MM"})
		} else if !result.day.IsZero() {
			at := slot.On(result.day)
			result.instant = &at
		}
	}

	return result, verr.OrNil()
}
