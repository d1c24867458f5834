package scheduling

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	tagObjectID = "objectid"
	tagTextLen  = "textlen"
)

// dateLayouts are tried in order; layouts without an offset are read in the scheduling timezone.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var fieldLabels = map[string]string{
	"hospital":   "Hospital",
	"department": "Department",
	"doctor":     "Doctor",
	"notes":      "Notes",
	"reason":     "Reason",
}

// BookingInput is the raw create request.
type BookingInput struct {
	HospitalID   string  `json:"hospital" validate:"required,objectid"`
	DepartmentID string  `json:"department" validate:"required,objectid"`
	DoctorID     *string `json:"doctor" validate:"omitempty,objectid"`
	Date         string  `json:"date"`
	Notes        *string `json:"notes" validate:"omitempty,textlen"`
	Reason       *string `json:"reason" validate:"omitempty,textlen"`
}

// Normalize treats a blank optional doctor reference as absent.
func (in *BookingInput) Normalize() {
	if in.DoctorID != nil && strings.TrimSpace(*in.DoctorID) == "" {
		in.DoctorID = nil
	}
}

// Validator runs every field rule and reports all failures at once.
type Validator struct {
	rules    Rules
	validate *validator.Validate
}

func NewValidator(rules Rules) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation(tagObjectID, func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	_ = v.RegisterValidation(tagTextLen, func(fl validator.FieldLevel) bool {
		return textLength(fl.Field().String()) <= rules.MaxTextLength
	})

	return &Validator{rules: rules, validate: v}
}

// Rules returns the rules the validator enforces.
func (v *Validator) Rules() Rules {
	return v.rules
}

// ValidateBooking checks every field of in against now and returns the parsed local date.
// On failure the error is a *ValidationError listing each invalid field.
func (v *Validator) ValidateBooking(in BookingInput, now time.Time) (time.Time, error) {
	verr := NewValidationError()

	in.Normalize()
	v.collectStructErrors(in, verr)

	date, fe := v.ValidateAppointmentDate(in.Date, now)
	verr.Add("date", fe)

	if err := verr.OrNil(); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

// ValidateReschedule validates newDate with the booking date rules and requires the
// current appointment date to still be in the future.
func (v *Validator) ValidateReschedule(newDate string, current *domain.Appointment, now time.Time) (time.Time, error) {
	verr := NewValidationError()

	date, fe := v.ValidateAppointmentDate(newDate, now)
	verr.Add("newDate", fe)

	if !current.Date.After(now) {
		verr.Add("appointment", &FieldError{
			Kind:    KindPastDate,
			Message: "Cannot reschedule an appointment that has already passed",
		})
	}

	if err := verr.OrNil(); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

// ValidateAppointmentDate parses raw and applies the date rules in order: past, notice,
// booking window, business hours. The first failing rule is reported.
func (v *Validator) ValidateAppointmentDate(raw string, now time.Time) (time.Time, *FieldError) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, &FieldError{Kind: KindRequired, Message: "Appointment date is required"}
	}

	date, err := v.ParseDate(raw)
	if err != nil {
		return time.Time{}, &FieldError{Kind: KindInvalidDate, Message: "Invalid date format"}
	}

	if fe := v.CheckAppointmentDate(date, now); fe != nil {
		return time.Time{}, fe
	}
	return date, nil
}

// CheckAppointmentDate applies the date rules to an already parsed instant.
func (v *Validator) CheckAppointmentDate(date, now time.Time) *FieldError {
	if !date.After(now) {
		return &FieldError{Kind: KindPastDate, Message: "Cannot book appointments in the past"}
	}

	if date.Before(now.Add(v.rules.MinNotice)) {
		return &FieldError{
			Kind:    KindInsufficientNotice,
			Message: fmt.Sprintf("Appointments must be booked at least %s in advance", formatHours(v.rules.MinNotice)),
		}
	}

	maxDate := v.rules.Local(now).AddDate(0, v.rules.MaxAdvanceMonths, 0)
	if date.After(maxDate) {
		return &FieldError{
			Kind:    KindBookingWindowExceeded,
			Message: fmt.Sprintf("Cannot book appointments more than %d months in advance", v.rules.MaxAdvanceMonths),
		}
	}

	hour := v.rules.Local(date).Hour()
	if hour < v.rules.BusinessHourStart || hour >= v.rules.BusinessHourEnd {
		return &FieldError{
			Kind: KindOutsideBusinessHours,
			Message: fmt.Sprintf("Appointments must be between %02d:00 and %02d:00",
				v.rules.BusinessHourStart, v.rules.BusinessHourEnd),
		}
	}

	return nil
}

// ParseDate accepts RFC 3339 instants and offset-less local timestamps in the scheduling timezone.
// The result is expressed in the scheduling timezone.
func (v *Validator) ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return v.rules.Local(t), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, v.rules.Location); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidArgument, raw)
}

// ValidateReference checks a 24-hex resource id. An empty optional id passes.
func (v *Validator) ValidateReference(id, label string, required bool) *FieldError {
	if id == "" {
		if !required {
			return nil
		}
		return &FieldError{Kind: KindRequired, Message: fmt.Sprintf("%s is required", label)}
	}
	if !primitive.IsValidObjectID(id) {
		return &FieldError{Kind: KindInvalidReference, Message: fmt.Sprintf("Invalid %s format", label)}
	}
	return nil
}

// ValidateTextLength checks optional free text against the configured limit after trimming.
func (v *Validator) ValidateTextLength(text *string, label string) *FieldError {
	if text == nil || textLength(*text) <= v.rules.MaxTextLength {
		return nil
	}
	return &FieldError{
		Kind:    KindTextTooLong,
		Message: fmt.Sprintf("%s must be at most %d characters", label, v.rules.MaxTextLength),
	}
}

func (v *Validator) collectStructErrors(in BookingInput, verr *ValidationError) {
	err := v.validate.Struct(in)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("request", &FieldError{Kind: KindInvalidValue, Message: err.Error()})
		return
	}

	for _, fe := range fieldErrs {
		field := fe.Field()
		label := fieldLabels[field]
		if label == "" {
			label = field
		}

		switch fe.Tag() {
		case "required":
			verr.Add(field, &FieldError{Kind: KindRequired, Message: fmt.Sprintf("%s is required", label)})
		case tagObjectID:
			verr.Add(field, &FieldError{Kind: KindInvalidReference, Message: fmt.Sprintf("Invalid %s format", label)})
		case tagTextLen:
			verr.Add(field, &FieldError{
				Kind:    KindTextTooLong,
				Message: fmt.Sprintf("%s must be at most %d characters", label, v.rules.MaxTextLength),
			})
		default:
			verr.Add(field, &FieldError{Kind: KindInvalidValue, Message: fmt.Sprintf("%s is invalid", label)})
		}
	}
}

func textLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
