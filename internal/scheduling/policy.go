package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// CancellationPolicy decides whether actor may cancel appt at now.
type CancellationPolicy interface {
	CheckCancel(actor domain.Actor, appt *domain.Appointment, now time.Time) error
}

// CancellationPolicyFunc adapts a function to CancellationPolicy.
type CancellationPolicyFunc func(actor domain.Actor, appt *domain.Appointment, now time.Time) error

func (f CancellationPolicyFunc) CheckCancel(actor domain.Actor, appt *domain.Appointment, now time.Time) error {
	return f(actor, appt, now)
}

// PatientNoticePolicy requires patient cancellations to happen strictly more than Notice before the visit.
// Staff cancellations are not restricted.
type PatientNoticePolicy struct {
	Notice time.Duration
}

func NewPatientNoticePolicy(notice time.Duration) PatientNoticePolicy {
	return PatientNoticePolicy{Notice: notice}
}

func (p PatientNoticePolicy) CheckCancel(actor domain.Actor, appt *domain.Appointment, now time.Time) error {
	if !actor.IsPatient() {
		return nil
	}
	if appt.Date.Sub(now) > p.Notice {
		return nil
	}
	return fmt.Errorf("%w: appointments can only be cancelled more than %s in advance",
		ErrCancellationWindowClosed, formatHours(p.Notice))
}

// AllowAll never restricts cancellation.
var AllowAll = CancellationPolicyFunc(func(domain.Actor, *domain.Appointment, time.Time) error { return nil })

func formatHours(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
