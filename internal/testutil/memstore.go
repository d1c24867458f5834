// Package testutil provides in-memory stand-ins for storage and infrastructure used by use case tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
)

// Appointments is an in-memory appointment repository.
// Like the database exclusion constraint, Create and Update reject an active appointment whose
// date is within ConflictWindow of another active appointment in the same department.
type Appointments struct {
	mu             sync.Mutex
	items          map[string]domain.Appointment
	ConflictWindow time.Duration
	// CreateErr, when set, is returned by the next Create call.
	CreateErr error
}

func NewAppointments(conflictWindow time.Duration) *Appointments {
	return &Appointments{items: make(map[string]domain.Appointment), ConflictWindow: conflictWindow}
}

// Put stores a copy of a without any checks.
func (s *Appointments) Put(a *domain.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[a.ID] = *a
}

// Get returns a copy of the stored appointment.
func (s *Appointments) Get(id string) (domain.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	return a, ok
}

// Len returns the number of stored appointments.
func (s *Appointments) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Appointments) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.CreateErr; err != nil {
		s.CreateErr = nil
		return nil, err
	}
	for _, existing := range s.items {
		if existing.AppointmentNumber == a.AppointmentNumber {
			return nil, appointment.ErrDuplicateNumber
		}
	}
	if s.overlapsLocked(a) {
		return nil, fmt.Errorf("%w: Create", appointment.ErrSlotConflict)
	}

	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	s.items[a.ID] = *a
	return a, nil
}

func (s *Appointments) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (s *Appointments) FindConflict(_ context.Context, hospitalID, departmentID string, from, to time.Time, excludeID *string) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []domain.Appointment
	for _, a := range s.items {
		if a.HospitalID != hospitalID || a.DepartmentID != departmentID || !a.Status.OccupiesWindow() {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		found = append(found, a)
	}
	if len(found) == 0 {
		return nil, nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Date.Before(found[j].Date) })
	return &found[0], nil
}

func (s *Appointments) Update(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[a.ID]; !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if s.overlapsLocked(a) {
		return nil, fmt.Errorf("%w: Update", appointment.ErrSlotConflict)
	}

	a.UpdatedAt = time.Now()
	s.items[a.ID] = *a
	return a, nil
}

func (s *Appointments) UpdateStatus(_ context.Context, id string, status domain.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[id]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	s.items[id] = a
	return nil
}

func (s *Appointments) ListByPatient(_ context.Context, filter domain.PatientAppointmentsFilter) ([]*domain.Appointment, error) {
	return s.list(func(a domain.Appointment) bool {
		if a.PatientID != filter.PatientID {
			return false
		}
		if filter.Status != nil && a.Status != *filter.Status {
			return false
		}
		if filter.UpcomingFrom != nil && (a.Date.Before(*filter.UpcomingFrom) || !a.Status.OccupiesWindow()) {
			return false
		}
		return true
	}), nil
}

func (s *Appointments) ListByHospital(_ context.Context, filter domain.HospitalAppointmentsFilter) ([]*domain.Appointment, error) {
	return s.list(func(a domain.Appointment) bool {
		if a.HospitalID != filter.HospitalID {
			return false
		}
		if filter.DepartmentID != nil && a.DepartmentID != *filter.DepartmentID {
			return false
		}
		if filter.DoctorID != nil && (a.DoctorID == nil || *a.DoctorID != *filter.DoctorID) {
			return false
		}
		if filter.From != nil && a.Date.Before(*filter.From) {
			return false
		}
		if filter.To != nil && !a.Date.Before(*filter.To) {
			return false
		}
		if filter.Status != nil {
			return a.Status == *filter.Status
		}
		return filter.IncludeInactive || !hasStatus(domain.InactiveStatuses, a.Status)
	}), nil
}

func (s *Appointments) ListDoctorDates(_ context.Context, doctorID string, from, to time.Time, statuses []domain.AppointmentStatus) ([]time.Time, error) {
	list := s.list(func(a domain.Appointment) bool {
		return a.DoctorID != nil && *a.DoctorID == doctorID && hasStatus(statuses, a.Status) &&
			!a.Date.Before(from) && a.Date.Before(to)
	})
	dates := make([]time.Time, 0, len(list))
	for _, a := range list {
		dates = append(dates, a.Date)
	}
	return dates, nil
}

func (s *Appointments) ExistsForDoctorAt(_ context.Context, doctorID string, date time.Time, statuses []domain.AppointmentStatus) (bool, error) {
	list := s.list(func(a domain.Appointment) bool {
		return a.DoctorID != nil && *a.DoctorID == doctorID && a.Date.Equal(date) && hasStatus(statuses, a.Status)
	})
	return len(list) > 0, nil
}

func (s *Appointments) list(match func(domain.Appointment) bool) []*domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Appointment, 0)
	for _, a := range s.items {
		if match(a) {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (s *Appointments) overlapsLocked(a *domain.Appointment) bool {
	if !a.Status.OccupiesWindow() {
		return false
	}
	for _, other := range s.items {
		if other.ID == a.ID || !other.Status.OccupiesWindow() {
			continue
		}
		if other.HospitalID != a.HospitalID || other.DepartmentID != a.DepartmentID {
			continue
		}
		diff := other.Date.Sub(a.Date)
		if diff < 0 {
			diff = -diff
		}
		if diff <= s.ConflictWindow {
			return true
		}
	}
	return false
}

func hasStatus(statuses []domain.AppointmentStatus, s domain.AppointmentStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Doctors is an in-memory doctor directory.
type Doctors struct {
	mu    sync.Mutex
	items map[string]domain.Doctor
}

func NewDoctors(doctors ...*domain.Doctor) *Doctors {
	s := &Doctors{items: make(map[string]domain.Doctor)}
	for _, d := range doctors {
		s.items[d.ID] = *d
	}
	return s
}

func (s *Doctors) GetByID(_ context.Context, id string) (*domain.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.items[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	return &d, nil
}

func (s *Doctors) AddLeave(_ context.Context, doctorID string, leave domain.Leave) ([]domain.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.items[doctorID]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	if leave.ID == "" {
		leave.ID = fmt.Sprintf("leave-%d", len(d.Leaves)+1)
	}
	d.Leaves = append(append([]domain.Leave{}, d.Leaves...), leave)
	s.items[doctorID] = d
	return d.Leaves, nil
}

func (s *Doctors) GetLeaves(_ context.Context, doctorID string) ([]domain.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.items[doctorID]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	return d.Leaves, nil
}
