package models

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/patientservice"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("models: invalid appointment status")
)

// Request модели

// UpdateStatusRequest запрос на смену статуса записи
type UpdateStatusRequest struct {
	Actor  domain.Actor `json:"-"`
	Status string       `json:"status"`
}

// ListMyAppointmentsRequest запрос на получение записей пациента
type ListMyAppointmentsRequest struct {
	Actor    domain.Actor
	Status   *string
	Upcoming bool
}

// ListHospitalAppointmentsRequest запрос на получение записей больницы
type ListHospitalAppointmentsRequest struct {
	Actor           domain.Actor
	HospitalID      string
	DepartmentID    *string
	DoctorID        *string
	From            *time.Time
	To              *time.Time
	Status          *string
	IncludeInactive bool
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListHospitalAppointmentsRequest) ToDomainFilter() (domain.HospitalAppointmentsFilter, error) {
	filter := domain.HospitalAppointmentsFilter{
		HospitalID:      r.HospitalID,
		DepartmentID:    r.DepartmentID,
		DoctorID:        r.DoctorID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ActorResponse кто выполнил действие
type ActorResponse struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

// TimeSlotResponse слот записи
type TimeSlotResponse struct {
	Start string `json:"start"` // "10:00"
	End   string `json:"end"`   // "10:15"
}

// CancellationResponse данные отмены
type CancellationResponse struct {
	Reason      string        `json:"reason"`
	CancelledBy ActorResponse `json:"cancelledBy"`
	CancelledAt time.Time     `json:"cancelledAt"`
}

// PatientResponse денормализованные данные пациента
type PatientResponse struct {
	FullName string  `json:"fullName"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID                string           `json:"id"`
	AppointmentNumber string           `json:"appointmentNumber"`
	PatientID         string           `json:"patientId"`
	HospitalID        string           `json:"hospitalId"`
	DepartmentID      string           `json:"departmentId"`
	DoctorID          *string          `json:"doctorId,omitempty"`
	Date              time.Time        `json:"date"`
	TimeSlot          TimeSlotResponse `json:"timeSlot"`
	Status            string           `json:"status"`
	Priority          string           `json:"priority"`
	Reason            string           `json:"reason"`
	Notes             *string          `json:"notes,omitempty"`

	Cancellation *CancellationResponse `json:"cancellation,omitempty"`
	CreatedBy    ActorResponse         `json:"createdBy"`

	// Заполняется только при чтении одной записи
	Patient *PatientResponse `json:"patient,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                a.ID,
		AppointmentNumber: a.AppointmentNumber,
		PatientID:         a.PatientID,
		HospitalID:        a.HospitalID,
		DepartmentID:      a.DepartmentID,
		DoctorID:          a.DoctorID,
		Date:              a.Date,
		TimeSlot: TimeSlotResponse{
			Start: a.TimeSlot.Start.String(),
			End:   a.TimeSlot.End.String(),
		},
		Status:    string(a.Status),
		Priority:  string(a.Priority),
		Reason:    a.Reason,
		Notes:     a.Notes,
		CreatedBy: fromActor(a.CreatedBy),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}

	if a.Cancellation != nil {
		resp.Cancellation = &CancellationResponse{
			Reason:      a.Cancellation.Reason,
			CancelledBy: fromActor(a.Cancellation.CancelledBy),
			CancelledAt: a.Cancellation.CancelledAt,
		}
	}

	return resp
}

// WithPatient добавляет данные пациента в ответ
func (r *AppointmentResponse) WithPatient(p *patientservice.Patient) *AppointmentResponse {
	if p != nil {
		r.Patient = &PatientResponse{FullName: p.FullName, Email: p.Email, Phone: p.Phone}
	}
	return r
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
	}

	for _, a := range list {
		if item := FromDomainAppointment(a); item != nil {
			resp.Appointments = append(resp.Appointments, *item)
		}
	}
	resp.Total = len(resp.Appointments)

	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией.
// Регистр не важен: "confirmed" и "CONFIRMED" равнозначны.
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func fromActor(a domain.Actor) ActorResponse {
	return ActorResponse{UserID: a.UserID, UserType: string(a.UserType)}
}
