package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AddLeaveRequest запрос на добавление отпуска врача
type AddLeaveRequest struct {
	Actor     domain.Actor `json:"-"`
	StartDate string       `json:"startDate"` // YYYY-MM-DD или дата-время
	EndDate   string       `json:"endDate"`
	Reason    *string      `json:"reason,omitempty"`
}

// LeaveResponse отпуск врача
type LeaveResponse struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Reason    *string   `json:"reason,omitempty"`
}

// LeaveListResponse список отпусков врача
type LeaveListResponse struct {
	DoctorID string          `json:"doctorId"`
	Leaves   []LeaveResponse `json:"leaves"`
}

// FromDomainLeaves конвертирует отпуска в DTO
func FromDomainLeaves(doctorID string, leaves []domain.Leave) *LeaveListResponse {
	resp := &LeaveListResponse{DoctorID: doctorID, Leaves: make([]LeaveResponse, 0, len(leaves))}
	for _, l := range leaves {
		resp.Leaves = append(resp.Leaves, LeaveResponse{
			ID:        l.ID,
			StartDate: l.StartDate,
			EndDate:   l.EndDate,
			Reason:    l.Reason,
		})
	}
	return resp
}
