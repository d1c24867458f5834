package doctors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors/models"
)

// Service сервис для работы с отпусками врачей
type Service struct {
	doctorRepo DoctorRepository
	validator  *scheduling.Validator
	logger     Logger
}

// NewService создает новый экземпляр сервиса врачей
func NewService(doctorRepo DoctorRepository, validator *scheduling.Validator, logger Logger) *Service {
	return &Service{
		doctorRepo: doctorRepo,
		validator:  validator,
		logger:     logger,
	}
}

// AddLeave добавляет отпуск врачу и возвращает полный список отпусков.
// Даты без времени читаются как начало дня в часовом поясе расписания.
func (s *Service) AddLeave(ctx context.Context, doctorID string, req *models.AddLeaveRequest) (*models.LeaveListResponse, error) {
	s.logger.Info("AddLeave: doctor=%s, %s..%s by user=%s", doctorID, req.StartDate, req.EndDate, req.Actor.UserID)

	if !req.Actor.IsStaff() {
		s.logger.Warn("AddLeave: user=%s is not staff", req.Actor.UserID)
		return nil, ErrAccessDenied
	}

	leave, err := s.validateLeave(doctorID, req)
	if err != nil {
		s.logger.Warn("AddLeave: validation failed: %v", err)
		return nil, err
	}

	leaves, err := s.doctorRepo.AddLeave(ctx, doctorID, leave)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			s.logger.Warn("AddLeave: doctor id=%s not found", doctorID)
			return nil, ErrDoctorNotFound
		}
		s.logger.Error("AddLeave: repository error for doctor id=%s: %v", doctorID, err)
		return nil, fmt.Errorf("%w: AddLeave - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddLeave: doctor id=%s now has %d leaves", doctorID, len(leaves))
	return models.FromDomainLeaves(doctorID, leaves), nil
}

// GetLeaves получает отпуска врача
func (s *Service) GetLeaves(ctx context.Context, doctorID string) (*models.LeaveListResponse, error) {
	s.logger.Info("GetLeaves: doctor=%s", doctorID)

	if fe := s.validator.ValidateReference(doctorID, "Doctor", true); fe != nil {
		verr := scheduling.NewValidationError()
		verr.Add("doctorId", fe)
		return nil, verr
	}

	leaves, err := s.doctorRepo.GetLeaves(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			s.logger.Warn("GetLeaves: doctor id=%s not found", doctorID)
			return nil, ErrDoctorNotFound
		}
		s.logger.Error("GetLeaves: repository error for doctor id=%s: %v", doctorID, err)
		return nil, fmt.Errorf("%w: GetLeaves - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainLeaves(doctorID, leaves), nil
}

// validateLeave собирает все ошибки полей сразу
func (s *Service) validateLeave(doctorID string, req *models.AddLeaveRequest) (domain.Leave, error) {
	verr := scheduling.NewValidationError()
	verr.Add("doctorId", s.validator.ValidateReference(doctorID, "Doctor", true))

	start, startErr := s.parseLeaveDate(req.StartDate, "Start date")
	verr.Add("startDate", startErr)
	end, endErr := s.parseLeaveDate(req.EndDate, "End date")
	verr.Add("endDate", endErr)

	if startErr == nil && endErr == nil && end.Before(start) {
		verr.Add("endDate", &scheduling.FieldError{
			Kind:    scheduling.KindInvalidValue,
			Message: "End date must be on or after start date",
		})
	}

	verr.Add("reason", s.validator.ValidateTextLength(req.Reason, "Reason"))

	if err := verr.OrNil(); err != nil {
		return domain.Leave{}, err
	}

	leave := domain.Leave{StartDate: start, EndDate: end}
	if req.Reason != nil {
		if trimmed := strings.TrimSpace(*req.Reason); trimmed != "" {
			leave.Reason = &trimmed
		}
	}
	return leave, nil
}

func (s *Service) parseLeaveDate(raw, label string) (time.Time, *scheduling.FieldError) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, &scheduling.FieldError{Kind: scheduling.KindRequired, Message: label + " is required"}
	}
	rules := s.validator.Rules()
	if day, err := time.ParseInLocation(domain.DateFormat, strings.TrimSpace(raw), rules.Location); err == nil {
		return day, nil
	}
	t, err := s.validator.ParseDate(raw)
	if err != nil {
		return time.Time{}, &scheduling.FieldError{Kind: scheduling.KindInvalidDate, Message: "Invalid " + strings.ToLower(label) + " format"}
	}
	return t, nil
}
