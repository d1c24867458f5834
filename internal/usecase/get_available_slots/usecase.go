package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// UseCase use case для получения свободных слотов врача на день
type UseCase struct {
	doctorRepo      DoctorRepository
	appointmentRepo AppointmentRepository
	validator       *scheduling.Validator
	resolver        *scheduling.Resolver
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	doctorRepo DoctorRepository,
	appointmentRepo AppointmentRepository,
	validator *scheduling.Validator,
	logger Logger,
) *UseCase {
	return &UseCase{
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		validator:       validator,
		resolver:        scheduling.NewResolver(validator.Rules()),
		logger:          logger,
	}
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: doctor=%s, date=%s", req.DoctorID, req.Date)

	// 1. Валидация входных данных
	day, err := validateRequest(uc.validator, req)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем врача
	doctor, err := uc.doctorRepo.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) || errors.Is(err, doctorRepo.ErrInvalidID) {
			uc.logger.Warn("GetAvailableSlots: doctor id=%s not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get doctor id=%s: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	response := &Response{DoctorID: doctor.ID, Date: day, Slots: []Slot{}}

	// 3. Выходной или отпуск: слотов нет, в базу не ходим
	if !uc.resolver.IsAvailableOn(doctor, day) {
		uc.logger.Info("GetAvailableSlots: doctor id=%s is not available on %s", doctor.ID, req.Date)
		return response, nil
	}

	// 4. Занятые начала слотов за день
	rules := uc.validator.Rules()
	from, to := rules.DayBounds(day)
	dates, err := uc.appointmentRepo.ListDoctorDates(ctx, doctor.ID, from, to, domain.ConflictStatuses)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list appointments for doctor id=%s: %v", doctor.ID, err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	booked := make([]types.TimeString, 0, len(dates))
	for _, d := range dates {
		booked = append(booked, types.NewTimeString(rules.Local(d)))
	}

	// 5. Свободные слоты сетки
	starts, err := uc.resolver.AvailableSlots(doctor, day, booked)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to resolve slots: %v", err)
		return nil, fmt.Errorf("%w: failed to resolve slots: %v", ErrInternal, err)
	}

	for _, start := range starts {
		response.Slots = append(response.Slots, Slot{Start: start, End: start.AddMinutes(rules.SlotMinutes)})
	}

	uc.logger.Info("GetAvailableSlots: %d free slots for doctor id=%s on %s", len(response.Slots), doctor.ID, req.Date)

	return response, nil
}
