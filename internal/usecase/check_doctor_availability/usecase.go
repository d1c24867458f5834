package check_doctor_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// UseCase use case для проверки доступности врача на дату и время
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

// Execute выполняет проверку.
// Недоступность врача это обычный ответ с Available=false, а не ошибка.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckDoctorAvailability: doctor=%s, date=%s", req.DoctorID, req.Date)

	// 1. Валидация входных данных
	t, err := validateRequest(uc.validator, req)
	if err != nil {
		uc.logger.Warn("CheckDoctorAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем врача
	doctor, err := uc.doctorRepo.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) || errors.Is(err, doctorRepo.ErrInvalidID) {
			uc.logger.Warn("CheckDoctorAvailability: doctor id=%s not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("CheckDoctorAvailability: failed to get doctor id=%s: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	// 3. День недели
	if !uc.resolver.IsServiceDay(doctor, t.day) {
		return &Response{Message: fmt.Sprintf(msgNotWorking, t.day.Weekday())}, nil
	}

	// 4. Отпуск
	if uc.resolver.IsOnLeave(doctor, t.day) {
		return &Response{Message: msgOnLeave}, nil
	}

	// 5. Запись на то же время
	if t.instant != nil {
		busy, err := uc.appointmentRepo.ExistsForDoctorAt(ctx, doctor.ID, *t.instant, domain.DoctorBusyStatuses)
		if err != nil {
			uc.logger.Error("CheckDoctorAvailability: failed to check appointments for doctor id=%s: %v", doctor.ID, err)
			return nil, fmt.Errorf("%w: failed to check appointments: %v", ErrInternal, err)
		}
		if busy {
			return &Response{Message: msgAlreadyBusy}, nil
		}
	}

	return &Response{Available: true, Message: msgAvailable}, nil
}
