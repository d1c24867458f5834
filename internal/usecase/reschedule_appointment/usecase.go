package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const operation = "reschedule"

// UseCase use case для переноса записи.
// Запись переносится на месте: тот же ID и номер, новая дата и слот, статус сбрасывается в BOOKED.
type UseCase struct {
	appointmentRepo AppointmentRepository
	detector        ConflictDetector
	validator       *scheduling.Validator
	locker          Locker
	txManager       TransactionManager
	notifier        Notifier
	timeProvider    TimeProvider
	metrics         *metrics.Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	detector ConflictDetector,
	validator *scheduling.Validator,
	locker Locker,
	txManager TransactionManager,
	notifier Notifier,
	timeProvider TimeProvider,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		detector:        detector,
		validator:       validator,
		locker:          locker,
		txManager:       txManager,
		notifier:        notifier,
		timeProvider:    timeProvider,
		metrics:         m,
		logger:          logger,
	}
}

// Execute выполняет use case переноса записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("RescheduleAppointment: id=%s, newDate=%s, actor=%s(%s)",
		req.AppointmentID, req.NewDate, req.Actor.UserID, req.Actor.UserType)

	// 1. Проверяем формат ID
	if fe := uc.validator.ValidateReference(req.AppointmentID, "Appointment", true); fe != nil {
		verr := scheduling.NewValidationError()
		verr.Add("appointmentId", fe)
		return nil, verr
	}

	now := uc.timeProvider.Now()

	// 2. Загружаем запись и проверяем права и статус
	current, err := uc.load(ctx, req)
	if err != nil {
		return nil, uc.classify(err)
	}

	// 3. Новая дата проверяется теми же правилами, что и при создании
	newDate, err := uc.validator.ValidateReschedule(req.NewDate, current, now)
	if err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed for id=%s: %v", req.AppointmentID, err)
		uc.metrics.ObserveAppointment(operation, "invalid")
		return nil, err
	}

	slot := uc.validator.Rules().SlotFor(newDate)
	var result *domain.Appointment
	var previousDate time.Time

	// 4. Проверка конфликта (без самой записи) и сохранение атомарно
	err = uc.locker.WithDepartmentLock(ctx, current.HospitalID, current.DepartmentID, func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 4.1. Перечитываем запись под блокировкой: статус мог измениться
			appt, err := uc.load(txCtx, req)
			if err != nil {
				return err
			}

			// 4.2. Ищем конфликт, исключая саму запись
			conflict, err := uc.detector.FindConflict(txCtx, appt.HospitalID, appt.DepartmentID, newDate, &appt.ID)
			if err != nil {
				uc.logger.Error("RescheduleAppointment: failed to check conflicts: %v", err)
				return fmt.Errorf("%w: failed to check conflicts: %w", ErrInternal, err)
			}
			if conflict != nil {
				uc.logger.Warn("RescheduleAppointment: slot taken for id=%s at %s", appt.ID, newDate.Format("2006-01-02T15:04"))
				uc.metrics.ObserveConflict(operation, "check")
				return ErrSlotConflict
			}

			// 4.3. Переносим на месте
			previousDate = appt.Date
			if err := appt.Reschedule(newDate, slot); err != nil {
				return ErrInvalidState
			}

			updated, err := uc.appointmentRepo.Update(txCtx, appt)
			if err != nil {
				if errors.Is(err, appointmentRepo.ErrSlotConflict) {
					uc.logger.Warn("RescheduleAppointment: exclusion constraint rejected id=%s: %v", appt.ID, err)
					uc.metrics.ObserveConflict(operation, "constraint")
					return ErrSlotConflict
				}
				if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
					return ErrAppointmentNotFound
				}
				return err
			}

			result = updated
			return nil
		})
	})
	if err != nil {
		return nil, uc.classify(err)
	}

	uc.metrics.ObserveAppointment(operation, "ok")
	uc.logger.Info("RescheduleAppointment: moved id=%s from %s to %s", result.ID,
		previousDate.Format(time.RFC3339), result.Date.Format(time.RFC3339))

	// 5. Уведомление с прежней и новой датой
	rules := uc.validator.Rules()
	message := fmt.Sprintf("Your appointment %s has been rescheduled from %s to %s",
		result.AppointmentNumber,
		rules.Local(previousDate).Format("2006-01-02 15:04"),
		rules.Local(result.Date).Format("2006-01-02 15:04"))
	event := domain.NewAppointmentEvent(domain.NotificationRescheduled, result, message, now)
	event.PreviousDate = &previousDate
	uc.notifier.Emit(ctx, domain.EventAppointmentRescheduled, event)

	return result, nil
}

// load получает запись и проверяет, что актор может её переносить
func (uc *UseCase) load(ctx context.Context, req *Request) (*domain.Appointment, error) {
	appt, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%s not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment id=%s: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %w", ErrInternal, err)
	}

	if req.Actor.IsPatient() && !appt.IsOwnedBy(req.Actor.UserID) {
		uc.logger.Warn("RescheduleAppointment: patient=%s does not own id=%s", req.Actor.UserID, appt.ID)
		return nil, ErrAccessDenied
	}

	if !appt.CanBeRescheduled() {
		uc.logger.Warn("RescheduleAppointment: id=%s cannot be rescheduled, status=%s", appt.ID, appt.Status)
		return nil, fmt.Errorf("%w: status %s", ErrInvalidState, appt.Status)
	}

	return appt, nil
}

// classify сводит ошибки транзакции к ошибкам usecase и учитывает метрики
func (uc *UseCase) classify(err error) error {
	switch {
	case errors.Is(err, ErrSlotConflict):
		uc.metrics.ObserveAppointment(operation, "conflict")
		return err
	case errors.Is(err, ErrAppointmentNotFound), errors.Is(err, ErrAccessDenied), errors.Is(err, ErrInvalidState):
		uc.metrics.ObserveAppointment(operation, "rejected")
		return err
	case errors.Is(err, ErrInternal):
		uc.metrics.ObserveAppointment(operation, "error")
		return err
	default:
		uc.logger.Error("RescheduleAppointment: failed to reschedule: %v", err)
		uc.metrics.ObserveAppointment(operation, "error")
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
