package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const (
	operation = "create"

	// maxNumberAttempts ограничивает повторы при коллизии номера записи
	maxNumberAttempts = 3
)

// UseCase use case для создания записи на приём
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

// Execute выполняет use case создания записи.
// Проверка конфликта и вставка выполняются под блокировкой отделения в сериализуемой транзакции;
// ограничение исключения в БД страхует от гонок, если блокировка отключена.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("CreateAppointment: actor=%s(%s), hospital=%s, department=%s, date=%s",
		req.Actor.UserID, req.Actor.UserType, req.Input.HospitalID, req.Input.DepartmentID, req.Input.Date)

	// 1. Фиксируем текущее время для всех проверок
	now := uc.timeProvider.Now()

	// 2. Валидация всех полей сразу; пустой врач равнозначен отсутствующему
	req.Input.Normalize()
	date, priority, err := validateRequest(uc.validator, req, now)
	if err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		uc.metrics.ObserveAppointment(operation, "invalid")
		return nil, err
	}

	// 3. Формируем запись; слот выводится из даты
	appt := &domain.Appointment{
		ID:           primitive.NewObjectID().Hex(),
		PatientID:    patientID(req),
		HospitalID:   req.Input.HospitalID,
		DepartmentID: req.Input.DepartmentID,
		DoctorID:     req.Input.DoctorID,
		Date:         date,
		TimeSlot:     uc.validator.Rules().SlotFor(date),
		Status:       domain.StatusBooked,
		Priority:     priority,
		Reason:       reasonOrDefault(req.Input.Reason),
		Notes:        req.Input.Notes,
		CreatedBy:    req.Actor,
	}

	// 4. Сохраняем; при коллизии номера генерируем новый
	var created *domain.Appointment
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		appt.AppointmentNumber = domain.GenerateAppointmentNumber(uc.validator.Rules().Local(now))

		created, err = uc.book(ctx, appt)
		if !errors.Is(err, appointmentRepo.ErrDuplicateNumber) {
			break
		}
		uc.logger.Warn("CreateAppointment: appointment number %s collided, attempt %d", appt.AppointmentNumber, attempt)
	}

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotConflict):
			uc.metrics.ObserveAppointment(operation, "conflict")
			return nil, err
		case errors.Is(err, ErrInternal):
			uc.metrics.ObserveAppointment(operation, "error")
			return nil, err
		default:
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			uc.metrics.ObserveAppointment(operation, "error")
			return nil, fmt.Errorf("%w: %w", ErrInternal, err)
		}
	}

	uc.metrics.ObserveAppointment(operation, "ok")
	uc.logger.Info("CreateAppointment: created appointment id=%s number=%s", created.ID, created.AppointmentNumber)

	// 5. Уведомление не влияет на результат
	message := fmt.Sprintf("Your appointment %s is booked for %s",
		created.AppointmentNumber, uc.validator.Rules().Local(created.Date).Format("2006-01-02 15:04"))
	uc.notifier.Emit(ctx, domain.EventAppointmentCreated,
		domain.NewAppointmentEvent(domain.NotificationConfirmed, created, message, now))

	return created, nil
}

// book проверяет окно конфликта и сохраняет запись атомарно
func (uc *UseCase) book(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	var result *domain.Appointment

	err := uc.locker.WithDepartmentLock(ctx, appt.HospitalID, appt.DepartmentID, func(lockCtx context.Context) error {
		return uc.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 4.1. Ищем активную запись в окне ±30 минут
			conflict, err := uc.detector.FindConflict(txCtx, appt.HospitalID, appt.DepartmentID, appt.Date, nil)
			if err != nil {
				uc.logger.Error("CreateAppointment: failed to check conflicts: %v", err)
				return fmt.Errorf("%w: failed to check conflicts: %w", ErrInternal, err)
			}
			if conflict != nil {
				uc.logger.Warn("CreateAppointment: slot taken in hospital=%s department=%s at %s",
					appt.HospitalID, appt.DepartmentID, appt.Date.Format("2006-01-02T15:04"))
				uc.metrics.ObserveConflict(operation, "check")
				return ErrSlotConflict
			}

			// 4.2. Вставка; нарушение ограничения исключения тоже означает конфликт
			created, err := uc.appointmentRepo.Create(txCtx, appt)
			if err != nil {
				if errors.Is(err, appointmentRepo.ErrSlotConflict) {
					uc.logger.Warn("CreateAppointment: exclusion constraint rejected appointment: %v", err)
					uc.metrics.ObserveConflict(operation, "constraint")
					return ErrSlotConflict
				}
				// Коллизию номера и сбои сериализации отдаём наверх как есть
				return err
			}

			result = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
