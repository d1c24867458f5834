package cancel_appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const operation = "cancel"

// UseCase use case для отмены записи.
// Отмена освобождает окно, поэтому блокировка отделения не нужна: достаточно FOR UPDATE по записи.
type UseCase struct {
	appointmentRepo AppointmentRepository
	validator       *scheduling.Validator
	policy          CancellationPolicy
	txManager       TransactionManager
	notifier        Notifier
	timeProvider    TimeProvider
	metrics         *metrics.Metrics
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	validator *scheduling.Validator,
	policy CancellationPolicy,
	txManager TransactionManager,
	notifier Notifier,
	timeProvider TimeProvider,
	m *metrics.Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		validator:       validator,
		policy:          policy,
		txManager:       txManager,
		notifier:        notifier,
		timeProvider:    timeProvider,
		metrics:         m,
		logger:          logger,
	}
}

// Execute выполняет use case отмены записи.
// Повторная отмена уже отменённой записи завершается ErrInvalidState.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*domain.Appointment, error) {
	uc.logger.Info("CancelAppointment: id=%s, actor=%s(%s)", req.AppointmentID, req.Actor.UserID, req.Actor.UserType)

	// 1. Валидация входных данных
	verr := scheduling.NewValidationError()
	verr.Add("appointmentId", uc.validator.ValidateReference(req.AppointmentID, "Appointment", true))
	verr.Add("reason", uc.validator.ValidateTextLength(req.Reason, "Reason"))
	if err := verr.OrNil(); err != nil {
		uc.logger.Warn("CancelAppointment: validation failed: %v", err)
		uc.metrics.ObserveAppointment(operation, "invalid")
		return nil, err
	}

	now := uc.timeProvider.Now()
	var result *domain.Appointment

	// 2. Чтение с блокировкой строки и запись в одной транзакции
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		appt, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("CancelAppointment: appointment id=%s not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("CancelAppointment: failed to get appointment id=%s: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %w", ErrInternal, err)
		}

		// 2.1. Пациент может отменить только свою запись
		if req.Actor.IsPatient() && !appt.IsOwnedBy(req.Actor.UserID) {
			uc.logger.Warn("CancelAppointment: patient=%s does not own id=%s", req.Actor.UserID, appt.ID)
			return ErrAccessDenied
		}

		// 2.2. Отменять можно только BOOKED и CONFIRMED
		if !appt.CanBeCancelled() {
			uc.logger.Warn("CancelAppointment: id=%s cannot be cancelled, status=%s", appt.ID, appt.Status)
			return fmt.Errorf("%w: status %s", ErrInvalidState, appt.Status)
		}

		// 2.3. Политика окна отмены (для пациентов)
		if err := uc.policy.CheckCancel(req.Actor, appt, now); err != nil {
			uc.logger.Warn("CancelAppointment: policy rejected id=%s: %v", appt.ID, err)
			if errors.Is(err, scheduling.ErrCancellationWindowClosed) {
				return fmt.Errorf("%w: %v", ErrCancellationWindowClosed, err)
			}
			return err
		}

		// 2.4. Фиксируем отмену
		if err := appt.Cancel(req.Actor, cancelReason(req), now); err != nil {
			return fmt.Errorf("%w: status %s", ErrInvalidState, appt.Status)
		}

		updated, err := uc.appointmentRepo.Update(txCtx, appt)
		if err != nil {
			uc.logger.Error("CancelAppointment: failed to update id=%s: %v", appt.ID, err)
			return fmt.Errorf("%w: failed to update appointment: %w", ErrInternal, err)
		}

		result = updated
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			uc.metrics.ObserveAppointment(operation, "error")
		} else {
			uc.metrics.ObserveAppointment(operation, "rejected")
		}
		return nil, err
	}

	uc.metrics.ObserveAppointment(operation, "ok")
	uc.logger.Info("CancelAppointment: cancelled id=%s", result.ID)

	// 3. Уведомление об отмене
	message := fmt.Sprintf("Your appointment %s has been cancelled: %s",
		result.AppointmentNumber, result.Cancellation.Reason)
	uc.notifier.Emit(ctx, domain.EventAppointmentUpdated,
		domain.NewAppointmentEvent(domain.NotificationCancelled, result, message, now))

	return result, nil
}

// cancelReason возвращает причину отмены или значение по умолчанию для типа актора
func cancelReason(req *Request) string {
	if req.Reason != nil && strings.TrimSpace(*req.Reason) != "" {
		return strings.TrimSpace(*req.Reason)
	}
	if req.Actor.IsStaff() {
		return domain.DefaultStaffCancel
	}
	return domain.DefaultPatientCancel
}
