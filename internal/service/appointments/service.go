package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис для чтения записей и смены статусов персоналом
type Service struct {
	appointmentRepo AppointmentRepository
	patientClient   PatientServiceClient
	txManager       TransactionManager
	notifier        Notifier
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	patientClient PatientServiceClient,
	txManager TransactionManager,
	notifier Notifier,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		patientClient:   patientClient,
		txManager:       txManager,
		notifier:        notifier,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// GetByID получает запись по ID.
// Пациент видит только свои записи, персонал видит любые.
// Данные пациента подтягиваются из PatientService; при его недоступности запись отдаётся без них.
func (s *Service) GetByID(ctx context.Context, id string, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%s for %s(%s)", id, actor.UserID, actor.UserType)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByID: appointment id=%s not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error for appointment id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if actor.IsPatient() && !appt.IsOwnedBy(actor.UserID) {
		s.logger.Warn("GetByID: access denied for patient=%s to appointment id=%s", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	resp := models.FromDomainAppointment(appt)

	patient, err := s.patientClient.GetPatientWithGracefulDegradation(ctx, appt.PatientID)
	if err != nil {
		// Ошибка уже залогирована клиентом
		s.logger.Warn("GetByID: returning appointment id=%s without patient data", id)
		return resp, nil
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%s", id)
	return resp.WithPatient(patient), nil
}

// ListMine получает записи пациента, отсортированные по дате.
// Upcoming оставляет только будущие BOOKED/CONFIRMED записи.
func (s *Service) ListMine(ctx context.Context, req *models.ListMyAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListMine: fetching appointments for patient=%s, status=%v, upcoming=%t",
		req.Actor.UserID, req.Status, req.Upcoming)

	if !req.Actor.IsPatient() {
		s.logger.Warn("ListMine: user=%s is not a patient", req.Actor.UserID)
		return nil, ErrAccessDenied
	}

	filter := domain.PatientAppointmentsFilter{PatientID: req.Actor.UserID}

	if req.Status != nil {
		status, err := models.ToDomainAppointmentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("ListMine: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	if req.Upcoming {
		now := s.timeProvider.Now()
		filter.UpcomingFrom = &now
	}

	list, err := s.appointmentRepo.ListByPatient(ctx, filter)
	if err != nil {
		s.logger.Error("ListMine: repository error for patient=%s: %v", req.Actor.UserID, err)
		return nil, fmt.Errorf("%w: ListMine - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListMine: successfully fetched %d appointments for patient=%s", len(list), req.Actor.UserID)
	return models.FromDomainAppointmentList(list), nil
}

// ListHospital получает записи больницы с фильтрами. Доступно только персоналу.
//
// Примеры:
// - Все активные записи: только HospitalID
// - Записи отделения на день: DepartmentID, From и To на границах дня
// - Включая отменённые и неявки: IncludeInactive = true
func (s *Service) ListHospital(ctx context.Context, req *models.ListHospitalAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("ListHospital: fetching appointments for hospital=%s, user=%s", req.HospitalID, req.Actor.UserID)
	if req.DepartmentID != nil {
		logMsg += fmt.Sprintf(", department=%s", *req.DepartmentID)
	}
	if req.DoctorID != nil {
		logMsg += fmt.Sprintf(", doctor=%s", *req.DoctorID)
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if !req.Actor.IsStaff() {
		s.logger.Warn("ListHospital: user=%s is not staff", req.Actor.UserID)
		return nil, ErrAccessDenied
	}

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListHospital: invalid filter for hospital=%s: %v", req.HospitalID, err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.ListByHospital(ctx, filter)
	if err != nil {
		s.logger.Error("ListHospital: repository error for hospital=%s: %v", req.HospitalID, err)
		return nil, fmt.Errorf("%w: ListHospital - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListHospital: successfully fetched %d appointments for hospital=%s", len(list), req.HospitalID)
	return models.FromDomainAppointmentList(list), nil
}

// Confirm подтверждает запись (BOOKED -> CONFIRMED). Доступно только персоналу.
func (s *Service) Confirm(ctx context.Context, id string, actor domain.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("Confirm: confirming appointment id=%s by user=%s", id, actor.UserID)

	return s.changeStatus(ctx, "Confirm", id, actor, func(appt *domain.Appointment) error {
		if appt.Status != domain.StatusBooked {
			return fmt.Errorf("%w: only BOOKED appointments can be confirmed, got %s", ErrInvalidState, appt.Status)
		}
		return appt.TransitionTo(domain.StatusConfirmed)
	})
}

// UpdateStatus меняет статус записи по машине состояний. Доступно только персоналу.
// CANCELLED через этот метод фиксирует отмену от имени персонала с причиной по умолчанию.
func (s *Service) UpdateStatus(ctx context.Context, id string, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%s to status=%s by user=%s", id, req.Status, req.Actor.UserID)

	target, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%s", req.Status, id)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	return s.changeStatus(ctx, "UpdateStatus", id, req.Actor, func(appt *domain.Appointment) error {
		if target == domain.StatusCancelled {
			return appt.Cancel(req.Actor, domain.DefaultStaffCancel, s.timeProvider.Now())
		}
		return appt.TransitionTo(target)
	})
}

// Вспомогательные методы

// changeStatus применяет переход к записи под блокировкой строки и отправляет уведомление
func (s *Service) changeStatus(
	ctx context.Context,
	op string,
	id string,
	actor domain.Actor,
	apply func(appt *domain.Appointment) error,
) (*models.AppointmentResponse, error) {
	if !actor.IsStaff() {
		s.logger.Warn("%s: user=%s is not staff", op, actor.UserID)
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()
	var result *domain.Appointment

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		appt, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				s.logger.Warn("%s: appointment id=%s not found", op, id)
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
		}

		from := appt.Status
		if err := apply(appt); err != nil {
			s.logger.Warn("%s: transition rejected for id=%s from %s: %v", op, id, from, err)
			if errors.Is(err, ErrInvalidState) {
				return err
			}
			return fmt.Errorf("%w: from %s: %v", ErrInvalidState, from, err)
		}

		// Отмена пишет метаданные, остальные переходы только статус
		if appt.Cancellation != nil && appt.Status == domain.StatusCancelled {
			updated, err := s.appointmentRepo.Update(txCtx, appt)
			if err != nil {
				return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
			}
			result = updated
			return nil
		}

		if err := s.appointmentRepo.UpdateStatus(txCtx, appt.ID, appt.Status); err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
		}
		appt.UpdatedAt = now
		result = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("%s: failed for appointment id=%s: %v", op, id, err)
		}
		return nil, err
	}

	s.logger.Info("%s: appointment id=%s is now %s", op, id, result.Status)

	notification := domain.NotificationStatusChanged
	message := fmt.Sprintf("Your appointment %s status is now %s", result.AppointmentNumber, result.Status)
	switch result.Status {
	case domain.StatusConfirmed:
		notification = domain.NotificationConfirmed
		message = fmt.Sprintf("Your appointment %s has been confirmed", result.AppointmentNumber)
	case domain.StatusCancelled:
		notification = domain.NotificationCancelled
		message = fmt.Sprintf("Your appointment %s has been cancelled: %s", result.AppointmentNumber, result.Cancellation.Reason)
	}
	s.notifier.Emit(ctx, domain.EventAppointmentUpdated, domain.NewAppointmentEvent(notification, result, message, now))

	return models.FromDomainAppointment(result), nil
}
