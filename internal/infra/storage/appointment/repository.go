package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const (
	table = "appointments"

	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

var columns = []string{
	"id",
	"appointment_number",
	"patient_id",
	"hospital_id",
	"department_id",
	"doctor_id",
	"date",
	"slot_start",
	"slot_end",
	"status",
	"priority",
	"reason",
	"notes",
	"cancel_reason",
	"cancelled_by_id",
	"cancelled_by_type",
	"cancelled_at",
	"created_by_id",
	"created_by_type",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей на приём
type Repository struct {
	db             DBExecutor
	conflictWindow time.Duration
}

// NewRepository создает репозиторий.
// conflictWindow задаёт ширину conflict_range: каждая запись занимает [date-w/2, date+w/2].
func NewRepository(db DBExecutor, conflictWindow time.Duration) *Repository {
	return &Repository{db: db, conflictWindow: conflictWindow}
}

// Create сохраняет новую запись.
// Пересечение conflict_range с активной записью того же отделения отклоняется базой (ErrSlotConflict).
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var cancelReason, cancelledByID, cancelledByType sql.NullString
	var cancelledAt sql.NullTime
	if c := appt.Cancellation; c != nil {
		cancelReason = sql.NullString{String: c.Reason, Valid: true}
		cancelledByID = sql.NullString{String: c.CancelledBy.UserID, Valid: true}
		cancelledByType = sql.NullString{String: string(c.CancelledBy.UserType), Valid: true}
		cancelledAt = sql.NullTime{Time: c.CancelledAt, Valid: true}
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"id",
			"appointment_number",
			"patient_id",
			"hospital_id",
			"department_id",
			"doctor_id",
			"date",
			"slot_start",
			"slot_end",
			"status",
			"priority",
			"reason",
			"notes",
			"cancel_reason",
			"cancelled_by_id",
			"cancelled_by_type",
			"cancelled_at",
			"created_by_id",
			"created_by_type",
			"conflict_range",
		).
		Values(
			appt.ID,
			appt.AppointmentNumber,
			appt.PatientID,
			appt.HospitalID,
			appt.DepartmentID,
			appt.DoctorID,
			appt.Date,
			appt.TimeSlot.Start,
			appt.TimeSlot.End,
			appt.Status,
			appt.Priority,
			appt.Reason,
			appt.Notes,
			cancelReason,
			cancelledByID,
			cancelledByType,
			cancelledAt,
			appt.CreatedBy.UserID,
			appt.CreatedBy.UserType,
			r.conflictRange(appt.Date),
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return nil, mapWriteError("Create", err)
	}

	return appt, nil
}

// GetByID получает запись по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// FindConflict ищет активную запись отделения с датой в [from, to] включительно.
// excludeID исключает саму переносимую запись. Возвращает nil, если конфликта нет.
// Внутри транзакции найденная строка блокируется (FOR UPDATE).
func (r *Repository) FindConflict(ctx context.Context, hospitalID, departmentID string, from, to time.Time, excludeID *string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"hospital_id":   hospitalID,
			"department_id": departmentID,
			"status":        statusStrings(domain.ConflictStatuses),
		}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		OrderBy("date ASC").
		Limit(1)

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindConflict - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindConflict - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// Update сохраняет изменяемые поля записи: дату, слот, статус и отмену.
// conflict_range пересчитывается вместе с датой.
func (r *Repository) Update(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(table).
		Set("date", appt.Date).
		Set("slot_start", appt.TimeSlot.Start).
		Set("slot_end", appt.TimeSlot.End).
		Set("status", appt.Status).
		Set("conflict_range", r.conflictRange(appt.Date)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": appt.ID}).
		Suffix("RETURNING updated_at")

	if c := appt.Cancellation; c != nil {
		updateBuilder = updateBuilder.
			Set("cancel_reason", c.Reason).
			Set("cancelled_by_id", c.CancelledBy.UserID).
			Set("cancelled_by_type", c.CancelledBy.UserType).
			Set("cancelled_at", c.CancelledAt)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&appt.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, mapWriteError("Update", err)
	}

	return appt, nil
}

// UpdateStatus обновляет только статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError("UpdateStatus", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// ListByPatient возвращает записи пациента по возрастанию даты
func (r *Repository) ListByPatient(ctx context.Context, filter domain.PatientAppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"patient_id": filter.PatientID}).
		OrderBy("date ASC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	// Предстоящие: с текущего момента и только активные
	if filter.UpcomingFrom != nil {
		selectBuilder = selectBuilder.
			Where(squirrel.GtOrEq{"date": *filter.UpcomingFrom}).
			Where(squirrel.Eq{"status": statusStrings(domain.ConflictStatuses)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPatient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPatient - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListByHospital возвращает записи больницы с фильтрацией.
// Без явного статуса отменённые и неявки исключаются, если не запрошен IncludeInactive.
func (r *Repository) ListByHospital(ctx context.Context, filter domain.HospitalAppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"hospital_id": filter.HospitalID}).
		OrderBy("date ASC")

	if filter.DepartmentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"department_id": *filter.DepartmentID})
	}
	if filter.DoctorID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"doctor_id": *filter.DoctorID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"date": *filter.To})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": statusStrings(domain.InactiveStatuses)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByHospital - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByHospital - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListDoctorDates возвращает даты записей врача в [from, to) с указанными статусами
func (r *Repository) ListDoctorDates(ctx context.Context, doctorID string, from, to time.Time, statuses []domain.AppointmentStatus) ([]time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("date").
		From(table).
		Where(squirrel.Eq{
			"doctor_id": doctorID,
			"status":    statusStrings(statuses),
		}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.Lt{"date": to}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDoctorDates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDoctorDates - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("%w: ListDoctorDates - scan date: %v", ErrScanRow, err)
		}
		dates = append(dates, date)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDoctorDates - rows error: %v", ErrScanRow, err)
	}

	return dates, nil
}

// ExistsForDoctorAt проверяет, есть ли у врача запись ровно на date с одним из статусов
func (r *Repository) ExistsForDoctorAt(ctx context.Context, doctorID string, date time.Time, statuses []domain.AppointmentStatus) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	subQuery, args, err := psqlbuilder.Select("1").
		From(table).
		Where(squirrel.Eq{
			"doctor_id": doctorID,
			"date":      date,
			"status":    statusStrings(statuses),
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsForDoctorAt - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	err = executor.QueryRowContext(ctx, "SELECT EXISTS ("+subQuery+")", args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: ExistsForDoctorAt - scan: %w", ErrScanRow, err)
	}

	return exists, nil
}

// conflictRange строит литерал tstzrange для столбца conflict_range
func (r *Repository) conflictRange(date time.Time) squirrel.Sqlizer {
	half := r.conflictWindow / 2
	lower := date.Add(-half).UTC().Format(time.RFC3339Nano)
	upper := date.Add(half).UTC().Format(time.RFC3339Nano)
	return squirrel.Expr("?::tstzrange", fmt.Sprintf("[%s,%s]", lower, upper))
}

// mapWriteError переводит ошибки ограничений PostgreSQL в ошибки репозитория.
// Исходная ошибка остаётся в цепочке, чтобы txmanager мог распознать сбой сериализации.
func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqExclusionViolation:
			return fmt.Errorf("%w: %s: %v", ErrSlotConflict, op, pqErr.Constraint)
		case pqUniqueViolation:
			if pqErr.Constraint == "appointments_appointment_number_key" {
				return fmt.Errorf("%w: %s", ErrDuplicateNumber, op)
			}
		}
	}
	return fmt.Errorf("%w: %s - execute: %w", ErrExecQuery, op, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var cancelReason, cancelledByID, cancelledByType sql.NullString
	var cancelledAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.AppointmentNumber,
		&appt.PatientID,
		&appt.HospitalID,
		&appt.DepartmentID,
		&appt.DoctorID,
		&appt.Date,
		&appt.TimeSlot.Start,
		&appt.TimeSlot.End,
		&appt.Status,
		&appt.Priority,
		&appt.Reason,
		&appt.Notes,
		&cancelReason,
		&cancelledByID,
		&cancelledByType,
		&cancelledAt,
		&appt.CreatedBy.UserID,
		&appt.CreatedBy.UserType,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cancelledAt.Valid {
		appt.Cancellation = &domain.Cancellation{
			Reason: cancelReason.String,
			CancelledBy: domain.Actor{
				UserID:   cancelledByID.String,
				UserType: domain.UserType(cancelledByType.String),
			},
			CancelledAt: cancelledAt.Time,
		}
	}

	return &appt, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
