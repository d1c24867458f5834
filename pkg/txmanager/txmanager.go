package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const (
	// DefaultMaxAttempts bounds retries of serializable transactions.
	DefaultMaxAttempts = 3
	defaultBackoff     = 20 * time.Millisecond

	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

var (
	ErrBeginTx  = errors.New("txmanager: failed to begin transaction")
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// TxBeginner starts transactions. Implemented by *dbmetrics.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager runs functions inside a transaction stored in the context.
type TransactionManager struct {
	db          TxBeginner
	metrics     *metrics.Metrics
	maxAttempts int
	backoff     time.Duration
}

func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{
		db:          db,
		maxAttempts: DefaultMaxAttempts,
		backoff:     defaultBackoff,
	}
}

// WithMetrics counts serializable retries.
func (m *TransactionManager) WithMetrics(mc *metrics.Metrics) *TransactionManager {
	m.metrics = mc
	return m
}

// WithRetry overrides the attempt limit and the linear backoff step.
func (m *TransactionManager) WithRetry(maxAttempts int, backoff time.Duration) *TransactionManager {
	if maxAttempts > 0 {
		m.maxAttempts = maxAttempts
	}
	m.backoff = backoff
	return m
}

// Do runs fn in a READ COMMITTED transaction.
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoReadOnly runs fn in a read-only transaction.
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

// DoSerializable runs fn in a SERIALIZABLE transaction.
// Serialization failures and deadlocks restart fn from scratch, so fn must not have side effects
// outside the transaction.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	var err error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil || !IsSerializationFailure(err) {
			return err
		}

		if m.metrics != nil {
			m.metrics.DBTxRetries.WithLabelValues("serializable").Inc()
		}
		if attempt == m.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.backoff * time.Duration(attempt)):
		}
	}

	return err
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}

	return nil
}

// IsSerializationFailure reports whether err is a retryable PostgreSQL concurrency error.
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
	}
	return false
}
