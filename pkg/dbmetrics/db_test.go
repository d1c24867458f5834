package dbmetrics

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

func TestOperation(t *testing.T) {
	assert.Equal(t, "select", operation("SELECT id FROM appointments"))
	assert.Equal(t, "insert", operation("  insert into appointments"))
	assert.Equal(t, "unknown", operation(""))
}

func TestGetExecutor_PrefersTransaction(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	tx, err := sqlDB.Begin()
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, DBExecutor(sqlDB), GetExecutor(ctx, sqlDB))
	assert.False(t, IsInTransaction(ctx))

	txCtx := WithTx(ctx, tx)
	assert.Equal(t, DBExecutor(tx), GetExecutor(txCtx, sqlDB))
	assert.True(t, IsInTransaction(txCtx))
}

func TestDB_RecordsQueryMetrics(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	db := Wrap(sqlDB, m)

	mock.ExpectExec("UPDATE appointments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM appointments").WillReturnError(assert.AnError)

	_, err = db.ExecContext(context.Background(), "UPDATE appointments SET status = $1", "CANCELLED")
	require.NoError(t, err)
	_, err = db.ExecContext(context.Background(), "DELETE FROM appointments")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("delete")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("update")))
	require.NoError(t, mock.ExpectationsWereMet())
}
