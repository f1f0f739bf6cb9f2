package services

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookit/booking-backend/internal/database"
)

func setupTokenCleanupServiceTest(t *testing.T) (*TokenCleanupService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewTokenCleanupService(
		database.NewRevokedTokenRepository(postgresDB),
		database.NewUserSessionRepository(postgresDB),
		time.Hour,
		logger,
	)

	cleanup := func() {
		db.Close()
	}

	return service, mock, cleanup
}

func TestTokenCleanupServiceRunOnce(t *testing.T) {
	svc, mock, cleanup := setupTokenCleanupServiceTest(t)
	defer cleanup()

	t.Run("Purges Both Stores", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM revoked_tokens WHERE expires_at < NOW\(\)`).
			WillReturnResult(sqlmock.NewResult(0, 4))

		mock.ExpectExec(`DELETE FROM user_sessions WHERE logged_in_at < \$1`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 2))

		svc.RunOnce()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Token Purge Failure Still Cleans Sessions", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM revoked_tokens WHERE expires_at < NOW\(\)`).
			WillReturnError(fmt.Errorf("connection refused"))

		mock.ExpectExec(`DELETE FROM user_sessions WHERE logged_in_at < \$1`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		svc.RunOnce()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenCleanupServiceLifecycle(t *testing.T) {
	svc, mock, cleanup := setupTokenCleanupServiceTest(t)
	defer cleanup()

	// The immediate sweep on Start must show up before Stop
	mock.ExpectExec(`DELETE FROM revoked_tokens WHERE expires_at < NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM user_sessions WHERE logged_in_at < \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	svc.Start()

	require.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 10*time.Millisecond)

	svc.Stop()
}
