package services

import (
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookit/booking-backend/internal/database"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

func setupCatalogServiceTest(t *testing.T) (*CatalogService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewCatalogService(
		database.NewServiceRepository(postgresDB),
		database.NewBookingRepository(postgresDB),
		logger,
	)

	cleanup := func() {
		db.Close()
	}

	return service, mock, cleanup
}

func TestCatalogServiceCreate(t *testing.T) {
	svc, mock, cleanup := setupCatalogServiceTest(t)
	defer cleanup()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO services`).
			WithArgs(sqlmock.AnyArg(), "Deep Tissue Massage", "60 minute session", 85.00, 60, true).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		service, err := svc.Create(&models.CreateServiceRequest{
			Title:           "Deep Tissue Massage",
			Description:     "60 minute session",
			Price:           85.00,
			DurationMinutes: 60,
		})
		require.NoError(t, err)
		assert.True(t, service.IsActive)
		assert.NotEqual(t, uuid.Nil, service.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Created Inactive", func(t *testing.T) {
		now := time.Now()
		inactive := false

		mock.ExpectQuery(`INSERT INTO services`).
			WithArgs(sqlmock.AnyArg(), "Hot Stone Massage", "", 110.00, 90, false).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		service, err := svc.Create(&models.CreateServiceRequest{
			Title:           "Hot Stone Massage",
			Price:           110.00,
			DurationMinutes: 90,
			IsActive:        &inactive,
		})
		require.NoError(t, err)
		assert.False(t, service.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duration Out Of Range", func(t *testing.T) {
		_, err := svc.Create(&models.CreateServiceRequest{
			Title:           "Marathon Session",
			Price:           10.00,
			DurationMinutes: 1500,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Blank Title", func(t *testing.T) {
		_, err := svc.Create(&models.CreateServiceRequest{
			Title:           "  ",
			Price:           10.00,
			DurationMinutes: 30,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCatalogServiceUpdate(t *testing.T) {
	svc, mock, cleanup := setupCatalogServiceTest(t)
	defer cleanup()

	t.Run("Partial Update Keeps Other Fields", func(t *testing.T) {
		serviceID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnRows(serviceRow(serviceID, 60, true))

		mock.ExpectQuery(`UPDATE services SET`).
			WithArgs(serviceID, "Massage", "", 95.00, 60, true).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

		price := 95.00
		service, err := svc.Update(serviceID, &models.UpdateServiceRequest{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, 95.00, service.Price)
		assert.Equal(t, "Massage", service.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Deactivate", func(t *testing.T) {
		serviceID := uuid.New()
		inactive := false

		mock.ExpectQuery(`SELECT (.+) FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnRows(serviceRow(serviceID, 60, true))

		mock.ExpectQuery(`UPDATE services SET`).
			WithArgs(serviceID, "Massage", "", 85.00, 60, false).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

		service, err := svc.Update(serviceID, &models.UpdateServiceRequest{IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, service.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing To Update", func(t *testing.T) {
		_, err := svc.Update(uuid.New(), &models.UpdateServiceRequest{})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		serviceID := uuid.New()
		price := 95.00

		mock.ExpectQuery(`SELECT (.+) FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnError(sql.ErrNoRows)

		_, err := svc.Update(serviceID, &models.UpdateServiceRequest{Price: &price})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCatalogServiceDelete(t *testing.T) {
	svc, mock, cleanup := setupCatalogServiceTest(t)
	defer cleanup()

	t.Run("Success", func(t *testing.T) {
		serviceID := uuid.New()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE service_id`).
			WithArgs(serviceID, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectExec(`DELETE FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := svc.Delete(serviceID)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Blocked By Active Bookings", func(t *testing.T) {
		serviceID := uuid.New()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE service_id`).
			WithArgs(serviceID, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		err := svc.Delete(serviceID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
		assert.Contains(t, err.Error(), "active bookings")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		serviceID := uuid.New()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE service_id`).
			WithArgs(serviceID, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectExec(`DELETE FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := svc.Delete(serviceID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCatalogServiceList(t *testing.T) {
	svc, mock, cleanup := setupCatalogServiceTest(t)
	defer cleanup()

	t.Run("Filters Compose", func(t *testing.T) {
		now := time.Now()
		active := true
		priceMax := 100.00

		rows := sqlmock.NewRows([]string{
			"id", "title", "description", "price", "duration_minutes",
			"is_active", "created_at", "updated_at",
		}).AddRow(uuid.New(), "Swedish Massage", "", 75.00, 60, true, now, now)

		mock.ExpectQuery(`SELECT (.+) FROM services WHERE title ILIKE \$1 AND price <= \$2 AND is_active = \$3`).
			WithArgs("%massage%", 100.00, true).
			WillReturnRows(rows)

		services, err := svc.List(models.ServiceFilter{
			Query:    "massage",
			PriceMax: &priceMax,
			Active:   &active,
		})
		require.NoError(t, err)
		require.Len(t, services, 1)
		assert.Equal(t, "Swedish Massage", services[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
