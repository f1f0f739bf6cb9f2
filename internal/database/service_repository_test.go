package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

func TestCreateService(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewServiceRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		service := &models.Service{
			Title:           "Deep Tissue Massage",
			Description:     "60 minute session",
			Price:           85.00,
			DurationMinutes: 60,
			IsActive:        true,
		}

		mock.ExpectQuery(`INSERT INTO services`).
			WithArgs(sqlmock.AnyArg(), service.Title, service.Description,
				service.Price, service.DurationMinutes, service.IsActive).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(now, now))

		err := repo.Create(service)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, service.ID)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		service := &models.Service{
			Title:           "Deep Tissue Massage",
			DurationMinutes: 60,
		}

		mock.ExpectQuery(`INSERT INTO services`).
			WithArgs(sqlmock.AnyArg(), service.Title, service.Description,
				service.Price, service.DurationMinutes, service.IsActive).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(service)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create service")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestGetServiceByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewServiceRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		serviceID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "title", "description", "price", "duration_minutes",
				"is_active", "created_at", "updated_at",
			}).AddRow(
				serviceID, "Deep Tissue Massage", "60 minute session", 85.00, 60,
				true, now, now,
			))

		service, err := repo.GetByID(serviceID)
		require.NoError(t, err)
		assert.NotNil(t, service)
		assert.Equal(t, serviceID, service.ID)
		assert.Equal(t, 60, service.DurationMinutes)
		assert.True(t, service.IsActive)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Not Found", func(t *testing.T) {
		serviceID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnError(sql.ErrNoRows)

		service, err := repo.GetByID(serviceID)
		assert.Error(t, err)
		assert.Nil(t, service)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
		assert.Contains(t, err.Error(), "Service not found")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestListServices(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewServiceRepository(mockDB)

	t.Run("No Filter", func(t *testing.T) {
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM services ORDER BY title`).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "title", "description", "price", "duration_minutes",
				"is_active", "created_at", "updated_at",
			}).
				AddRow(uuid.New(), "Haircut", "", 30.00, 30, true, now, now).
				AddRow(uuid.New(), "Massage", "", 85.00, 60, true, now, now))

		services, err := repo.List(models.ServiceFilter{})
		require.NoError(t, err)
		assert.Len(t, services, 2)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Filter By Title And Price", func(t *testing.T) {
		now := time.Now()
		priceMax := 50.00

		mock.ExpectQuery(`SELECT (.+) FROM services WHERE title ILIKE \$1 AND price <= \$2`).
			WithArgs("%cut%", priceMax).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "title", "description", "price", "duration_minutes",
				"is_active", "created_at", "updated_at",
			}).AddRow(uuid.New(), "Haircut", "", 30.00, 30, true, now, now))

		services, err := repo.List(models.ServiceFilter{Query: "cut", PriceMax: &priceMax})
		require.NoError(t, err)
		assert.Len(t, services, 1)
		assert.Equal(t, "Haircut", services[0].Title)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Filter By Active", func(t *testing.T) {
		active := true

		mock.ExpectQuery(`SELECT (.+) FROM services WHERE is_active = \$1`).
			WithArgs(active).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "title", "description", "price", "duration_minutes",
				"is_active", "created_at", "updated_at",
			}))

		services, err := repo.List(models.ServiceFilter{Active: &active})
		require.NoError(t, err)
		assert.Len(t, services, 0)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM services ORDER BY title`).
			WillReturnError(fmt.Errorf("database error"))

		services, err := repo.List(models.ServiceFilter{})
		assert.Error(t, err)
		assert.Nil(t, services)
		assert.Contains(t, err.Error(), "failed to list services")

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestUpdateService(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewServiceRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		service := &models.Service{
			ID:              uuid.New(),
			Title:           "Massage",
			Description:     "90 minute session",
			Price:           120.00,
			DurationMinutes: 90,
			IsActive:        true,
		}

		mock.ExpectQuery(`UPDATE services`).
			WithArgs(service.ID, service.Title, service.Description,
				service.Price, service.DurationMinutes, service.IsActive).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		err := repo.Update(service)
		require.NoError(t, err)
		assert.Equal(t, now, service.UpdatedAt)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Not Found", func(t *testing.T) {
		service := &models.Service{
			ID:    uuid.New(),
			Title: "Massage",
		}

		mock.ExpectQuery(`UPDATE services`).
			WithArgs(service.ID, service.Title, service.Description,
				service.Price, service.DurationMinutes, service.IsActive).
			WillReturnError(sql.ErrNoRows)

		err := repo.Update(service)
		assert.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}

func TestDeleteService(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewServiceRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		serviceID := uuid.New()

		mock.ExpectExec(`DELETE FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(serviceID)
		require.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Not Found", func(t *testing.T) {
		serviceID := uuid.New()

		mock.ExpectExec(`DELETE FROM services WHERE id`).
			WithArgs(serviceID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(serviceID)
		assert.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})
}
