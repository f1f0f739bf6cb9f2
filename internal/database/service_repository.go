package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

// ServiceRepository handles database operations for the service catalog
type ServiceRepository struct {
	db DB
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(db DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Create inserts a new service
func (r *ServiceRepository) Create(service *models.Service) error {
	query := `
		INSERT INTO services (id, title, description, price, duration_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}

	err := r.db.QueryRow(
		query,
		service.ID, service.Title, service.Description,
		service.Price, service.DurationMinutes, service.IsActive,
	).Scan(&service.CreatedAt, &service.UpdatedAt)

	if err != nil {
		if isConnectionFailure(err) {
			return apperrors.Unavailable("service catalog")
		}
		return fmt.Errorf("failed to create service: %w", err)
	}

	return nil
}

// GetByID retrieves a service by ID
func (r *ServiceRepository) GetByID(serviceID uuid.UUID) (*models.Service, error) {
	query := `
		SELECT id, title, description, price, duration_minutes, is_active,
			   created_at, updated_at
		FROM services
		WHERE id = $1
	`

	service := &models.Service{}
	err := r.db.QueryRow(query, serviceID).Scan(
		&service.ID, &service.Title, &service.Description,
		&service.Price, &service.DurationMinutes, &service.IsActive,
		&service.CreatedAt, &service.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Service")
		}
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("service catalog")
		}
		return nil, fmt.Errorf("failed to fetch service: %w", err)
	}

	return service, nil
}

// List retrieves services matching the filter, ordered by title
func (r *ServiceRepository) List(filter models.ServiceFilter) ([]models.Service, error) {
	query := `
		SELECT id, title, description, price, duration_minutes, is_active,
			   created_at, updated_at
		FROM services
	`

	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", argCount))
		args = append(args, "%"+filter.Query+"%")
		argCount++
	}

	if filter.PriceMin != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argCount))
		args = append(args, *filter.PriceMin)
		argCount++
	}

	if filter.PriceMax != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argCount))
		args = append(args, *filter.PriceMax)
		argCount++
	}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *filter.Active)
		argCount++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY title"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		if isConnectionFailure(err) {
			return nil, apperrors.Unavailable("service catalog")
		}
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		var service models.Service

		err := rows.Scan(
			&service.ID, &service.Title, &service.Description,
			&service.Price, &service.DurationMinutes, &service.IsActive,
			&service.CreatedAt, &service.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		services = append(services, service)
	}

	return services, rows.Err()
}

// Update persists all mutable fields of a service
func (r *ServiceRepository) Update(service *models.Service) error {
	query := `
		UPDATE services
		SET title = $2, description = $3, price = $4, duration_minutes = $5,
			is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		service.ID, service.Title, service.Description,
		service.Price, service.DurationMinutes, service.IsActive,
	).Scan(&service.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return apperrors.NotFound("Service")
		}
		if isConnectionFailure(err) {
			return apperrors.Unavailable("service catalog")
		}
		return fmt.Errorf("failed to update service: %w", err)
	}

	return nil
}

// Delete removes a service permanently
func (r *ServiceRepository) Delete(serviceID uuid.UUID) error {
	query := `DELETE FROM services WHERE id = $1`

	result, err := r.db.Exec(query, serviceID)
	if err != nil {
		if isConnectionFailure(err) {
			return apperrors.Unavailable("service catalog")
		}
		return fmt.Errorf("failed to delete service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return apperrors.NotFound("Service")
	}

	return nil
}
