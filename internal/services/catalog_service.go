package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bookit/booking-backend/internal/database"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/pkg/apperrors"
)

// CatalogService manages the catalog of bookable services
type CatalogService struct {
	serviceRepo *database.ServiceRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	serviceRepo *database.ServiceRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Create adds a new service to the catalog. New services are active
// unless the request says otherwise.
func (s *CatalogService) Create(req *models.CreateServiceRequest) (*models.Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	service := &models.Service{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := s.serviceRepo.Create(service); err != nil {
		return nil, s.wrap(err, "failed to create service")
	}

	s.logger.WithFields(logrus.Fields{
		"service_id": service.ID,
		"title":      service.Title,
	}).Info("Service created")

	return service, nil
}

// Get fetches a single service by ID
func (s *CatalogService) Get(serviceID uuid.UUID) (*models.Service, error) {
	service, err := s.serviceRepo.GetByID(serviceID)
	if err != nil {
		return nil, s.wrap(err, "failed to fetch service")
	}
	return service, nil
}

// List returns catalog entries matching the filter
func (s *CatalogService) List(filter models.ServiceFilter) ([]models.Service, error) {
	services, err := s.serviceRepo.List(filter)
	if err != nil {
		return nil, s.wrap(err, "failed to list services")
	}
	return services, nil
}

// Update applies a partial update to a service
func (s *CatalogService) Update(serviceID uuid.UUID, req *models.UpdateServiceRequest) (*models.Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	service, err := s.serviceRepo.GetByID(serviceID)
	if err != nil {
		return nil, s.wrap(err, "failed to update service")
	}

	if req.Title != nil {
		service.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.DurationMinutes != nil {
		service.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := s.serviceRepo.Update(service); err != nil {
		return nil, s.wrap(err, "failed to update service")
	}

	s.logger.WithFields(logrus.Fields{
		"service_id": service.ID,
	}).Info("Service updated")

	return service, nil
}

// Delete removes a service from the catalog. A service with pending or
// confirmed bookings cannot be deleted, deactivate it instead.
func (s *CatalogService) Delete(serviceID uuid.UUID) error {
	active, err := s.bookingRepo.CountActiveByServiceID(serviceID)
	if err != nil {
		return s.wrap(err, "failed to delete service")
	}
	if active > 0 {
		return apperrors.Conflict("service has active bookings, deactivate it instead")
	}

	if err := s.serviceRepo.Delete(serviceID); err != nil {
		return s.wrap(err, "failed to delete service")
	}

	s.logger.WithFields(logrus.Fields{
		"service_id": serviceID,
	}).Info("Service deleted")

	return nil
}

// wrap passes typed errors through untouched and hides everything else
// behind an internal error
func (s *CatalogService) wrap(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(message, err)
}
