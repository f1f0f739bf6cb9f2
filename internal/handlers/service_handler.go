package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/internal/services"
)

// ServiceHandler handles service catalog operations
type ServiceHandler struct {
	catalogService *services.CatalogService
	reviewService  *services.ReviewService
}

// NewServiceHandler creates a new ServiceHandler
func NewServiceHandler(catalogService *services.CatalogService, reviewService *services.ReviewService) *ServiceHandler {
	return &ServiceHandler{
		catalogService: catalogService,
		reviewService:  reviewService,
	}
}

// List returns catalog entries matching the query parameters
// @Summary List services
// @Description List catalog services, optionally filtered by title, price, and active flag
// @Tags Services
// @Produce json
// @Param q query string false "Title search (case-insensitive substring)"
// @Param price_min query number false "Minimum price"
// @Param price_max query number false "Maximum price"
// @Param active query boolean false "Filter by active flag"
// @Success 200 {object} map[string]interface{} "Matching services"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid filter"
// @Router /api/v1/services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	filter := models.ServiceFilter{Query: c.Query("q")}

	if raw := c.Query("price_min"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price_min value"})
			return
		}
		filter.PriceMin = &value
	}

	if raw := c.Query("price_max"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price_max value"})
			return
		}
		filter.PriceMax = &value
	}

	if raw := c.Query("active"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid active value"})
			return
		}
		filter.Active = &value
	}

	list, err := h.catalogService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": list})
}

// Get returns a single service
// @Summary Get a service
// @Tags Services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} models.Service "Service"
// @Failure 404 {object} apperrors.ErrorResponse "Service not found"
// @Router /api/v1/services/{id} [get]
func (h *ServiceHandler) Get(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	service, err := h.catalogService.Get(serviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

// ListReviews returns all reviews left on a service's bookings
// @Summary List a service's reviews
// @Tags Services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} map[string]interface{} "Reviews"
// @Router /api/v1/services/{id}/reviews [get]
func (h *ServiceHandler) ListReviews(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	reviews, err := h.reviewService.ListByService(serviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Create adds a service to the catalog
// @Summary Create a service
// @Description Add a new bookable service (admin only)
// @Tags Services
// @Accept json
// @Produce json
// @Param request body models.CreateServiceRequest true "Service definition"
// @Success 201 {object} models.Service "Service created"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 403 {object} apperrors.ErrorResponse "Admin only"
// @Security BearerAuth
// @Router /api/v1/services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	service, err := h.catalogService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service)
}

// Update applies a partial update to a service
// @Summary Update a service
// @Description Update catalog fields of a service (admin only)
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body models.UpdateServiceRequest true "Fields to update"
// @Success 200 {object} models.Service "Updated service"
// @Failure 400 {object} apperrors.ErrorResponse "Invalid request"
// @Failure 404 {object} apperrors.ErrorResponse "Service not found"
// @Security BearerAuth
// @Router /api/v1/services/{id} [patch]
func (h *ServiceHandler) Update(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	var req models.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	service, err := h.catalogService.Update(serviceID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

// Delete removes a service from the catalog
// @Summary Delete a service
// @Description Delete a service with no active bookings (admin only)
// @Tags Services
// @Param id path string true "Service ID"
// @Success 204 "Service deleted"
// @Failure 404 {object} apperrors.ErrorResponse "Service not found"
// @Failure 409 {object} apperrors.ErrorResponse "Service has active bookings"
// @Security BearerAuth
// @Router /api/v1/services/{id} [delete]
func (h *ServiceHandler) Delete(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	if err := h.catalogService.Delete(serviceID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
