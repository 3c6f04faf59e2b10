package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/api/middleware"
	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
)

// CreateAddressRequest saves a shipping address
type CreateAddressRequest struct {
	Line       string `json:"line" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

// AddressResponse represents a saved address
type AddressResponse struct {
	ID         string `json:"id"`
	Line       string `json:"line"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	IsDefault  bool   `json:"is_default"`
}

func addressResponse(a *domain.Address) AddressResponse {
	return AddressResponse{
		ID:         a.ID.String(),
		Line:       a.Line,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
	}
}

// HandleListAddresses handles GET /v1/addresses
func HandleListAddresses(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		addresses, err := repos.Address.ListByUser(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		responses := make([]AddressResponse, len(addresses))
		for i, a := range addresses {
			responses[i] = addressResponse(a)
		}

		c.JSON(http.StatusOK, gin.H{"addresses": responses})
	}
}

// HandleCreateAddress handles POST /v1/addresses
func HandleCreateAddress(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CreateAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		address := &domain.Address{
			UserID:     user.ID,
			Line:       req.Line,
			City:       req.City,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
			Phone:      req.Phone,
			IsDefault:  req.IsDefault,
		}

		if err := repos.Address.Create(c.Request.Context(), address); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, addressResponse(address))
	}
}

// HandleSetDefaultAddress handles POST /v1/addresses/:id/default
func HandleSetDefaultAddress(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		addressID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address ID"})
			return
		}

		if err := repos.Address.SetDefault(c.Request.Context(), addressID, user.ID); err != nil {
			respondError(c, logger, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// HandleDeleteAddress handles DELETE /v1/addresses/:id
func HandleDeleteAddress(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		addressID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address ID"})
			return
		}

		if err := repos.Address.Delete(c.Request.Context(), addressID, user.ID); err != nil {
			respondError(c, logger, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
