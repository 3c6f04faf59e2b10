package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fashionstore/storefront/internal/domain"
	"github.com/fashionstore/storefront/internal/repository"
	"github.com/fashionstore/storefront/internal/service"
)

// ProductResponse represents a catalog product
type ProductResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Price    string            `json:"price"`
	IsActive bool              `json:"is_active"`
	Variants []VariantResponse `json:"variants,omitempty"`
}

// VariantResponse represents a purchasable unit
type VariantResponse struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Price    string `json:"price"`
	Stock    int    `json:"stock"`
	IsActive bool   `json:"is_active"`
}

func variantResponse(v *domain.ProductVariant) VariantResponse {
	return VariantResponse{
		ID:       v.ID.String(),
		SKU:      v.SKU,
		Size:     v.Size,
		Color:    v.Color,
		Price:    v.Price.StringFixed(2),
		Stock:    v.Stock,
		IsActive: v.IsActive,
	}
}

// HandleListProducts handles GET /v1/products
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		catalogService := service.NewCatalogService(repos, logger)
		products, err := catalogService.ListProducts(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		responses := make([]ProductResponse, len(products))
		for i, p := range products {
			responses[i] = ProductResponse{
				ID:       p.ID.String(),
				Name:     p.Name,
				Slug:     p.Slug,
				Price:    p.CurrentPrice().StringFixed(2),
				IsActive: p.IsActive,
			}
		}

		c.JSON(http.StatusOK, gin.H{"products": responses})
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		catalogService := service.NewCatalogService(repos, logger)
		product, variants, err := catalogService.GetProduct(c.Request.Context(), productID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := ProductResponse{
			ID:       product.ID.String(),
			Name:     product.Name,
			Slug:     product.Slug,
			Price:    product.CurrentPrice().StringFixed(2),
			IsActive: product.IsActive,
			Variants: make([]VariantResponse, len(variants)),
		}
		for i, v := range variants {
			resp.Variants[i] = variantResponse(v)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// HandleFindVariant handles GET /v1/products/:id/variant?size=&color=
func HandleFindVariant(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		size := c.Query("size")
		color := c.Query("color")
		if size == "" || color == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size and color are required"})
			return
		}

		catalogService := service.NewCatalogService(repos, logger)
		variant, err := catalogService.FindVariant(c.Request.Context(), productID, size, color)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, variantResponse(variant))
	}
}
