package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/response"
)

// ProductReader is the catalog lookup used after an insufficient stock error.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
}

// ProductHandler handles catalog read requests
type ProductHandler struct {
	products ProductReader
}

// NewProductHandler creates a new product handler
func NewProductHandler(products ProductReader) *ProductHandler {
	return &ProductHandler{products: products}
}

// Get returns current price, stock and active flag of a product
func (h *ProductHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" || len(id) > 64 {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved", product)
}
