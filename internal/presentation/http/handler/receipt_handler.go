package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewpos-api/internal/domain/entity"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/response"
)

// ReceiptService builds and delivers receipt documents.
type ReceiptService interface {
	GetReceipt(ctx context.Context, saleID uint) (*entity.ReceiptDocument, *entity.Sale, error)
	EmailReceipt(ctx context.Context, saleID uint, to string) (*entity.ReceiptDocument, error)
}

// ReceiptHandler handles receipt preview and e-mail requests
type ReceiptHandler struct {
	receipts ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receipts ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Get returns the receipt document of a sale for on-screen display
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	doc, _, err := h.receipts.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt retrieved", response.ReceiptResponse{Receipt: doc})
}

// Email sends the receipt to the given address, or to the customer's e-mail
// captured at checkout when the body has none.
func (h *ReceiptHandler) Email(c *gin.Context) {
	id, ok := saleIDParam(c)
	if !ok {
		return
	}

	var req request.EmailReceiptRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}

	if _, err := h.receipts.EmailReceipt(c.Request.Context(), id, req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt sent", nil)
}
