package response

import "github.com/sangkips/brewpos-api/internal/domain/entity"

// SaleCommitResponse is returned by the checkout endpoint. Receipt is set
// when printing was requested; PrintWarning is set when it failed.
type SaleCommitResponse struct {
	Sale         *entity.Sale            `json:"sale"`
	Replayed     bool                    `json:"replayed"`
	Receipt      *entity.ReceiptDocument `json:"receipt,omitempty"`
	PrintWarning string                  `json:"print_warning,omitempty"`
}

// ReceiptResponse pairs a receipt with an optional delivery warning.
type ReceiptResponse struct {
	Receipt *entity.ReceiptDocument `json:"receipt"`
	Warning string                  `json:"warning,omitempty"`
}
