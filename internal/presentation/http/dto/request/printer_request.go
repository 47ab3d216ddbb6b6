package request

// PrintReceiptRequest is the request body for reprinting a committed sale.
type PrintReceiptRequest struct {
	SaleID     uint   `json:"sale_id" binding:"required"`
	PrinterID  string `json:"printer_id" binding:"omitempty,max=64"`
	OpenDrawer bool   `json:"open_drawer"`
}

// PrinterTargetRequest names the printer for a test page or drawer kick.
// An empty body targets the default printer.
type PrinterTargetRequest struct {
	PrinterID string `json:"printer_id" binding:"omitempty,max=64"`
}

// EmailReceiptRequest overrides the customer email captured at checkout.
type EmailReceiptRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}
