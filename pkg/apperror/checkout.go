package apperror

import (
	"fmt"
	"net/http"
)

// InsufficientStockError is returned by the advisory stock check, before any write.
type InsufficientStockError struct {
	ProductID string `json:"product_id"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: required %d, available %d", e.ProductID, e.Required, e.Available)
}

func (e *InsufficientStockError) AppError() *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInsufficientStock,
		Message: e.Error(),
		Details: e,
	}
}

// StockRaceLostError means the conditional decrement matched no row: another
// checkout took the stock between the advisory check and the write.
type StockRaceLostError struct {
	ProductID string `json:"product_id"`
}

func (e *StockRaceLostError) Error() string {
	return fmt.Sprintf("stock for product %s was taken by a concurrent sale", e.ProductID)
}

func (e *StockRaceLostError) AppError() *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindStockRaceLost,
		Message: e.Error(),
		Details: e,
	}
}

// PersistenceError wraps a storage failure during commit. Nothing was written
// unless Ambiguous is set, in which case the caller must re-check by request id.
type PersistenceError struct {
	Op        string
	Ambiguous bool
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("%s: outcome unknown: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) AppError() *AppError {
	if e.Ambiguous {
		return &AppError{
			Code:    http.StatusGatewayTimeout,
			Kind:    KindPersistence,
			Message: "Sale outcome unknown; look it up by request id before retrying",
		}
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindPersistence,
		Message: "Failed to record sale",
	}
}

// EncodingError is returned when a receipt document cannot be rendered.
type EncodingError struct {
	Reason string
}

func (e *EncodingError) Error() string {
	return "receipt encoding failed: " + e.Reason
}

func (e *EncodingError) AppError() *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindEncoding,
		Message: e.Error(),
	}
}

// TransportError is returned when bytes could not be delivered to a printer.
// The sale it belongs to is unaffected.
type TransportError struct {
	PrinterID string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("printer %q: %v", e.PrinterID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) AppError() *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindTransport,
		Message: e.Error(),
	}
}
