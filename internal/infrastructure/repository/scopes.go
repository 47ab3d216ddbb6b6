package repository

import (
	domainRepo "github.com/sangkips/brewpos-api/internal/domain/repository"
	"github.com/sangkips/brewpos-api/pkg/pagination"
	"gorm.io/gorm"
)

// SaleFilterScope applies the listing filters. EndDate is inclusive of the
// whole day.
func SaleFilterScope(params *domainRepo.SaleFilterParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.RequestID != "" {
			db = db.Where("request_id = ?", params.RequestID)
		}
		if params.CashierID != nil {
			db = db.Where("cashier_id = ?", *params.CashierID)
		}
		if params.PaymentMethod != "" {
			db = db.Where("payment_method = ?", params.PaymentMethod)
		}
		if params.StartDate != nil {
			db = db.Where("created_at >= ?", *params.StartDate)
		}
		if params.EndDate != nil {
			db = db.Where("created_at < ?", params.EndDate.AddDate(0, 0, 1))
		}
		return db
	}
}

// Paginate limits the query to one page; p must already be validated.
func Paginate(p *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

// withItems preloads sale lines in the order they were rung up.
func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}
