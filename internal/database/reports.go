package database

import (
	"time"

	"go-taller/internal/models"

	"gorm.io/gorm"
)

// RevenueReportResult holds the numbers the dashboard and the assistant share
type RevenueReportResult struct {
	TotalCobrado float64
	PagosCount   int64
	VentasTotal  float64
	VentasCount  int64
	TicketsCount int64
}

// GetRevenueReport sums active ticket payments and completed counter sales
// within a date range
func GetRevenueReport(db *gorm.DB, start, end time.Time) (*RevenueReportResult, error) {
	var result RevenueReportResult

	// COALESCE ensures we get 0 instead of NULL when there is no data
	err := db.Model(&models.Pago{}).
		Where("estado = ? AND ticket_id IS NOT NULL AND fecha_pago BETWEEN ? AND ?", models.PagoActivo, start, end).
		Select("COALESCE(SUM(monto), 0)").
		Scan(&result.TotalCobrado).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Pago{}).
		Where("estado = ? AND ticket_id IS NOT NULL AND fecha_pago BETWEEN ? AND ?", models.PagoActivo, start, end).
		Count(&result.PagosCount).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Venta{}).
		Where("estado = ? AND fecha BETWEEN ? AND ?", models.VentaCompletada, start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&result.VentasTotal).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Venta{}).
		Where("estado = ? AND fecha BETWEEN ? AND ?", models.VentaCompletada, start, end).
		Count(&result.VentasCount).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Ticket{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&result.TicketsCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
