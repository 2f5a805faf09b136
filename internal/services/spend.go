package services

import (
	"context"
	"time"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"gorm.io/gorm"
)

// SpendAggregator derives revenue figures from accepted quotes. Nothing it
// computes is stored, so totals never drift from the quotes they sum.
type SpendAggregator struct {
	db *gorm.DB
}

func NewSpendAggregator(db *gorm.DB) *SpendAggregator {
	return &SpendAggregator{db: db}
}

// acceptedByCustomer joins quotes to their project so a customer's spend
// follows quote.project_id rather than the project's current quote link.
func (a *SpendAggregator) acceptedByCustomer(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Model(&models.Quote{}).
		Joins("JOIN projects ON projects.id = quotes.project_id AND projects.deleted_at IS NULL").
		Where("quotes.status = ?", models.QuoteStatusAccepted)
}

// CustomerTotalSpent sums accepted quotes across the customer's projects.
// A customer with no projects or no accepted quotes has spent 0.
func (a *SpendAggregator) CustomerTotalSpent(ctx context.Context, customerID uint) (float64, error) {
	var total float64
	err := a.acceptedByCustomer(ctx).
		Where("projects.client_id = ?", customerID).
		Select("COALESCE(SUM(quotes.total_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, external("sum customer spend", err)
	}
	return total, nil
}

// TotalsByCustomer returns spend per customer for ids. Customers without
// accepted quotes are absent from the map.
func (a *SpendAggregator) TotalsByCustomer(ctx context.Context, ids []uint) (map[uint]float64, error) {
	out := make(map[uint]float64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ClientID uint
		Total    float64
	}
	err := a.acceptedByCustomer(ctx).
		Where("projects.client_id IN ?", ids).
		Select("projects.client_id AS client_id, COALESCE(SUM(quotes.total_amount), 0) AS total").
		Group("projects.client_id").
		Scan(&rows).Error
	if err != nil {
		return nil, external("sum customer spend", err)
	}
	for _, r := range rows {
		out[r.ClientID] = r.Total
	}
	return out, nil
}

// Revenue is the sum of every accepted quote.
func (a *SpendAggregator) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := a.db.WithContext(ctx).Model(&models.Quote{}).
		Where("status = ?", models.QuoteStatusAccepted).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, external("sum revenue", err)
	}
	return total, nil
}

type MonthTotal struct {
	Month string  `json:"month"` // "2024-03"
	Total float64 `json:"total"`
}

// MonthlyRevenue buckets accepted quotes by the month they were decided,
// oldest first, covering the last months calendar months up to at.
func (a *SpendAggregator) MonthlyRevenue(ctx context.Context, months int, at time.Time) ([]MonthTotal, error) {
	if months <= 0 {
		months = 12
	}
	first := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, at.Location()).AddDate(0, -(months - 1), 0)

	var quotes []models.Quote
	err := a.db.WithContext(ctx).
		Select("id", "total_amount", "decided_at", "created_at").
		Where("status = ? AND COALESCE(decided_at, created_at) >= ?", models.QuoteStatusAccepted, first).
		Find(&quotes).Error
	if err != nil {
		return nil, external("load revenue", err)
	}

	out := make([]MonthTotal, months)
	index := make(map[string]int, months)
	for i := range out {
		m := first.AddDate(0, i, 0).Format("2006-01")
		out[i].Month = m
		index[m] = i
	}
	for _, q := range quotes {
		when := q.CreatedAt
		if q.DecidedAt != nil {
			when = *q.DecidedAt
		}
		if i, ok := index[when.In(at.Location()).Format("2006-01")]; ok {
			out[i].Total += q.TotalAmount
		}
	}
	return out, nil
}
