package services

import (
	"context"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"gorm.io/gorm"
)

const (
	overviewMonths          = 6
	overviewRecentCustomers = 5
)

type DashboardService struct {
	db    *gorm.DB
	spend *SpendAggregator
}

func NewDashboardService(db *gorm.DB, spend *SpendAggregator) *DashboardService {
	return &DashboardService{db: db, spend: spend}
}

type Overview struct {
	TotalRevenue    float64           `json:"total_revenue"`
	AcceptedQuotes  int64             `json:"accepted_quotes"`
	PendingQuotes   int64             `json:"pending_quotes"`
	Customers       int64             `json:"customers"`
	ActiveCustomers int64             `json:"active_customers"`
	ActiveProjects  int64             `json:"active_projects"`
	MonthlyRevenue  []MonthTotal      `json:"monthly_revenue"`
	RecentCustomers []models.Customer `json:"recent_customers"`
}

// Overview gathers the headline figures for the back-office landing page.
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	db := s.db.WithContext(ctx)
	var o Overview
	counts := []struct {
		dst   *int64
		model any
		where string
		arg   any
	}{
		{&o.AcceptedQuotes, &models.Quote{}, "status = ?", models.QuoteStatusAccepted},
		{&o.PendingQuotes, &models.Quote{}, "status = ?", models.QuoteStatusPending},
		{&o.Customers, &models.Customer{}, "", nil},
		{&o.ActiveCustomers, &models.Customer{}, "active = ?", true},
		{&o.ActiveProjects, &models.Project{}, "status = ?", models.ProjectStatusActive},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.arg)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, external("dashboard counts", err)
		}
	}

	var err error
	if o.TotalRevenue, err = s.spend.Revenue(ctx); err != nil {
		return nil, err
	}
	if o.MonthlyRevenue, err = s.spend.MonthlyRevenue(ctx, overviewMonths, now()); err != nil {
		return nil, err
	}
	if err := db.Order("created_at DESC, id DESC").Limit(overviewRecentCustomers).Find(&o.RecentCustomers).Error; err != nil {
		return nil, external("recent customers", err)
	}
	ids := make([]uint, len(o.RecentCustomers))
	for i, c := range o.RecentCustomers {
		ids[i] = c.ID
	}
	totals, err := s.spend.TotalsByCustomer(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range o.RecentCustomers {
		o.RecentCustomers[i].TotalSpent = totals[o.RecentCustomers[i].ID]
	}
	return &o, nil
}
