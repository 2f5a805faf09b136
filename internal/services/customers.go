package services

import (
	"context"
	"strings"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CustomerService struct {
	db    *gorm.DB
	spend *SpendAggregator
	log   *zap.Logger
}

func NewCustomerService(db *gorm.DB, spend *SpendAggregator, log *zap.Logger) *CustomerService {
	return &CustomerService{db: db, spend: spend, log: log}
}

type CustomerInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CompanyName   string `json:"company_name"`
	ContactNumber string `json:"contact_number"`
	Maintenance   bool   `json:"maintenance"`
}

func (in *CustomerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
}

func validateCustomer(name, email, company, contact string) validation.Violations {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.MaxLen("name", name, 255, v)
	validation.Email("email", email, v)
	validation.MaxLen("company_name", company, 255, v)
	validation.MaxLen("contact_number", contact, 50, v)
	return v
}

// CustomerPatch updates only the non-nil fields. Version, when set, must
// match the stored version.
type CustomerPatch struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	CompanyName   *string `json:"company_name"`
	ContactNumber *string `json:"contact_number"`
	Maintenance   *bool   `json:"maintenance"`
	Active        *bool   `json:"active"`
	Version       uint    `json:"version"`
}

type CustomerFilter struct {
	// Query matches name, email or company name.
	Query  string
	Active *bool
	Page
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if v := validateCustomer(in.Name, in.Email, in.CompanyName, in.ContactNumber); !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	c := models.Customer{
		Version:       1,
		Name:          in.Name,
		Email:         in.Email,
		CompanyName:   in.CompanyName,
		ContactNumber: in.ContactNumber,
		Maintenance:   in.Maintenance,
		Active:        true,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, external("insert customer", err)
	}
	s.log.Info("customer created", zap.Uint("customer_id", c.ID))
	return &c, nil
}

// Get loads a customer with its derived TotalSpent.
func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := lookup(s.db.WithContext(ctx).First(&c, id).Error, "customer", id); err != nil {
		return nil, err
	}
	total, err := s.spend.CustomerTotalSpent(ctx, id)
	if err != nil {
		return nil, err
	}
	c.TotalSpent = total
	return &c, nil
}

func (s *CustomerService) List(ctx context.Context, f CustomerFilter) ([]models.Customer, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company_name) LIKE ?", like, like, like)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, external("count customers", err)
	}
	p := f.Page.Normalize()
	var customers []models.Customer
	if err := q.Order("name ASC, id ASC").Limit(p.Limit).Offset(p.Offset).Find(&customers).Error; err != nil {
		return nil, 0, external("list customers", err)
	}

	ids := make([]uint, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	totals, err := s.spend.TotalsByCustomer(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range customers {
		customers[i].TotalSpent = totals[customers[i].ID]
	}
	return customers, total, nil
}

// Update applies p. A rename is copied to the display name on the
// customer's projects in the same transaction.
func (s *CustomerService) Update(ctx context.Context, id uint, p CustomerPatch) (*models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lookup(tx.First(&c, id).Error, "customer", id); err != nil {
			return err
		}
		if p.Version != 0 && p.Version != c.Version {
			return conflict("customer", id)
		}
		in := CustomerInput{Name: c.Name, Email: c.Email, CompanyName: c.CompanyName, ContactNumber: c.ContactNumber, Maintenance: c.Maintenance}
		if p.Name != nil {
			in.Name = *p.Name
		}
		if p.Email != nil {
			in.Email = *p.Email
		}
		if p.CompanyName != nil {
			in.CompanyName = *p.CompanyName
		}
		if p.ContactNumber != nil {
			in.ContactNumber = *p.ContactNumber
		}
		if p.Maintenance != nil {
			in.Maintenance = *p.Maintenance
		}
		in.normalize()
		if v := validateCustomer(in.Name, in.Email, in.CompanyName, in.ContactNumber); !v.Empty() {
			return &ValidationError{Violations: v}
		}
		active := c.Active
		if p.Active != nil {
			active = *p.Active
		}

		res := tx.Model(&models.Customer{}).
			Where("id = ? AND version = ?", id, c.Version).
			Updates(map[string]any{
				"name":           in.Name,
				"email":          in.Email,
				"company_name":   in.CompanyName,
				"contact_number": in.ContactNumber,
				"maintenance":    in.Maintenance,
				"active":         active,
				"version":        gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return external("update customer", res.Error)
		}
		if res.RowsAffected == 0 {
			return conflict("customer", id)
		}
		if in.Name != c.Name {
			if err := tx.Model(&models.Project{}).Where("client_id = ?", id).Update("client_name", in.Name).Error; err != nil {
				return external("rename customer projects", err)
			}
		}
		return lookup(tx.First(&c, id).Error, "customer", id)
	})
	if err != nil {
		return nil, classify("update customer", err)
	}
	total, err := s.spend.CustomerTotalSpent(ctx, id)
	if err != nil {
		return nil, err
	}
	c.TotalSpent = total
	s.log.Info("customer updated", zap.Uint("customer_id", id))
	return &c, nil
}

// SetActive toggles whether the customer is offered for new work.
func (s *CustomerService) SetActive(ctx context.Context, id uint, active bool) (*models.Customer, error) {
	return s.Update(ctx, id, CustomerPatch{Active: &active})
}
