package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CodingDyl/virtec-crm/internal/artifact"
	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/internal/pricing"
	"github.com/CodingDyl/virtec-crm/pdf"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteService persists priced quotes together with their PDF.
type QuoteService struct {
	db         *gorm.DB
	store      artifact.Store
	renderer   Renderer
	log        *zap.Logger
	hourlyRate float64
}

func NewQuoteService(db *gorm.DB, store artifact.Store, renderer Renderer, log *zap.Logger, hourlyRate float64) *QuoteService {
	return &QuoteService{db: db, store: store, renderer: renderer, log: log, hourlyRate: hourlyRate}
}

type CreateQuoteInput struct {
	ProjectID uint `json:"project_id"`
	pricing.Request
	CreatedBy *uint `json:"-"`
}

// QuoteFilter narrows List. Zero fields match everything.
type QuoteFilter struct {
	ClientID  uint
	ProjectID uint
	Status    models.QuoteStatus
	Page
}

// Price runs the calculator without persisting anything.
func (s *QuoteService) Price(req pricing.Request) (pricing.Breakdown, error) {
	req = req.WithDefaults(s.hourlyRate)
	if v := pricing.Validate(req); !v.Empty() {
		return pricing.Breakdown{}, &ValidationError{Violations: v}
	}
	return pricing.Itemize(req), nil
}

// Create prices the request, stores the quote and its PDF, and links the
// quote to its project. Either all of it is committed or none of it.
func (s *QuoteService) Create(ctx context.Context, in CreateQuoteInput) (*models.Quote, error) {
	req := in.Request.WithDefaults(s.hourlyRate)
	v := pricing.Validate(req)
	if in.ProjectID == 0 {
		v["project_id"] = "required"
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		quote models.Quote
		key   string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := lookup(tx.First(&project, in.ProjectID).Error, "project", in.ProjectID); err != nil {
			return err
		}
		var customer models.Customer
		if err := lookup(tx.First(&customer, project.ClientID).Error, "customer", project.ClientID); err != nil {
			return err
		}

		b := pricing.Itemize(req)
		pid := project.ID
		quote = models.Quote{
			Version:         1,
			ProjectID:       &pid,
			ClientID:        project.ClientID,
			ProjectType:     project.ProjectType,
			Complexity:      string(req.Complexity),
			Urgency:         string(req.Urgency),
			EstimatedHours:  b.EstimatedHours,
			HourlyRate:      b.HourlyRate,
			HostingCost:     b.HostingCost,
			MaintenanceCost: b.MaintenanceCost,
			Features:        req.Features,
			TotalAmount:     b.Total,
			Status:          models.QuoteStatusPending,
		}
		if err := tx.Create(&quote).Error; err != nil {
			return external("insert quote", err)
		}

		doc, err := s.renderer.Quote(quoteDocument(&quote, &customer, b))
		if err != nil {
			return external("render quote", err)
		}
		key = artifact.NewKey(fmt.Sprintf("quotes/%d", quote.ID), "pdf")
		ref, err := s.store.WithTx(tx).Put(ctx, artifact.Object{
			Key:        key,
			Name:       fmt.Sprintf("quote-%d.pdf", quote.ID),
			MimeType:   "application/pdf",
			OwnerType:  "quote",
			OwnerID:    quote.ID,
			UploadedBy: in.CreatedBy,
			Data:       doc,
		})
		if err != nil {
			return external("store quote pdf", err)
		}
		quote.PDFKey, quote.PDFURL = ref.Key, ref.URL
		if err := tx.Model(&quote).Updates(map[string]any{"pdf_key": ref.Key, "pdf_url": ref.URL}).Error; err != nil {
			return external("link quote pdf", err)
		}

		res := tx.Model(&models.Project{}).
			Where("id = ? AND version = ?", project.ID, project.Version).
			Updates(map[string]any{"quote_id": quote.ID, "version": gorm.Expr("version + 1")})
		if res.Error != nil {
			return external("link project quote", res.Error)
		}
		if res.RowsAffected == 0 {
			return conflict("project", project.ID)
		}
		return nil
	})
	if err != nil {
		if key != "" {
			s.store.Discard(key)
		}
		s.log.Warn("quote not created", zap.Uint("project_id", in.ProjectID), zap.Error(err))
		return nil, classify("create quote", err)
	}
	s.log.Info("quote created",
		zap.Uint("quote_id", quote.ID),
		zap.Uint("project_id", in.ProjectID),
		zap.Float64("total", quote.TotalAmount))
	return &quote, nil
}

func quoteDocument(q *models.Quote, c *models.Customer, b pricing.Breakdown) pdf.QuoteData {
	d := pdf.QuoteData{
		QuoteID:              q.ID,
		Date:                 q.CreatedAt,
		ClientName:           c.Name,
		ClientEmail:          c.Email,
		CompanyName:          c.CompanyName,
		ProjectType:          q.ProjectType,
		Complexity:           q.Complexity,
		Urgency:              q.Urgency,
		EstimatedHours:       b.EstimatedHours,
		HourlyRate:           b.HourlyRate,
		ComplexityMultiplier: b.ComplexityMultiplier,
		UrgencyMultiplier:    b.UrgencyMultiplier,
		HostingCost:          b.HostingCost,
		MaintenanceCost:      b.MaintenanceCost,
		Total:                b.Total,
	}
	if d.Date.IsZero() {
		d.Date = now()
	}
	for _, name := range q.Features {
		if f, ok := pricing.LookupFeature(name); ok {
			d.Features = append(d.Features, pdf.Feature{Name: f.Name, Description: f.Description})
		}
	}
	return d
}

func (s *QuoteService) Get(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	if err := lookup(s.db.WithContext(ctx).First(&q, id).Error, "quote", id); err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns the newest quotes first along with the unpaged count.
func (s *QuoteService) List(ctx context.Context, f QuoteFilter) ([]models.Quote, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Quote{})
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, external("count quotes", err)
	}
	p := f.Page.Normalize()
	var quotes []models.Quote
	if err := q.Order("created_at DESC, id DESC").Limit(p.Limit).Offset(p.Offset).Find(&quotes).Error; err != nil {
		return nil, 0, external("list quotes", err)
	}
	return quotes, total, nil
}

// UpdateStatus moves a pending quote to accepted or rejected. A non-zero
// expectedVersion must match the stored version.
func (s *QuoteService) UpdateStatus(ctx context.Context, id uint, next models.QuoteStatus, expectedVersion uint) (*models.Quote, error) {
	next = models.QuoteStatus(strings.ToLower(strings.TrimSpace(string(next))))
	if !next.Valid() {
		return nil, invalid("status", "invalid_choice")
	}
	var q models.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lookup(tx.First(&q, id).Error, "quote", id); err != nil {
			return err
		}
		if expectedVersion != 0 && q.Version != expectedVersion {
			return conflict("quote", id)
		}
		if !q.Status.CanTransitionTo(next) {
			return transition("quote", id, string(q.Status), string(next))
		}
		decided := now()
		res := tx.Model(&models.Quote{}).
			Where("id = ? AND version = ?", id, q.Version).
			Updates(map[string]any{"status": next, "decided_at": decided, "version": gorm.Expr("version + 1")})
		if res.Error != nil {
			return external("update quote status", res.Error)
		}
		if res.RowsAffected == 0 {
			return conflict("quote", id)
		}
		return lookup(tx.First(&q, id).Error, "quote", id)
	})
	if err != nil {
		return nil, classify("update quote status", err)
	}
	s.log.Info("quote status changed", zap.Uint("quote_id", id), zap.String("status", string(q.Status)))
	return &q, nil
}

// Delete soft-deletes the quote and clears every project reference to it.
// The PDF is removed once the deletion is committed.
func (s *QuoteService) Delete(ctx context.Context, id uint) error {
	var q models.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lookup(tx.First(&q, id).Error, "quote", id); err != nil {
			return err
		}
		if err := tx.Delete(&q).Error; err != nil {
			return external("delete quote", err)
		}
		err := tx.Model(&models.Project{}).
			Where("quote_id = ?", id).
			Updates(map[string]any{"quote_id": nil, "version": gorm.Expr("version + 1")}).Error
		if err != nil {
			return external("unlink project quote", err)
		}
		return nil
	})
	if err != nil {
		return classify("delete quote", err)
	}
	if q.PDFKey != "" {
		if err := s.store.Delete(ctx, q.PDFKey); err != nil {
			s.log.Warn("quote pdf not removed", zap.Uint("quote_id", id), zap.String("key", q.PDFKey), zap.Error(err))
		}
	}
	s.log.Info("quote deleted", zap.Uint("quote_id", id))
	return nil
}

// PDF returns the stored document for a quote.
func (s *QuoteService) PDF(ctx context.Context, id uint) (*models.Artifact, []byte, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if q.PDFKey == "" {
		return nil, nil, &NotFoundError{Resource: "quote pdf", ID: id}
	}
	return openArtifact(ctx, s.store, q.PDFKey, "quote pdf", id)
}

func openArtifact(ctx context.Context, store artifact.Store, key, resource string, id uint) (*models.Artifact, []byte, error) {
	meta, data, err := store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, nil, &NotFoundError{Resource: resource, ID: id}
		}
		return nil, nil, external("open "+resource, err)
	}
	return meta, data, nil
}
