package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/CodingDyl/virtec-crm/internal/artifact"
	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/pdf"
	"github.com/CodingDyl/virtec-crm/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	PaymentMethods   = []string{"bank_transfer", "credit_card", "paypal"}
	PaymentDurations = []string{"one_time", "monthly", "milestones"}
)

const maxRequirementsLen = 5000

// AgreementService drives the letter of agreement attached to a project:
//
//	none ─generate─▶ pending ─review─▶ approved | declined
//	approved | declined ─generate─▶ pending
//	pending | approved ─upload signed─▶ signed
//	any ─delete─▶ none
type AgreementService struct {
	db       *gorm.DB
	store    artifact.Store
	renderer Renderer
	log      *zap.Logger
}

func NewAgreementService(db *gorm.DB, store artifact.Store, renderer Renderer, log *zap.Logger) *AgreementService {
	return &AgreementService{db: db, store: store, renderer: renderer, log: log}
}

type AgreementTerms struct {
	Date            time.Time `json:"date"`
	QuoteID         uint      `json:"quote_id"` // defaults to the project's quote
	PaymentMethod   string    `json:"payment_method"`
	PaymentDuration string    `json:"payment_duration"`
	Requirements    string    `json:"requirements"`
	Version         uint      `json:"version"`
	CreatedBy       *uint     `json:"-"`
}

type SignedUpload struct {
	Filename   string
	Data       []byte
	Version    uint
	UploadedBy *uint
}

// agreementChange is the project row update an operation commits.
type agreementChange struct {
	key, url string
	status   models.AgreementStatus
	at       time.Time
	// generated also stamps agreement_generated_at.
	generated bool
}

func (c agreementChange) columns() map[string]any {
	cols := map[string]any{
		"agreement_key":        c.key,
		"agreement_url":        c.url,
		"agreement_status":     c.status,
		"agreement_updated_at": c.at,
		"version":              gorm.Expr("version + 1"),
	}
	if c.generated {
		cols["agreement_generated_at"] = c.at
	}
	if c.status == models.AgreementNone {
		cols["agreement_generated_at"] = nil
		cols["agreement_updated_at"] = nil
	}
	return cols
}

// applyAgreement writes c only if the project still has the version that was read.
func applyAgreement(tx *gorm.DB, p *models.Project, c agreementChange) error {
	res := tx.Model(&models.Project{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(c.columns())
	if res.Error != nil {
		return external("update project agreement", res.Error)
	}
	if res.RowsAffected == 0 {
		return conflict("project", p.ID)
	}
	return lookup(tx.First(p, p.ID).Error, "project", p.ID)
}

func loadProject(tx *gorm.DB, id, expectedVersion uint) (*models.Project, error) {
	var p models.Project
	if err := lookup(tx.First(&p, id).Error, "project", id); err != nil {
		return nil, err
	}
	if expectedVersion != 0 && p.Version != expectedVersion {
		return nil, conflict("project", id)
	}
	return &p, nil
}

// Generate renders a letter of agreement for the project's quote and
// marks it pending. Regenerating replaces the previous document.
func (s *AgreementService) Generate(ctx context.Context, projectID uint, t AgreementTerms) (*models.Project, error) {
	t.Requirements = strings.TrimSpace(t.Requirements)
	v := validation.Violations{}
	validation.Required("payment_method", t.PaymentMethod, v)
	validation.OneOf("payment_method", t.PaymentMethod, PaymentMethods, v)
	validation.Required("payment_duration", t.PaymentDuration, v)
	validation.OneOf("payment_duration", t.PaymentDuration, PaymentDurations, v)
	validation.MaxLen("requirements", t.Requirements, maxRequirementsLen, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	if t.Date.IsZero() {
		t.Date = now()
	}

	var (
		p      *models.Project
		oldKey string
		key    string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = loadProject(tx, projectID, t.Version); err != nil {
			return err
		}
		if p.AgreementStatus == models.AgreementSigned {
			return transition("agreement", projectID, string(p.AgreementStatus), string(models.AgreementPending))
		}
		quoteID := t.QuoteID
		if quoteID == 0 && p.QuoteID != nil {
			quoteID = *p.QuoteID
		}
		if quoteID == 0 {
			return invalid("quote_id", "quote_required")
		}
		var q models.Quote
		if err := tx.Where("id = ? AND project_id = ?", quoteID, p.ID).First(&q).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("quote_id", "quote_required")
			}
			return external("load quote", err)
		}
		var c models.Customer
		if err := lookup(tx.First(&c, p.ClientID).Error, "customer", p.ClientID); err != nil {
			return err
		}

		doc, err := s.renderer.Agreement(pdf.AgreementData{
			ProjectID:       p.ID,
			Date:            t.Date,
			ClientName:      c.Name,
			CompanyName:     c.CompanyName,
			ProjectType:     p.ProjectType,
			QuoteID:         q.ID,
			QuoteTotal:      q.TotalAmount,
			Requirements:    t.Requirements,
			PaymentMethod:   t.PaymentMethod,
			PaymentDuration: t.PaymentDuration,
		})
		if err != nil {
			return external("render agreement", err)
		}
		key = artifact.NewKey(fmt.Sprintf("agreements/%d", p.ID), "pdf")
		ref, err := s.store.WithTx(tx).Put(ctx, artifact.Object{
			Key:        key,
			Name:       fmt.Sprintf("agreement-%d.pdf", p.ID),
			MimeType:   "application/pdf",
			OwnerType:  "project",
			OwnerID:    p.ID,
			UploadedBy: t.CreatedBy,
			Data:       doc,
		})
		if err != nil {
			return external("store agreement", err)
		}
		oldKey = p.AgreementKey
		return applyAgreement(tx, p, agreementChange{
			key: ref.Key, url: ref.URL, status: models.AgreementPending, at: now(), generated: true,
		})
	})
	if err != nil {
		if key != "" {
			s.store.Discard(key)
		}
		s.log.Warn("agreement not generated", zap.Uint("project_id", projectID), zap.Error(err))
		return nil, classify("generate agreement", err)
	}
	s.removeArtifact(ctx, projectID, oldKey)
	s.log.Info("agreement generated", zap.Uint("project_id", projectID), zap.String("key", p.AgreementKey))
	return p, nil
}

// Review approves or declines a pending agreement.
func (s *AgreementService) Review(ctx context.Context, projectID uint, decision models.AgreementStatus, expectedVersion uint) (*models.Project, error) {
	if decision != models.AgreementApproved && decision != models.AgreementDeclined {
		return nil, invalid("status", "invalid_choice")
	}
	var p *models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = loadProject(tx, projectID, expectedVersion); err != nil {
			return err
		}
		if p.AgreementStatus != models.AgreementPending {
			return transition("agreement", projectID, string(p.AgreementStatus), string(decision))
		}
		return applyAgreement(tx, p, agreementChange{key: p.AgreementKey, url: p.AgreementURL, status: decision, at: now()})
	})
	if err != nil {
		return nil, classify("review agreement", err)
	}
	s.log.Info("agreement reviewed", zap.Uint("project_id", projectID), zap.String("status", string(decision)))
	return p, nil
}

// UploadSigned stores the countersigned PDF in place of the generated one.
func (s *AgreementService) UploadSigned(ctx context.Context, projectID uint, up SignedUpload) (*models.Project, error) {
	if len(up.Data) == 0 {
		return nil, invalid("file", "required")
	}
	if http.DetectContentType(up.Data) != "application/pdf" {
		return nil, invalid("file", "not_pdf")
	}
	name := path.Base(strings.ReplaceAll(up.Filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = fmt.Sprintf("agreement-%d-signed.pdf", projectID)
	}

	var (
		p      *models.Project
		oldKey string
		key    string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = loadProject(tx, projectID, up.Version); err != nil {
			return err
		}
		if p.AgreementStatus != models.AgreementPending && p.AgreementStatus != models.AgreementApproved {
			return transition("agreement", projectID, string(p.AgreementStatus), string(models.AgreementSigned))
		}
		key = artifact.NewKey(fmt.Sprintf("agreements/%d/signed", p.ID), "pdf")
		ref, err := s.store.WithTx(tx).Put(ctx, artifact.Object{
			Key:        key,
			Name:       name,
			MimeType:   "application/pdf",
			OwnerType:  "project",
			OwnerID:    p.ID,
			UploadedBy: up.UploadedBy,
			Data:       up.Data,
		})
		if err != nil {
			return external("store signed agreement", err)
		}
		oldKey = p.AgreementKey
		return applyAgreement(tx, p, agreementChange{key: ref.Key, url: ref.URL, status: models.AgreementSigned, at: now()})
	})
	if err != nil {
		if key != "" {
			s.store.Discard(key)
		}
		s.log.Warn("signed agreement rejected", zap.Uint("project_id", projectID), zap.Error(err))
		return nil, classify("upload signed agreement", err)
	}
	s.removeArtifact(ctx, projectID, oldKey)
	s.log.Info("agreement signed", zap.Uint("project_id", projectID), zap.Int("bytes", len(up.Data)))
	return p, nil
}

// Delete clears the agreement from the project and removes its document.
func (s *AgreementService) Delete(ctx context.Context, projectID uint, expectedVersion uint) (*models.Project, error) {
	var (
		p      *models.Project
		oldKey string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = loadProject(tx, projectID, expectedVersion); err != nil {
			return err
		}
		if !p.HasAgreement() {
			return &NotFoundError{Resource: "agreement", ID: projectID}
		}
		oldKey = p.AgreementKey
		return applyAgreement(tx, p, agreementChange{status: models.AgreementNone})
	})
	if err != nil {
		return nil, classify("delete agreement", err)
	}
	s.removeArtifact(ctx, projectID, oldKey)
	s.log.Info("agreement deleted", zap.Uint("project_id", projectID))
	return p, nil
}

// Document returns the project's current agreement PDF.
func (s *AgreementService) Document(ctx context.Context, projectID uint) (*models.Artifact, []byte, error) {
	var p models.Project
	if err := lookup(s.db.WithContext(ctx).First(&p, projectID).Error, "project", projectID); err != nil {
		return nil, nil, err
	}
	if p.AgreementKey == "" {
		return nil, nil, &NotFoundError{Resource: "agreement", ID: projectID}
	}
	return openArtifact(ctx, s.store, p.AgreementKey, "agreement", projectID)
}

func (s *AgreementService) removeArtifact(ctx context.Context, projectID uint, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("old agreement not removed", zap.Uint("project_id", projectID), zap.String("key", key), zap.Error(err))
	}
}
