package services

import (
	"context"
	"strings"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewProjectService(db *gorm.DB, log *zap.Logger) *ProjectService {
	return &ProjectService{db: db, log: log}
}

var projectStatuses = []string{
	string(models.ProjectStatusActive),
	string(models.ProjectStatusCompleted),
	string(models.ProjectStatusOnHold),
}

type ProjectInput struct {
	ClientID    uint                 `json:"client_id"`
	ProjectType string               `json:"project_type"`
	Completion  int                  `json:"completion"`
	Status      models.ProjectStatus `json:"status"`
}

type ProjectPatch struct {
	ProjectType *string               `json:"project_type"`
	Completion  *int                  `json:"completion"`
	Status      *models.ProjectStatus `json:"status"`
	Version     uint                  `json:"version"`
}

type ProjectFilter struct {
	ClientID uint
	Status   models.ProjectStatus
	Page
}

func validateProject(projectType string, completion int, status models.ProjectStatus) validation.Violations {
	v := validation.Violations{}
	validation.Required("project_type", projectType, v)
	validation.MaxLen("project_type", projectType, 100, v)
	validation.RangeInt("completion", completion, 0, 100, v)
	validation.OneOf("status", string(status), projectStatuses, v)
	return v
}

// Create opens a project for an existing customer.
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*models.Project, error) {
	in.ProjectType = strings.TrimSpace(in.ProjectType)
	v := validateProject(in.ProjectType, in.Completion, in.Status)
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	var p models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := lookup(tx.First(&c, in.ClientID).Error, "customer", in.ClientID); err != nil {
			return err
		}
		p = models.Project{
			Version:     1,
			ProjectType: in.ProjectType,
			ClientID:    c.ID,
			ClientName:  c.Name,
			Completion:  in.Completion,
			Status:      models.DeriveProjectStatus(in.Completion, in.Status),
		}
		if err := tx.Create(&p).Error; err != nil {
			return external("insert project", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("create project", err)
	}
	s.log.Info("project created", zap.Uint("project_id", p.ID), zap.Uint("client_id", p.ClientID))
	return &p, nil
}

func (s *ProjectService) Get(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := lookup(s.db.WithContext(ctx).First(&p, id).Error, "project", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectService) List(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Project{})
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, external("count projects", err)
	}
	pg := f.Page.Normalize()
	var projects []models.Project
	if err := q.Order("created_at DESC, id DESC").Limit(pg.Limit).Offset(pg.Offset).Find(&projects).Error; err != nil {
		return nil, 0, external("list projects", err)
	}
	return projects, total, nil
}

// Update changes type, completion or status. The stored status is always
// re-derived from completion.
func (s *ProjectService) Update(ctx context.Context, id uint, patch ProjectPatch) (*models.Project, error) {
	var p models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lookup(tx.First(&p, id).Error, "project", id); err != nil {
			return err
		}
		if patch.Version != 0 && patch.Version != p.Version {
			return conflict("project", id)
		}
		projectType, completion, status := p.ProjectType, p.Completion, p.Status
		if patch.ProjectType != nil {
			projectType = strings.TrimSpace(*patch.ProjectType)
		}
		if patch.Completion != nil {
			completion = *patch.Completion
		}
		if patch.Status != nil {
			status = *patch.Status
		}
		if v := validateProject(projectType, completion, status); !v.Empty() {
			return &ValidationError{Violations: v}
		}
		res := tx.Model(&models.Project{}).
			Where("id = ? AND version = ?", id, p.Version).
			Updates(map[string]any{
				"project_type": projectType,
				"completion":   completion,
				"status":       models.DeriveProjectStatus(completion, status),
				"version":      gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return external("update project", res.Error)
		}
		if res.RowsAffected == 0 {
			return conflict("project", id)
		}
		return lookup(tx.First(&p, id).Error, "project", id)
	})
	if err != nil {
		return nil, classify("update project", err)
	}
	s.log.Info("project updated", zap.Uint("project_id", id), zap.String("status", string(p.Status)))
	return &p, nil
}
