package services

import (
	"context"
	"errors"
	"strings"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProfileInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"` // "resource:action" codes
}

// resolvePermissions maps codes to stored permissions. Unknown codes are a
// validation failure.
func resolvePermissions(tx *gorm.DB, codes []string) ([]models.Permission, error) {
	perms := make([]models.Permission, 0, len(codes))
	for _, code := range codes {
		res, act, ok := strings.Cut(strings.TrimSpace(code), ":")
		if !ok {
			return nil, invalid("permissions", "invalid_choice")
		}
		var p models.Permission
		err := tx.Where("resource_type = ? AND action = ?", res, act).First(&p).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, invalid("permissions", "invalid_choice")
			}
			return nil, external("load permission", err)
		}
		perms = append(perms, p)
	}
	return perms, nil
}

// CreateProfile adds a custom profile.
func (s *UserService) CreateProfile(ctx context.Context, in ProfileInput) (*models.Profile, error) {
	in.Name = strings.ToLower(strings.TrimSpace(in.Name))
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 100, v)
	validation.MaxLen("description", in.Description, 500, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	var p models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Profile{}).Where("name = ?", in.Name).Count(&n).Error; err != nil {
			return external("check profile name", err)
		}
		if n > 0 {
			return invalid("name", "invalid_choice")
		}
		perms, err := resolvePermissions(tx, in.Permissions)
		if err != nil {
			return err
		}
		p = models.Profile{Name: in.Name, Description: in.Description, Permissions: perms}
		if err := tx.Create(&p).Error; err != nil {
			return external("insert profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("create profile", err)
	}
	s.log.Info("profile created", zap.String("name", p.Name))
	return &p, nil
}

// SetProfilePermissions replaces a custom profile's grants. System
// profiles are reset by seeding and cannot be edited.
func (s *UserService) SetProfilePermissions(ctx context.Context, profileID uint, codes []string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lookup(tx.First(&p, profileID).Error, "profile", profileID); err != nil {
			return err
		}
		if p.IsSystem {
			return invalid("profile", "invalid_choice")
		}
		perms, err := resolvePermissions(tx, codes)
		if err != nil {
			return err
		}
		if err := tx.Model(&p).Association("Permissions").Replace(perms); err != nil {
			return external("replace permissions", err)
		}
		return lookup(tx.Preload("Permissions").First(&p, profileID).Error, "profile", profileID)
	})
	if err != nil {
		return nil, classify("set profile permissions", err)
	}
	s.log.Info("profile permissions replaced", zap.Uint("profile_id", profileID), zap.Int("count", len(p.Permissions)))
	return &p, nil
}

func (s *UserService) Permissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := s.db.WithContext(ctx).Order("resource_type, action").Find(&perms).Error; err != nil {
		return nil, external("list permissions", err)
	}
	return perms, nil
}
