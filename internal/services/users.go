package services

import (
	"context"
	"errors"
	"strings"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"github.com/CodingDyl/virtec-crm/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type UserService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{db: db, log: log}
}

type NewUser struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	// Profile is a profile name such as "sales". Empty leaves the user without permissions.
	Profile string `json:"profile"`
}

// Create stores a staff account with a bcrypt password hash.
func (s *UserService) Create(ctx context.Context, in NewUser) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if _, ok := v["password"]; !ok && len(in.Password) < minPasswordLen {
		v["password"] = "out_of_range"
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := models.User{Email: in.Email, Name: in.Name, Password: string(hash)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&n).Error; err != nil {
			return external("check email", err)
		}
		if n > 0 {
			return invalid("email", "invalid_choice")
		}
		if in.Profile != "" {
			var p models.Profile
			if err := tx.Where("name = ?", in.Profile).First(&p).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid("profile", "invalid_choice")
				}
				return external("load profile", err)
			}
			u.ProfileID = &p.ID
		}
		if err := tx.Create(&u).Error; err != nil {
			return external("insert user", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("create user", err)
	}
	s.log.Info("user created", zap.Uint("user_id", u.ID), zap.String("profile", in.Profile))
	return &u, nil
}

// Authenticate checks credentials and stamps the last login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, external("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	t := now()
	if err := s.db.WithContext(ctx).Model(&u).Update("last_login_at", t).Error; err != nil {
		s.log.Warn("last login not recorded", zap.Uint("user_id", u.ID), zap.Error(err))
	}
	u.LastLoginAt = &t
	return &u, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := lookup(s.db.WithContext(ctx).Preload("Profile").First(&u, id).Error, "user", id); err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists backs the session verifier.
func (s *UserService) Exists(ctx context.Context, id uint) bool {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		s.log.Warn("session user check failed", zap.Uint("user_id", id), zap.Error(err))
		return false
	}
	return n > 0
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Profile").Order("email").Find(&users).Error; err != nil {
		return nil, external("list users", err)
	}
	return users, nil
}

func (s *UserService) Profiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		return nil, external("list profiles", err)
	}
	return profiles, nil
}

// AssignProfile sets or, with nil, clears the user's profile.
func (s *UserService) AssignProfile(ctx context.Context, userID uint, profileID *uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lookup(tx.First(&u, userID).Error, "user", userID); err != nil {
			return err
		}
		if profileID != nil {
			var p models.Profile
			if err := lookup(tx.First(&p, *profileID).Error, "profile", *profileID); err != nil {
				return err
			}
		}
		if err := tx.Model(&u).Update("profile_id", profileID).Error; err != nil {
			return external("assign profile", err)
		}
		return lookup(tx.Preload("Profile").First(&u, userID).Error, "user", userID)
	})
	if err != nil {
		return nil, classify("assign profile", err)
	}
	s.log.Info("profile assigned", zap.Uint("user_id", userID))
	return &u, nil
}
