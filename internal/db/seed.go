package db

import (
	"errors"
	"strings"

	"github.com/CodingDyl/virtec-crm/internal/models"
	"gorm.io/gorm"
)

var resources = []struct {
	name    string
	label   string
	actions []string
}{
	{"customer", "customers", []string{"list", "view", "create", "update"}},
	{"project", "projects", []string{"list", "view", "create", "update"}},
	{"quote", "quotes", []string{"list", "view", "create", "update", "delete"}},
	{"agreement", "agreements", []string{"view", "create", "review", "sign", "delete"}},
	{"artifact", "documents", []string{"view"}},
	{"dashboard", "dashboard", []string{"view"}},
	{"user", "users", []string{"list", "update"}},
}

// SeedProfiles names each default profile and its grants.
var SeedProfiles = []struct {
	Name        string
	Description string
	Permissions []string
}{
	{"admin", "Full system administrator", []string{"*:*"}},
	{"sales", "Manages customers, projects, quotes and agreements", []string{
		"customer:*", "project:*", "quote:*", "agreement:*", "artifact:view", "dashboard:view",
	}},
	{"viewer", "Read-only access", []string{"*:view", "*:list"}},
}

// SeedPermissions creates every resource:action pair plus the wildcards used by profiles.
func SeedPermissions(db *gorm.DB) error {
	type perm struct{ res, act, desc string }
	perms := []perm{
		{"*", "*", "Full system access"},
		{"*", "view", "View anything"},
		{"*", "list", "List anything"},
	}
	for _, r := range resources {
		perms = append(perms, perm{r.name, "*", "All actions on " + r.label})
		for _, a := range r.actions {
			perms = append(perms, perm{r.name, a, strings.ToUpper(a[:1]) + a[1:] + " " + r.label})
		}
	}
	for _, p := range perms {
		row := models.Permission{ResourceType: p.res, Action: p.act, Description: p.desc}
		if err := db.Where("resource_type = ? AND action = ?", p.res, p.act).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Seed is idempotent: permissions are created once and system profiles
// get their permission sets reset to the defaults.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := SeedPermissions(tx); err != nil {
			return err
		}
		for _, p := range SeedProfiles {
			var profile models.Profile
			err := tx.Where("name = ?", p.Name).First(&profile).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				profile = models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
				err = tx.Create(&profile).Error
			}
			if err != nil {
				return err
			}
			var perms []models.Permission
			for _, code := range p.Permissions {
				res, act, _ := strings.Cut(code, ":")
				var perm models.Permission
				if err := tx.Where("resource_type = ? AND action = ?", res, act).First(&perm).Error; err != nil {
					return err
				}
				perms = append(perms, perm)
			}
			if err := tx.Model(&profile).Association("Permissions").Replace(perms); err != nil {
				return err
			}
		}
		return nil
	})
}
