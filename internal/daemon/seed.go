package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/wysehawk/casedesk/internal/config"
	"github.com/wysehawk/casedesk/internal/db/models"
	"github.com/wysehawk/casedesk/internal/uniuri"
)

// adminPermissions is the full-access permission tree the seeded
// administrator role carries.
func adminPermissions() models.PermissionTree {
	return models.PermissionTree{
		"Dashboard":    models.Leaf(models.AccessFull),
		"Cases":        models.Leaf(models.AccessFull),
		"Add Case":     models.Leaf(models.AccessFull),
		"Case Details": models.Leaf(models.AccessFull),
		"Settings": models.Subtree(models.PermissionTree{
			"DB":        models.Leaf(models.AccessFull),
			"Email":     models.Leaf(models.AccessFull),
			"Customers": models.Leaf(models.AccessFull),
			"Auth":      models.Leaf(models.AccessFull),
			"Users":     models.Leaf(models.AccessFull),
			"Roles":     models.Leaf(models.AccessFull),
		}),
	}
}

// seed ensures the protected admin role exists and that the configured
// super-administrator account has access to every known organization.
func seed(cfg *config.Config, db *gorm.DB) {
	roleName := "admin"

	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		role = models.Role{
			Name:          roleName,
			Description:   "Full access to all modules",
			Protected:     true,
			UIPermissions: adminPermissions(),
		}

		if err := db.Create(&role).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin role")
		}

		log.Info().Msg("default admin role created")
	}

	var orgs []models.Organization
	if err := db.Find(&orgs).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to list organizations for seeding")
	}

	affiliations := make(models.Affiliations, 0, len(orgs))
	for _, org := range orgs {
		affiliations = append(affiliations, models.Affiliation{
			Organization: org.Name,
			Role:         roleName,
			Enabled:      true,
		})
	}

	var admin models.User

	err := db.Where("username = ?", cfg.Auth.SuperAdmin).First(&admin).Error
	if err != nil {
		password := uniuri.New()

		admin = models.User{
			Username:         cfg.Auth.SuperAdmin,
			Password:         models.HashPassword(password),
			AuthSource:       models.AuthSourceLocal,
			DirectoryAccess:  true,
			Affiliations:     affiliations,
			DefaultRole:      roleName,
			AllOrganizations: true,
		}

		if err := db.Create(&admin).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin user")
		}

		// one-time bootstrap credential, change it after first login
		log.Warn().
			Str("user", admin.Username).
			Str("password", password).
			Msg("admin user created with generated password")

		return
	}

	// keep an existing admin affiliated with every organization
	known := make(map[string]bool, len(admin.Affiliations))
	for _, aff := range admin.Affiliations {
		known[aff.Organization] = true
	}

	changed := false

	for _, aff := range affiliations {
		if !known[aff.Organization] {
			admin.Affiliations = append(admin.Affiliations, aff)
			changed = true
		}
	}

	if !admin.DirectoryAccess || admin.DefaultRole != roleName || !admin.AllOrganizations {
		admin.DirectoryAccess = true
		admin.DefaultRole = roleName
		admin.AllOrganizations = true
		changed = true
	}

	if changed {
		if err := db.Save(&admin).Error; err != nil {
			log.Fatal().Err(err).Msg("failed to update admin user")
		}

		log.Info().Msg("admin user updated with missing organizations")
	}
}
