package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/cagmc/jwtauth/internal/identity"
	"github.com/cagmc/jwtauth/internal/models"
)

func SeedUsers() []models.User {
	return []models.User{
		{
			Username: "admin@cagmc.com",
			Password: "password",
			Roles:    []models.UserRole{{Name: identity.RoleAdmin}},
		},
		{
			Username: "reader@cagmc.com",
			Password: "password",
			Claims:   []models.UserClaim{{Type: identity.ClaimRead, Value: "true"}},
		},
		{
			Username: "editor@cagmc.com",
			Password: "password",
			Claims: []models.UserClaim{
				{Type: identity.ClaimRead, Value: "true"},
				{Type: identity.ClaimWrite, Value: "true"},
			},
		},
	}
}

func strPtr(s string) *string { return &s }

func SeedMagicalObjects() []models.MagicalObject {
	return []models.MagicalObject{
		{
			Name:        "Artifact X",
			Description: strPtr("A mysterious artifact"),
			Elemental:   models.ElementalRadiation,
			Discovered:  time.Date(1978, time.June, 19, 0, 0, 0, 0, time.UTC),
			Properties:  []models.MagicalProperty{{Name: "Radiation", Value: "50"}},
		},
		{
			Name:        "Sword of Attila",
			Description: strPtr("Sword of the Hun leader"),
			Elemental:   models.ElementalFire,
			Discovered:  time.Date(452, time.July, 25, 0, 0, 0, 0, time.UTC),
			Properties:  []models.MagicalProperty{{Name: "Flame", Value: "13"}},
		},
	}
}

// Seed migrates the schema and inserts the bootstrap users and objects
// when the user table is empty.
func (r *GormRepo) Seed(ctx context.Context) error {
	if err := r.Migrate(ctx); err != nil {
		return err
	}

	n, err := r.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	return r.Transaction(ctx, func(tx *GormRepo) error {
		users := SeedUsers()
		if err := tx.DB.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		objects := SeedMagicalObjects()
		if err := tx.DB.Create(&objects).Error; err != nil {
			return fmt.Errorf("seed magical objects: %w", err)
		}
		return nil
	})
}
