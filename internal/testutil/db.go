// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"carehub/config"
	"carehub/internal/database"
	"carehub/internal/domain"
	"carehub/internal/models"
	"carehub/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated in-memory sqlite database private to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.NewDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Facility(t *testing.T, db *gorm.DB, name string) *models.Facility {
	t.Helper()
	f := &models.Facility{Name: name}
	require.NoError(t, repository.NewFacilityRepository(db).Create(context.Background(), f))
	return f
}

// Staff creates a caregiver or admin of facilityID.
func Staff(t *testing.T, db *gorm.DB, facilityID uint, role, email string) *models.User {
	t.Helper()
	fid := facilityID
	u := &models.User{Email: email, Name: strings.Split(email, "@")[0], Role: role, FacilityID: &fid}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u
}

func Family(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: strings.Split(email, "@")[0], Role: domain.RoleFamily}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u
}

func Resident(t *testing.T, db *gorm.DB, facilityID uint, name string) *models.Resident {
	t.Helper()
	r := &models.Resident{FacilityID: facilityID, Name: name, Room: "101"}
	require.NoError(t, repository.NewResidentRepository(db).Create(context.Background(), r))
	return r
}

// CallerOf is the caller a valid token for u would produce.
func CallerOf(u *models.User) domain.Caller {
	return domain.Caller{UserID: u.ID, Role: u.Role, FacilityID: u.FacilityID}
}
