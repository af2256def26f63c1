package database

import (
	"errors"
	"fmt"

	"carehub/config"
	"carehub/internal/domain"
	"carehub/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

// NewDB opens the configured database. Gorm logs through log: failing
// statements at error, slow ones at warn. A missed lookup is not an error.
func NewDB(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	gormLog := zapgorm2.New(log.Named("gorm"))
	gormLog.IgnoreRecordNotFoundError = true
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLog.LogMode(logger.Warn),
		// Unique violations surface as gorm.ErrDuplicatedKey on every driver.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Facility{},
		&models.User{},
		&models.Resident{},
		&models.ResidentFamilyLink{},
		&models.Notification{},
		&models.MedicalRecord{},
		&models.Post{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the first facility and its admin account when no admin exists.
// Nothing is created unless an admin email and password are configured.
func SeedAdmin(db *gorm.DB, cfg *config.SeedConfig, log *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	var existing models.User
	err := db.Where("role = ?", domain.RoleAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		facility := &models.Facility{Name: cfg.FacilityName}
		if err := tx.Create(facility).Error; err != nil {
			return err
		}
		admin := &models.User{
			Email:        cfg.AdminEmail,
			Name:         cfg.AdminName,
			PasswordHash: string(hash),
			Role:         domain.RoleAdmin,
			FacilityID:   &facility.ID,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		log.Info("seeded facility admin",
			zap.Uint("facility_id", facility.ID),
			zap.String("email", admin.Email))
		return nil
	})
}
