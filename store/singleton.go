package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio/apperror"
	"portfolio/models"
)

// SaveProfile writes p into the single profile row. A write while the row
// exists overwrites it in place; id and created_at are kept.
func (s *Store) SaveProfile(ctx context.Context, p *models.Profile) error {
	return s.upsertSingleton(ctx, p, &p.Base)
}

// SaveSettings writes st into the single settings row.
func (s *Store) SaveSettings(ctx context.Context, st *models.SiteSettings) error {
	return s.upsertSingleton(ctx, st, &st.Base)
}

func (s *Store) upsertSingleton(ctx context.Context, m any, base *models.Base) error {
	if err := s.check(m); err != nil {
		return err
	}

	sch, err := s.Schema(m)
	if err != nil {
		return err
	}
	columns := make([]string, 0, len(sch.DBNames))
	for _, name := range sch.DBNames {
		if name != "id" && name != "created_at" {
			columns = append(columns, name)
		}
	}

	now := time.Now()
	base.ID = models.SingletonID
	base.CreatedAt = now
	base.UpdatedAt = now

	db := s.db.WithContext(ctx)
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(m).Error
	if err != nil {
		return storageErr("save "+entityName(m), err)
	}

	// Reload to pick up the stored created_at.
	if err := db.First(m, models.SingletonID).Error; err != nil {
		return storageErr("reload "+entityName(m), err)
	}
	return nil
}

// LoadProfile returns the profile row, or apperror.ErrNotFound before one
// has been written.
func (s *Store) LoadProfile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).First(&p, models.SingletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewNotFound("Profile", "1")
	}
	if err != nil {
		return nil, storageErr("load Profile", err)
	}
	return &p, nil
}

// LoadSettings returns the settings row, creating it with defaults on first
// access. Concurrent first calls converge on the same row.
func (s *Store) LoadSettings(ctx context.Context) (*models.SiteSettings, error) {
	db := s.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(models.DefaultSiteSettings()).Error
	if err != nil {
		return nil, storageErr("seed SiteSettings", err)
	}

	var st models.SiteSettings
	if err := db.First(&st, models.SingletonID).Error; err != nil {
		return nil, storageErr("load SiteSettings", err)
	}
	return &st, nil
}
