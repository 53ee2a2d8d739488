// Package store persists portfolio entities. It owns validation, slug
// derivation, default orderings and the single-row rules of Profile and
// SiteSettings.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"portfolio/apperror"
	"portfolio/logger"
	"portfolio/models"
)

type Store struct {
	db       *gorm.DB
	validate *validator.Validate
	log      logger.Logger
}

func New(db *gorm.DB, log logger.Logger) *Store {
	return &Store{
		db:       db,
		validate: newValidator(),
		log:      log,
	}
}

// DB exposes the underlying handle for migrations and the CLI.
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn against a Store bound to one database transaction.
// Every write fn makes is rolled back when it returns an error.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, validate: s.validate, log: s.log})
	})
}

// Schema returns the parsed gorm schema of m.
func (s *Store) Schema(m any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(m); err != nil {
		return nil, fmt.Errorf("parse schema of %s: %w", entityName(m), err)
	}
	return stmt.Schema, nil
}

// Create validates and inserts m. Profile and SiteSettings are upserted into
// their single row instead.
func (s *Store) Create(ctx context.Context, m any) error {
	switch v := m.(type) {
	case *models.Profile:
		return s.SaveProfile(ctx, v)
	case *models.SiteSettings:
		return s.SaveSettings(ctx, v)
	}
	return s.save(ctx, m, true)
}

// Update validates m and overwrites every column of the row with m's id
// except created_at. Many-to-many associations are left alone; see
// SetAssociation.
func (s *Store) Update(ctx context.Context, m any) error {
	switch v := m.(type) {
	case *models.Profile:
		return s.SaveProfile(ctx, v)
	case *models.SiteSettings:
		return s.SaveSettings(ctx, v)
	}
	return s.save(ctx, m, false)
}

func (s *Store) save(ctx context.Context, m any, create bool) error {
	for attempt := 1; ; attempt++ {
		generated, err := s.prepare(ctx, m)
		if err != nil {
			return err
		}

		err = s.write(ctx, m, create)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		sl, ok := m.(models.Sluggable)
		if !ok {
			return apperror.NewConflict(entityName(m), "key", strconv.FormatUint(uint64(idOf(m)), 10))
		}
		if !generated || attempt >= maxSlugRetries {
			return slugCollision(m)
		}
		// Lost a race for the derived slug; derive again.
		s.log.Warn("slug collision, retrying",
			zap.String("entity", entityName(m)),
			zap.String("slug", sl.GetSlug()),
			zap.Int("attempt", attempt))
		sl.SetSlug("")
	}
}

// write runs in its own (nested) transaction so a duplicate key inside an
// outer Transaction only rolls back to the savepoint and save can retry.
func (s *Store) write(ctx context.Context, m any, create bool) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if create {
			if err := db.Create(m).Error; err != nil {
				return storageErr("create "+entityName(m), err)
			}
			return nil
		}

		res := db.Model(m).Select("*").Omit("created_at", clause.Associations).Updates(m)
		if res.Error != nil {
			return storageErr("update "+entityName(m), res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NewNotFound(entityName(m), strconv.FormatUint(uint64(idOf(m)), 10))
		}
		return nil
	})
}

// prepare applies defaults, derives a blank slug, validates and checks slug
// uniqueness. It reports whether the slug was derived.
func (s *Store) prepare(ctx context.Context, m any) (generated bool, err error) {
	if d, ok := m.(models.Defaulter); ok {
		d.ApplyDefaults()
	}

	db := s.db.WithContext(ctx)
	sl, sluggable := m.(models.Sluggable)
	if sluggable && strings.TrimSpace(sl.GetSlug()) == "" && strings.TrimSpace(sl.SlugSource()) != "" {
		slug, err := uniqueSlug(db, m, Slugify(sl.SlugSource()))
		if err != nil {
			return false, err
		}
		sl.SetSlug(slug)
		generated = true
	}

	if err := s.check(m); err != nil {
		return generated, err
	}

	if sluggable && !generated {
		taken, err := slugTaken(db, m, sl.GetSlug(), idOf(m))
		if err != nil {
			return false, err
		}
		if taken {
			return false, slugCollision(m)
		}
	}
	return generated, nil
}

// Get loads the row with id into dst, associations included.
func (s *Store) Get(ctx context.Context, dst any, id uint) error {
	err := s.db.WithContext(ctx).Preload(clause.Associations).First(dst, id).Error
	if err != nil {
		return lookupErr(dst, strconv.FormatUint(uint64(id), 10), err)
	}
	return nil
}

func (s *Store) GetBySlug(ctx context.Context, dst any, slug string) error {
	err := s.db.WithContext(ctx).Preload(clause.Associations).Where("slug = ?", slug).First(dst).Error
	if err != nil {
		return lookupErr(dst, slug, err)
	}
	return nil
}

// Delete removes the row with id. Many-to-many join rows go with it.
func (s *Store) Delete(ctx context.Context, m any, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(m, id).Error; err != nil {
			return lookupErr(m, strconv.FormatUint(uint64(id), 10), err)
		}
		if err := tx.Select(clause.Associations).Delete(m).Error; err != nil {
			return storageErr("delete "+entityName(m), err)
		}
		return nil
	})
}

// Find lists rows into dst (a pointer to a slice of entities) in the
// entity's default order. filters are exact-match column conditions.
func (s *Store) Find(ctx context.Context, dst any, filters map[string]any) error {
	q := s.db.WithContext(ctx).Preload(clause.Associations)
	for column, value := range filters {
		q = q.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
	if order := orderingOf(dst); order != "" {
		q = q.Order(order)
	}
	if err := q.Find(dst).Error; err != nil {
		return storageErr("list", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, m any) (int64, error) {
	return s.CountWhere(ctx, m, nil)
}

// CountWhere counts the rows of m's table matching the exact-match column
// conditions in filters.
func (s *Store) CountWhere(ctx context.Context, m any, filters map[string]any) (int64, error) {
	q := s.db.WithContext(ctx).Model(newOf(m))
	for column, value := range filters {
		q = q.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, storageErr("count "+entityName(m), err)
	}
	return n, nil
}

// SetAssociation replaces the many-to-many association name of the stored
// row m with the rows identified by ids.
func (s *Store) SetAssociation(ctx context.Context, m any, name string, ids []uint) error {
	sch, err := s.Schema(m)
	if err != nil {
		return err
	}
	rel, ok := sch.Relationships.Relations[name]
	if !ok || rel.JoinTable == nil {
		return apperror.NewInvalidInput(fmt.Sprintf("%s has no many-to-many %q", entityName(m), name), nil)
	}

	db := s.db.WithContext(ctx)
	if len(ids) == 0 {
		if err := db.Model(m).Association(name).Clear(); err != nil {
			return storageErr("clear "+name, err)
		}
		return nil
	}

	targets := reflect.New(reflect.SliceOf(rel.FieldSchema.ModelType))
	if err := db.Find(targets.Interface(), ids).Error; err != nil {
		return storageErr("load "+name, err)
	}
	if targets.Elem().Len() != len(dedupe(ids)) {
		field := name
		if f := sch.LookUpField(name); f != nil {
			field = jsonName(f)
		}
		return apperror.NewValidation(map[string]string{field: "Select a valid choice."})
	}

	if err := db.Model(m).Association(name).Replace(targets.Elem().Interface()); err != nil {
		return storageErr("replace "+name, err)
	}
	return nil
}

// List returns every T in default order, filtered by exact match.
func List[T any](ctx context.Context, s *Store, filters map[string]any) ([]T, error) {
	var out []T
	if err := s.Find(ctx, &out, filters); err != nil {
		return nil, err
	}
	return out, nil
}

// Published returns the T rows whose is_published flag is set.
func Published[T any](ctx context.Context, s *Store) ([]T, error) {
	return List[T](ctx, s, map[string]any{"is_published": true})
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func jsonName(f *schema.Field) string {
	if name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
		return name
	}
	return f.DBName
}

func slugCollision(m any) error {
	return apperror.NewValidation(map[string]string{
		"slug": fmt.Sprintf("%s with this slug already exists.", entityName(m)),
	})
}

func lookupErr(m any, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(entityName(m), id)
	}
	return storageErr("load "+entityName(m), err)
}

func storageErr(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return apperror.NewInternal(op, err)
}

// newOf returns a fresh pointer to the struct type behind m.
func newOf(m any) any {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

func idOf(m any) uint {
	if e, ok := m.(models.Entity); ok {
		return e.GetID()
	}
	return 0
}

// entityName is the Go type name of m, or of its slice element.
func entityName(m any) string {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	return t.Name()
}

func orderingOf(dst any) string {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if o, ok := reflect.New(t).Interface().(models.Ordered); ok {
		return o.Ordering()
	}
	return ""
}
