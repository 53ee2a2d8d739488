package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio/apperror"
	"portfolio/logger"
	"portfolio/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return New(db, logger.NewNop())
}

// setupFileStore opens a sqlite file that several connections can write to
// at once, waiting on each other instead of failing.
func setupFileStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "store.db") + "?_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return New(db, logger.NewNop())
}

// takeSlugBeforeInsert makes the next `times` project inserts collide: just
// before each insert it commits another project holding the derived slug.
func takeSlugBeforeInsert(t *testing.T, db *gorm.DB, times int) *int {
	t.Helper()
	taken := 0
	err := db.Callback().Create().Before("gorm:begin_transaction").Register("test:take_slug", func(tx *gorm.DB) {
		p, ok := tx.Statement.Dest.(*models.Project)
		if !ok || taken >= times {
			return
		}
		taken++
		now := time.Now()
		err := db.Exec(
			"INSERT INTO projects (title, slug, description, project_type, technologies_used, start_date, sort_order, is_featured, is_published, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?)",
			"Squatter", p.Slug, "x", models.ProjectWeb, "Go", now, now, now,
		).Error
		require.NoError(t, err)
	})
	require.NoError(t, err)
	return &taken
}

func newProject(title string) *models.Project {
	return &models.Project{
		Title:            title,
		Description:      "A project",
		ProjectType:      models.ProjectWeb,
		TechnologiesUsed: "Go, SQL",
		StartDate:        time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
		IsPublished:      true,
	}
}

func TestCreate_SlugCollision(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := newProject("First")
	first.Slug = "same"
	require.NoError(t, s.Create(ctx, first))

	second := newProject("Second")
	second.Slug = "same"
	err := s.Create(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Contains(t, apperror.FieldErrors(err), "slug")

	second.Slug = "other"
	require.NoError(t, s.Create(ctx, second))

	n, err := s.Count(ctx, &models.Project{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUpdate_KeepsOwnSlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := newProject("Keep")
	p.Slug = "keep"
	require.NoError(t, s.Create(ctx, p))

	p.Description = "changed"
	require.NoError(t, s.Update(ctx, p))

	var got models.Project
	require.NoError(t, s.GetBySlug(ctx, &got, "keep"))
	assert.Equal(t, "changed", got.Description)
	assert.Equal(t, p.ID, got.ID)
}

func TestCreate_DerivesUniqueSlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a := newProject("Café Déjà Vu")
	b := newProject("Café Déjà Vu")
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	assert.Equal(t, "cafe-deja-vu", a.Slug)
	assert.Equal(t, "cafe-deja-vu-2", b.Slug)
}

func TestCreate_InvalidSlug(t *testing.T) {
	s := setupTestStore(t)
	p := newProject("Bad")
	p.Slug = "has spaces"

	err := s.Create(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, apperror.FieldErrors(err), "slug")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Go -- is   fun!  ", "go-is-fun"},
		{"Ñandú über straße", "nandu-uber-strae"},
		{"C++ & Rust", "c-rust"},
		{"___", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSaveProfile_SingleRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &models.Profile{Name: "Ada", Title: "Engineer", Bio: "bio", Email: "ada@example.com"}
	require.NoError(t, s.Create(ctx, first))
	created := first.CreatedAt

	second := &models.Profile{Name: "Grace", Title: "Admiral", Bio: "other", Email: "grace@example.com"}
	require.NoError(t, s.Create(ctx, second))

	var rows []models.Profile
	require.NoError(t, s.Find(ctx, &rows, nil))
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, "Grace", rows[0].Name)
	assert.Equal(t, "grace@example.com", rows[0].Email)
	assert.WithinDuration(t, created, rows[0].CreatedAt, time.Second)

	loaded, err := s.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Grace", loaded.Name)
}

func TestLoadProfile_Missing(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.LoadProfile(context.Background())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLoadSettings_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	b, err := s.LoadSettings(ctx)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, models.DefaultSiteName, b.SiteName)

	n, err := s.Count(ctx, &models.SiteSettings{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSaveSettings_ForcesSingleRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.LoadSettings(ctx)
	require.NoError(t, err)

	st := &models.SiteSettings{Base: models.Base{ID: 7}, SiteName: "Mine", MaintenanceMode: true}
	require.NoError(t, s.Create(ctx, st))
	assert.Equal(t, models.SingletonID, st.ID)

	loaded, err := s.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mine", loaded.SiteName)
	assert.True(t, loaded.MaintenanceMode)

	n, err := s.Count(ctx, &models.SiteSettings{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFind_SkillOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, sk := range []models.Skill{
		{Name: "Python", Category: models.SkillProgramming, Order: 1, Proficiency: 80},
		{Name: "Gin", Category: models.SkillFramework, Order: 0, Proficiency: 70},
		{Name: "Rust", Category: models.SkillProgramming, Order: 0, Proficiency: 60},
		{Name: "Go", Category: models.SkillProgramming, Order: 0, Proficiency: 90},
	} {
		sk := sk
		require.NoError(t, s.Create(ctx, &sk))
	}

	skills, err := List[models.Skill](ctx, s, nil)
	require.NoError(t, err)

	var names []string
	for _, sk := range skills {
		names = append(names, sk.Name)
	}
	assert.Equal(t, []string{"Gin", "Go", "Rust", "Python"}, names)
}

func TestFind_Filters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	hidden := newProject("Hidden")
	hidden.IsPublished = false
	require.NoError(t, s.Create(ctx, hidden))
	require.NoError(t, s.Create(ctx, newProject("Shown")))

	projects, err := Published[models.Project](ctx, s)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Shown", projects[0].Title)
}

func TestCreate_ContactMessageInvalidEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	msg := &models.ContactMessage{Name: "Bob", Email: "not-an-email", Subject: "Hi", Message: "Hello"}
	err := s.Create(ctx, msg)
	require.Error(t, err)
	assert.Equal(t, "Enter a valid email address.", apperror.FieldErrors(err)["email"])

	n, err := s.Count(ctx, &models.ContactMessage{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_ContactMessageDefaults(t *testing.T) {
	s := setupTestStore(t)
	ip := "203.0.113.9"
	msg := &models.ContactMessage{Name: "Bob", Email: "bob@example.com", Subject: "Hi", Message: "Hello", IPAddress: &ip}
	require.NoError(t, s.Create(context.Background(), msg))
	assert.Equal(t, models.StatusNew, msg.Status)
}

func TestCreate_EnumOutsideSet(t *testing.T) {
	s := setupTestStore(t)
	err := s.Create(context.Background(), &models.Skill{Name: "X", Category: "cooking"})
	require.Error(t, err)
	assert.Contains(t, apperror.FieldErrors(err)["category"], "cooking")
}

func TestUpdate_Missing(t *testing.T) {
	s := setupTestStore(t)
	p := newProject("Ghost")
	p.ID = 99
	p.Slug = "ghost"
	err := s.Update(context.Background(), p)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSetAssociationAndDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	goSkill := &models.Skill{Name: "Go", Category: models.SkillProgramming, Proficiency: 90}
	sqlSkill := &models.Skill{Name: "SQL", Category: models.SkillTool, Proficiency: 70}
	require.NoError(t, s.Create(ctx, goSkill))
	require.NoError(t, s.Create(ctx, sqlSkill))

	cert := &models.Certificate{Title: "Gopher", IssuingOrganization: "Go Team", IssueDate: time.Now()}
	require.NoError(t, s.Create(ctx, cert))
	require.NoError(t, s.SetAssociation(ctx, cert, "Skills", []uint{goSkill.ID, sqlSkill.ID}))

	var got models.Certificate
	require.NoError(t, s.Get(ctx, &got, cert.ID))
	assert.Len(t, got.Skills, 2)

	err := s.SetAssociation(ctx, cert, "Skills", []uint{goSkill.ID, 404})
	assert.Contains(t, apperror.FieldErrors(err), "skills")

	require.NoError(t, s.Delete(ctx, &models.Certificate{}, cert.ID))

	var joins int64
	require.NoError(t, s.DB().Table("certificate_skills").Count(&joins).Error)
	assert.Zero(t, joins)

	var skills []models.Skill
	require.NoError(t, s.Find(ctx, &skills, nil))
	assert.Len(t, skills, 2)

	err = s.Get(ctx, &models.Certificate{}, cert.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreate_RetriesDerivedSlugAfterCollision(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	taken := takeSlugBeforeInsert(t, s.DB(), 1)

	p := newProject("Race Car")
	require.NoError(t, s.Create(ctx, p))

	assert.Equal(t, 1, *taken)
	assert.Equal(t, "race-car-2", p.Slug)

	var squatter models.Project
	require.NoError(t, s.GetBySlug(ctx, &squatter, "race-car"))
	assert.Equal(t, "Squatter", squatter.Title)
}

func TestCreate_GivesUpAfterRepeatedSlugCollisions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	taken := takeSlugBeforeInsert(t, s.DB(), maxSlugRetries)

	err := s.Create(ctx, newProject("Race Car"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	assert.Contains(t, apperror.FieldErrors(err)["slug"], "already exists")
	assert.Equal(t, maxSlugRetries, *taken)

	n, err := s.Count(ctx, &models.Project{})
	require.NoError(t, err)
	assert.Equal(t, int64(maxSlugRetries), n)
}

func TestCreate_ConcurrentSameTitle(t *testing.T) {
	s := setupFileStore(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Create(ctx, newProject("Same Title"))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		// A writer that keeps losing the race gives up with a slug error.
		assert.Contains(t, apperror.FieldErrors(err), "slug")
	}
	require.NotZero(t, created)

	projects, err := List[models.Project](ctx, s, nil)
	require.NoError(t, err)
	require.Len(t, projects, created)
	seen := map[string]bool{}
	for _, p := range projects {
		assert.False(t, seen[p.Slug], "duplicate slug %s", p.Slug)
		seen[p.Slug] = true
	}
	assert.True(t, seen["same-title"])
}

func TestSingletons_ConcurrentFirstWrites(t *testing.T) {
	s := setupFileStore(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*workers)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.LoadSettings(ctx)
			errs <- err
		}()
		go func(i int) {
			defer wg.Done()
			errs <- s.SaveProfile(ctx, &models.Profile{
				Name:  fmt.Sprintf("Owner %d", i),
				Title: "Engineer",
				Bio:   "bio",
				Email: "owner@example.com",
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	settings, err := s.Count(ctx, &models.SiteSettings{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), settings)

	profiles, err := s.Count(ctx, &models.Profile{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), profiles)

	p, err := s.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SingletonID, p.ID)
}
