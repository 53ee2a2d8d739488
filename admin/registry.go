package admin

import (
	"context"
	"sort"
	"time"

	"portfolio/models"
	"portfolio/store"
)

// EntityAdmin describes how one entity appears in the console. Field names
// are json names.
type EntityAdmin struct {
	// Name is the URL segment, e.g. "newsitem".
	Name  string
	Label string
	// New returns a pointer to a zero value with the defaults a blank add
	// form starts from.
	New func() any

	ListDisplay  []string
	ListFilter   []string
	ListEditable []string
	ReadOnly     []string
	// Prepopulated maps a target field to the field it is derived from.
	Prepopulated map[string]string
	// ManyToMany maps a form field to its gorm association name.
	ManyToMany map[string]string

	// CanAdd, when set, decides whether the add action is offered.
	CanAdd func(ctx context.Context, s *store.Store) (bool, error)
}

func (e *EntityAdmin) isReadOnly(field string) bool { return contains(e.ReadOnly, field) }

func (e *EntityAdmin) isEditable(field string) bool { return contains(e.ListEditable, field) }

// NewSlice returns a pointer to an empty slice of the entity type.
func (e *EntityAdmin) NewSlice() any {
	return newSliceOf(e.New())
}

type Registry struct {
	entries map[string]*EntityAdmin
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*EntityAdmin{}}
}

func (r *Registry) Register(e *EntityAdmin) {
	if _, dup := r.entries[e.Name]; !dup {
		r.order = append(r.order, e.Name)
	}
	r.entries[e.Name] = e
}

func (r *Registry) Get(name string) (*EntityAdmin, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// All returns the entries sorted by label.
func (r *Registry) All() []*EntityAdmin {
	out := make([]*EntityAdmin, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

var timestamps = []string{"created_at", "updated_at"}

// DefaultRegistry registers every portfolio entity.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(&EntityAdmin{
		Name:        "profile",
		Label:       "Profiles",
		New:         func() any { return &models.Profile{} },
		ListDisplay: []string{"name", "title", "email", "updated_at"},
		ReadOnly:    timestamps,
	})

	r.Register(&EntityAdmin{
		Name:         "skill",
		Label:        "Skills",
		New:          func() any { return &models.Skill{Proficiency: models.DefaultProficiency} },
		ListDisplay:  []string{"name", "category", "proficiency", "is_featured"},
		ListFilter:   []string{"category", "is_featured"},
		ListEditable: []string{"is_featured", "proficiency"},
		ReadOnly:     timestamps,
	})

	r.Register(&EntityAdmin{
		Name:         "project",
		Label:        "Projects",
		New:          func() any { return &models.Project{IsPublished: true} },
		ListDisplay:  []string{"title", "project_type", "start_date", "is_featured", "is_published"},
		ListFilter:   []string{"project_type", "is_featured", "is_published"},
		ListEditable: []string{"is_featured", "is_published"},
		ReadOnly:     timestamps,
		Prepopulated: map[string]string{"slug": "title"},
	})

	r.Register(&EntityAdmin{
		Name:         "experience",
		Label:        "Experiences",
		New:          func() any { return &models.Experience{} },
		ListDisplay:  []string{"position", "company", "experience_type", "start_date", "is_current", "is_featured"},
		ListFilter:   []string{"experience_type", "is_current", "is_featured"},
		ListEditable: []string{"is_current", "is_featured"},
		ReadOnly:     timestamps,
	})

	r.Register(&EntityAdmin{
		Name:         "education",
		Label:        "Education",
		New:          func() any { return &models.Education{} },
		ListDisplay:  []string{"degree", "field_of_study", "institution", "start_date", "is_current", "is_featured"},
		ListFilter:   []string{"degree_type", "is_current", "is_featured"},
		ListEditable: []string{"is_current", "is_featured"},
		ReadOnly:     timestamps,
	})

	r.Register(&EntityAdmin{
		Name:         "newsitem",
		Label:        "News items",
		New:          func() any { return &models.NewsItem{IsPublished: true, PublishDate: time.Now()} },
		ListDisplay:  []string{"title", "category", "publish_date", "is_published", "is_featured"},
		ListFilter:   []string{"category", "is_published", "is_featured"},
		ListEditable: []string{"is_published", "is_featured"},
		ReadOnly:     timestamps,
		Prepopulated: map[string]string{"slug": "title"},
	})

	r.Register(&EntityAdmin{
		Name:         "certificate",
		Label:        "Certificates",
		New:          func() any { return &models.Certificate{} },
		ListDisplay:  []string{"title", "issuing_organization", "issue_date", "is_featured"},
		ListFilter:   []string{"is_featured"},
		ListEditable: []string{"is_featured"},
		ReadOnly:     timestamps,
		ManyToMany:   map[string]string{"skills": "Skills"},
	})

	r.Register(&EntityAdmin{
		Name:        "contactmessage",
		Label:       "Contact messages",
		New:         func() any { return &models.ContactMessage{Status: models.StatusNew} },
		ListDisplay: []string{"name", "email", "subject", "status", "created_at"},
		ListFilter:  []string{"status", "is_archived"},
		ReadOnly:    []string{"created_at", "updated_at", "ip_address", "user_agent"},
		// Messages only arrive through the public contact form.
		CanAdd: func(context.Context, *store.Store) (bool, error) { return false, nil },
	})

	r.Register(&EntityAdmin{
		Name:        "sitesettings",
		Label:       "Site settings",
		New:         func() any { return models.DefaultSiteSettings() },
		ListDisplay: []string{"site_name", "maintenance_mode", "updated_at"},
		ReadOnly:    timestamps,
		CanAdd: func(ctx context.Context, s *store.Store) (bool, error) {
			n, err := s.Count(ctx, &models.SiteSettings{})
			return n == 0, err
		},
	})

	return r
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
