package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Project struct {
	Base
	Title            string      `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Slug             string      `gorm:"size:200;not null;uniqueIndex" json:"slug" validate:"required,max=200,slug"`
	Description      string      `gorm:"type:text;not null" json:"description" validate:"required"`
	FullDescription  string      `gorm:"type:text" json:"full_description"`
	ProjectType      ProjectType `gorm:"size:20;not null;index" json:"project_type" validate:"required,oneof=web mobile desktop data ai other"`
	TechnologiesUsed string      `gorm:"type:text;not null" json:"technologies_used" validate:"required"`

	FeaturedImage string `gorm:"size:255" json:"featured_image" upload:"projects/featured/"`
	Screenshot1   string `gorm:"column:screenshot_1;size:255" json:"screenshot_1" upload:"projects/screenshots/"`
	Screenshot2   string `gorm:"column:screenshot_2;size:255" json:"screenshot_2" upload:"projects/screenshots/"`
	Screenshot3   string `gorm:"column:screenshot_3;size:255" json:"screenshot_3" upload:"projects/screenshots/"`

	LiveDemoURL      string `gorm:"size:200" json:"live_demo_url" validate:"omitempty,url,max=200"`
	GithubURL        string `gorm:"size:200" json:"github_url" validate:"omitempty,url,max=200"`
	DocumentationURL string `gorm:"size:200" json:"documentation_url" validate:"omitempty,url,max=200"`

	StartDate time.Time  `gorm:"not null" json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date"`
	IsOngoing bool       `json:"is_ongoing"`

	IsFeatured  bool `gorm:"index" json:"is_featured"`
	IsPublished bool `gorm:"index" json:"is_published"`
	Order       int  `gorm:"column:sort_order;not null" json:"order"`
}

func (p Project) String() string { return p.Title }

func (Project) Ordering() string { return "is_featured DESC, sort_order, start_date DESC" }

func (p *Project) GetSlug() string     { return p.Slug }
func (p *Project) SetSlug(slug string) { p.Slug = slug }
func (p *Project) SlugSource() string  { return p.Title }

// Duration is the year span shown on project cards. An ongoing project
// reads "Present" whatever its end date says.
func (p Project) Duration() string {
	if p.IsOngoing {
		return "Present"
	}
	if p.EndDate != nil {
		return fmt.Sprintf("%d - %d", p.StartDate.Year(), p.EndDate.Year())
	}
	return strconv.Itoa(p.StartDate.Year())
}

// Technologies splits the comma separated technologies_used field.
func (p Project) Technologies() []string {
	return splitList(p.TechnologiesUsed, ",")
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
