package models

import "time"

type NewsItem struct {
	Base
	Title    string       `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Slug     string       `gorm:"size:200;not null;uniqueIndex" json:"slug" validate:"required,max=200,slug"`
	Content  string       `gorm:"type:text;not null" json:"content" validate:"required"`
	Excerpt  string       `gorm:"type:text;not null" json:"excerpt" validate:"required,max=300"`
	Category NewsCategory `gorm:"size:20;not null;index" json:"category" validate:"required,oneof=achievement project article event award general"`

	FeaturedImage string `gorm:"size:255" json:"featured_image" upload:"news/"`
	ExternalLink  string `gorm:"size:200" json:"external_link" validate:"omitempty,url,max=200"`

	PublishDate time.Time `gorm:"not null;index" json:"publish_date" admin:"datetime" validate:"required"`
	IsPublished bool      `gorm:"index" json:"is_published"`
	IsFeatured  bool      `gorm:"index" json:"is_featured"`

	Tags string `gorm:"size:200" json:"tags" validate:"max=200"`
}

func (n NewsItem) String() string { return n.Title }

func (NewsItem) Ordering() string { return "publish_date DESC, created_at DESC" }

func (n *NewsItem) GetSlug() string     { return n.Slug }
func (n *NewsItem) SetSlug(slug string) { n.Slug = slug }
func (n *NewsItem) SlugSource() string  { return n.Title }

func (n *NewsItem) ApplyDefaults() {
	if n.PublishDate.IsZero() {
		n.PublishDate = time.Now()
	}
}

func (n NewsItem) TagList() []string {
	return splitList(n.Tags, ",")
}

// IsVisible reports whether the item belongs on the public news page at now.
func (n NewsItem) IsVisible(now time.Time) bool {
	return n.IsPublished && !n.PublishDate.After(now)
}
