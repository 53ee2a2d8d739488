package models

import "time"

// Base carries the surrogate key and the automatic timestamps shared by every
// entity.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at" admin:"datetime"`
	UpdatedAt time.Time `json:"updated_at" admin:"datetime"`
}

func (b Base) GetID() uint { return b.ID }

// Entity is implemented by every stored record through Base.
type Entity interface {
	GetID() uint
}

// Ordered entities declare the ORDER BY clause used for listings.
type Ordered interface {
	Ordering() string
}

// Sluggable entities own a unique slug that is derived from SlugSource when
// left blank.
type Sluggable interface {
	GetSlug() string
	SetSlug(string)
	SlugSource() string
}

// Defaulter entities fill in default values before validation.
type Defaulter interface {
	ApplyDefaults()
}

// Choice is one value of an enumerated field.
type Choice struct {
	Value string
	Label string
}

// Enum is implemented by every enumerated field type.
type Enum interface {
	Choices() []Choice
}

// ChoiceLabel returns the display label of value within e, or value itself
// when it is not one of the declared choices.
func ChoiceLabel(e Enum, value string) string {
	for _, c := range e.Choices() {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// AllModels lists every entity in migration order.
func AllModels() []any {
	return []any{
		&Profile{},
		&Skill{},
		&Project{},
		&Experience{},
		&Education{},
		&NewsItem{},
		&Certificate{},
		&ContactMessage{},
		&SiteSettings{},
		&AdminUser{},
	}
}
