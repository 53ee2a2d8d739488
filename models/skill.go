package models

import "fmt"

type Skill struct {
	Base
	Name        string        `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	Category    SkillCategory `gorm:"size:20;not null;index" json:"category" validate:"required,oneof=programming framework tool soft design language"`
	Proficiency int           `gorm:"not null" json:"proficiency" validate:"min=0,max=100"`
	Description string        `gorm:"type:text" json:"description"`
	IconClass   string        `gorm:"size:50" json:"icon_class" validate:"max=50"`
	Order       int           `gorm:"column:sort_order;not null" json:"order"`
	IsFeatured  bool          `gorm:"index" json:"is_featured"`

	Certificates []Certificate `gorm:"many2many:certificate_skills;" json:"-"`
}

// DefaultProficiency is the proficiency of a newly created skill.
const DefaultProficiency = 50

func (s Skill) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Category.Label())
}

func (Skill) Ordering() string { return "category, sort_order, name" }
