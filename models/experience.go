package models

import (
	"fmt"
	"time"
)

type Experience struct {
	Base
	Company        string         `gorm:"size:200;not null" json:"company" validate:"required,max=200"`
	Position       string         `gorm:"size:200;not null" json:"position" validate:"required,max=200"`
	ExperienceType ExperienceType `gorm:"size:20;not null;index" json:"experience_type" validate:"required,oneof=fulltime parttime contract freelance internship"`

	Description      string `gorm:"type:text;not null" json:"description" validate:"required"`
	Responsibilities string `gorm:"type:text;not null" json:"responsibilities" validate:"required"`

	StartDate time.Time  `gorm:"not null" json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date"`
	IsCurrent bool       `gorm:"index" json:"is_current"`

	CompanyLogo    string `gorm:"size:255" json:"company_logo" upload:"experience/logos/"`
	CompanyWebsite string `gorm:"size:200" json:"company_website" validate:"omitempty,url,max=200"`

	Location   string `gorm:"size:100" json:"location" validate:"max=100"`
	IsFeatured bool   `gorm:"index" json:"is_featured"`
	Order      int    `gorm:"column:sort_order;not null" json:"order"`
}

func (e Experience) String() string {
	return fmt.Sprintf("%s at %s", e.Position, e.Company)
}

func (Experience) Ordering() string { return "is_current DESC, start_date DESC" }

const monthYear = "Jan 2006"

func (e Experience) Duration() string {
	start := e.StartDate.Format(monthYear)
	if e.IsCurrent {
		return start + " - Present"
	}
	if e.EndDate != nil {
		return start + " - " + e.EndDate.Format(monthYear)
	}
	return start
}

// ResponsibilityList returns one entry per non-blank line.
func (e Experience) ResponsibilityList() []string {
	return splitList(e.Responsibilities, "\n")
}

type Education struct {
	Base
	Institution  string     `gorm:"size:200;not null" json:"institution" validate:"required,max=200"`
	Degree       string     `gorm:"size:100;not null" json:"degree" validate:"required,max=100"`
	FieldOfStudy string     `gorm:"size:200;not null" json:"field_of_study" validate:"required,max=200"`
	DegreeType   DegreeType `gorm:"size:20;not null;index" json:"degree_type" validate:"required,oneof=bachelor master phd diploma certificate other"`

	Description string   `gorm:"type:text" json:"description"`
	GPA         *float64 `gorm:"type:decimal(3,2)" json:"gpa" validate:"omitempty,min=0,max=4"`

	StartDate time.Time  `gorm:"not null" json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date"`
	IsCurrent bool       `gorm:"index" json:"is_current"`

	InstitutionLogo    string `gorm:"size:255" json:"institution_logo" upload:"education/logos/"`
	InstitutionWebsite string `gorm:"size:200" json:"institution_website" validate:"omitempty,url,max=200"`

	Location   string `gorm:"size:100" json:"location" validate:"max=100"`
	IsFeatured bool   `gorm:"index" json:"is_featured"`
}

// TableName keeps the uncountable noun.
func (Education) TableName() string { return "education" }

func (e Education) String() string {
	return fmt.Sprintf("%s in %s at %s", e.Degree, e.FieldOfStudy, e.Institution)
}

func (Education) Ordering() string { return "is_current DESC, start_date DESC" }

func (e Education) Duration() string {
	if e.IsCurrent {
		return fmt.Sprintf("%d - Present", e.StartDate.Year())
	}
	if e.EndDate != nil {
		return fmt.Sprintf("%d - %d", e.StartDate.Year(), e.EndDate.Year())
	}
	return fmt.Sprintf("%d", e.StartDate.Year())
}

// GPADisplay formats the GPA with two decimals, or "" when unset.
func (e Education) GPADisplay() string {
	if e.GPA == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *e.GPA)
}
