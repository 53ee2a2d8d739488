package models

import (
	"fmt"
	"time"
)

type Certificate struct {
	Base
	Title               string `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	IssuingOrganization string `gorm:"size:200;not null" json:"issuing_organization" validate:"required,max=200"`
	CredentialID        string `gorm:"size:100" json:"credential_id" validate:"max=100"`
	CredentialURL       string `gorm:"size:200" json:"credential_url" validate:"omitempty,url,max=200"`

	IssueDate      time.Time  `gorm:"not null" json:"issue_date" validate:"required"`
	ExpirationDate *time.Time `json:"expiration_date"`
	DoesNotExpire  bool       `json:"does_not_expire"`

	CertificateImage string  `gorm:"size:255" json:"certificate_image" upload:"certificates/"`
	Skills           []Skill `gorm:"many2many:certificate_skills;" json:"skills"`

	IsFeatured bool `gorm:"index" json:"is_featured"`
	Order      int  `gorm:"column:sort_order;not null" json:"order"`
}

func (c Certificate) String() string {
	return fmt.Sprintf("%s from %s", c.Title, c.IssuingOrganization)
}

func (Certificate) Ordering() string { return "issue_date DESC, sort_order" }

// Expires returns the effective expiration date; nil when the certificate
// does not expire, whatever expiration_date holds.
func (c Certificate) Expires() *time.Time {
	if c.DoesNotExpire {
		return nil
	}
	return c.ExpirationDate
}

func (c Certificate) IsExpired(now time.Time) bool {
	exp := c.Expires()
	return exp != nil && exp.Before(now)
}

type ContactMessage struct {
	Base
	Name      string        `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	Email     string        `gorm:"size:254;not null" json:"email" validate:"required,email,max=254"`
	Subject   string        `gorm:"size:200;not null" json:"subject" validate:"required,max=200"`
	Message   string        `gorm:"type:text;not null" json:"message" validate:"required"`
	IPAddress *string       `gorm:"size:45" json:"ip_address" validate:"omitempty,ip"`
	UserAgent string        `gorm:"type:text" json:"user_agent"`
	Status    MessageStatus `gorm:"size:10;not null;index" json:"status" validate:"required,oneof=new read replied archived"`

	IsArchived bool `gorm:"index" json:"is_archived"`
}

func (m ContactMessage) String() string {
	return fmt.Sprintf("Message from %s - %s", m.Name, m.Subject)
}

func (ContactMessage) Ordering() string { return "created_at DESC" }

func (m *ContactMessage) ApplyDefaults() {
	if m.Status == "" {
		m.Status = StatusNew
	}
}

// AdminUser is an operator allowed into the admin console.
type AdminUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
