package models

// SingletonID is the fixed primary key of single-row tables.
const SingletonID uint = 1

type Profile struct {
	Base
	Name         string `gorm:"size:100;not null" json:"name" validate:"required,max=100"`
	Title        string `gorm:"size:200;not null" json:"title" validate:"required,max=200"`
	Bio          string `gorm:"type:text;not null" json:"bio" validate:"required"`
	Email        string `gorm:"size:254;not null" json:"email" validate:"required,email,max=254"`
	Phone        string `gorm:"size:20" json:"phone" validate:"max=20"`
	Location     string `gorm:"size:100" json:"location" validate:"max=100"`
	ProfileImage string `gorm:"size:255" json:"profile_image" upload:"profile/"`
	Resume       string `gorm:"size:255" json:"resume" upload:"resumes/"`

	LinkedinURL  string `gorm:"size:200" json:"linkedin_url" validate:"omitempty,url,max=200"`
	GithubURL    string `gorm:"size:200" json:"github_url" validate:"omitempty,url,max=200"`
	TwitterURL   string `gorm:"size:200" json:"twitter_url" validate:"omitempty,url,max=200"`
	PortfolioURL string `gorm:"size:200" json:"portfolio_url" validate:"omitempty,url,max=200"`

	MetaDescription string `gorm:"type:text" json:"meta_description"`
	Keywords        string `gorm:"size:300" json:"keywords" validate:"max=300"`
}

func (p Profile) String() string { return p.Name }

func (Profile) Ordering() string { return "id" }

type SiteSettings struct {
	Base
	SiteName          string `gorm:"size:100;not null" json:"site_name" validate:"required,max=100"`
	SiteDescription   string `gorm:"type:text" json:"site_description"`
	MaintenanceMode   bool   `json:"maintenance_mode"`
	GoogleAnalyticsID string `gorm:"size:20" json:"google_analytics_id" validate:"max=20"`

	FacebookURL  string `gorm:"size:200" json:"facebook_url" validate:"omitempty,url,max=200"`
	InstagramURL string `gorm:"size:200" json:"instagram_url" validate:"omitempty,url,max=200"`
	YoutubeURL   string `gorm:"size:200" json:"youtube_url" validate:"omitempty,url,max=200"`

	MetaTitle       string `gorm:"size:200" json:"meta_title" validate:"max=200"`
	MetaDescription string `gorm:"type:text" json:"meta_description"`
}

const DefaultSiteName = "Portfolio"

// DefaultSiteSettings is the row created on first access.
func DefaultSiteSettings() *SiteSettings {
	return &SiteSettings{
		Base:     Base{ID: SingletonID},
		SiteName: DefaultSiteName,
	}
}

func (SiteSettings) String() string { return "Site Settings" }

func (SiteSettings) Ordering() string { return "id" }
