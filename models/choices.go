package models

type SkillCategory string

const (
	SkillProgramming SkillCategory = "programming"
	SkillFramework   SkillCategory = "framework"
	SkillTool        SkillCategory = "tool"
	SkillSoft        SkillCategory = "soft"
	SkillDesign      SkillCategory = "design"
	SkillLanguage    SkillCategory = "language"
)

func (SkillCategory) Choices() []Choice {
	return []Choice{
		{string(SkillProgramming), "Programming Languages"},
		{string(SkillFramework), "Frameworks & Libraries"},
		{string(SkillTool), "Tools & Technologies"},
		{string(SkillSoft), "Soft Skills"},
		{string(SkillDesign), "Design"},
		{string(SkillLanguage), "Languages"},
	}
}

func (c SkillCategory) Label() string { return ChoiceLabel(c, string(c)) }

type ProjectType string

const (
	ProjectWeb     ProjectType = "web"
	ProjectMobile  ProjectType = "mobile"
	ProjectDesktop ProjectType = "desktop"
	ProjectData    ProjectType = "data"
	ProjectAI      ProjectType = "ai"
	ProjectOther   ProjectType = "other"
)

func (ProjectType) Choices() []Choice {
	return []Choice{
		{string(ProjectWeb), "Web Development"},
		{string(ProjectMobile), "Mobile App"},
		{string(ProjectDesktop), "Desktop Application"},
		{string(ProjectData), "Data Science"},
		{string(ProjectAI), "AI/ML"},
		{string(ProjectOther), "Other"},
	}
}

func (t ProjectType) Label() string { return ChoiceLabel(t, string(t)) }

type ExperienceType string

const (
	ExperienceFullTime   ExperienceType = "fulltime"
	ExperiencePartTime   ExperienceType = "parttime"
	ExperienceContract   ExperienceType = "contract"
	ExperienceFreelance  ExperienceType = "freelance"
	ExperienceInternship ExperienceType = "internship"
)

func (ExperienceType) Choices() []Choice {
	return []Choice{
		{string(ExperienceFullTime), "Full-time"},
		{string(ExperiencePartTime), "Part-time"},
		{string(ExperienceContract), "Contract"},
		{string(ExperienceFreelance), "Freelance"},
		{string(ExperienceInternship), "Internship"},
	}
}

func (t ExperienceType) Label() string { return ChoiceLabel(t, string(t)) }

type DegreeType string

const (
	DegreeBachelor    DegreeType = "bachelor"
	DegreeMaster      DegreeType = "master"
	DegreePhD         DegreeType = "phd"
	DegreeDiploma     DegreeType = "diploma"
	DegreeCertificate DegreeType = "certificate"
	DegreeOther       DegreeType = "other"
)

func (DegreeType) Choices() []Choice {
	return []Choice{
		{string(DegreeBachelor), "Bachelor's Degree"},
		{string(DegreeMaster), "Master's Degree"},
		{string(DegreePhD), "PhD"},
		{string(DegreeDiploma), "Diploma"},
		{string(DegreeCertificate), "Certificate"},
		{string(DegreeOther), "Other"},
	}
}

func (t DegreeType) Label() string { return ChoiceLabel(t, string(t)) }

type NewsCategory string

const (
	NewsAchievement NewsCategory = "achievement"
	NewsProject     NewsCategory = "project"
	NewsArticle     NewsCategory = "article"
	NewsEvent       NewsCategory = "event"
	NewsAward       NewsCategory = "award"
	NewsGeneral     NewsCategory = "general"
)

func (NewsCategory) Choices() []Choice {
	return []Choice{
		{string(NewsAchievement), "Achievement"},
		{string(NewsProject), "Project Update"},
		{string(NewsArticle), "Article/Blog"},
		{string(NewsEvent), "Event/Talk"},
		{string(NewsAward), "Award"},
		{string(NewsGeneral), "General Update"},
	}
}

func (c NewsCategory) Label() string { return ChoiceLabel(c, string(c)) }

type MessageStatus string

const (
	StatusNew      MessageStatus = "new"
	StatusRead     MessageStatus = "read"
	StatusReplied  MessageStatus = "replied"
	StatusArchived MessageStatus = "archived"
)

func (MessageStatus) Choices() []Choice {
	return []Choice{
		{string(StatusNew), "New"},
		{string(StatusRead), "Read"},
		{string(StatusReplied), "Replied"},
		{string(StatusArchived), "Archived"},
	}
}

func (s MessageStatus) Label() string { return ChoiceLabel(s, string(s)) }
