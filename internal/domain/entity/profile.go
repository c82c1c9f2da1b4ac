package entity

type PersonalInfo struct {
	FirstName               string `json:"firstName" yaml:"firstName"`
	LastName                string `json:"lastName" yaml:"lastName"`
	Email                   string `json:"email" yaml:"email"`
	Phone                   string `json:"phone" yaml:"phone"`
	Location                string `json:"location,omitempty" yaml:"location"`
	Gender                  string `json:"gender,omitempty" yaml:"gender"`
	VeteranStatus           string `json:"veteranStatus,omitempty" yaml:"veteranStatus"`
	DisabilityStatus        string `json:"disabilityStatus,omitempty" yaml:"disabilityStatus"`
	Hispanic                string `json:"hispanic,omitempty" yaml:"hispanic"`
	VisaSponsorshipRequired string `json:"visaSponsorshipRequired,omitempty" yaml:"visaSponsorshipRequired"`
}

type WorkExperience struct {
	Title       string `json:"title" yaml:"title"`
	Company     string `json:"company" yaml:"company"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Description string `json:"description,omitempty" yaml:"description"`
}

type Education struct {
	School         string `json:"school" yaml:"school"`
	Degree         string `json:"degree" yaml:"degree"`
	Field          string `json:"field,omitempty" yaml:"field"`
	GraduationDate string `json:"graduationDate,omitempty" yaml:"graduationDate"`
}

// ApplicantProfile is owned by the caller and never modified by the engine.
// WorkExperience is reverse-chronological by convention.
type ApplicantProfile struct {
	PersonalInfo    PersonalInfo     `json:"personalInfo" yaml:"personalInfo"`
	WorkExperience  []WorkExperience `json:"workExperience" yaml:"workExperience"`
	Education       []Education      `json:"education" yaml:"education"`
	LinkedIn        string           `json:"linkedIn,omitempty" yaml:"linkedIn"`
	Website         string           `json:"website,omitempty" yaml:"website"`
	Referral        string           `json:"referral,omitempty" yaml:"referral"`
	Skills          []string         `json:"skills,omitempty" yaml:"skills"`
	Summary         string           `json:"summary,omitempty" yaml:"summary"`
	ResumeFile      string           `json:"resumeFile,omitempty" yaml:"resumeFile"`
	CoverLetterFile string           `json:"coverLetterFile,omitempty" yaml:"coverLetterFile"`
}
