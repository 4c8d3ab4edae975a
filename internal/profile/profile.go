// Package profile defines the digital-twin profile document and its loader.
//
// The document is the JSON file maintained by the profile owner
// (personalInfo, experience, skills, projects, education). Loading
// distinguishes three failure kinds so callers can tell "nothing to
// migrate" (ErrNotFound) from "corrupt input" (ErrMalformed) from other
// I/O errors.
package profile

// Document is the parsed profile document.
type Document struct {
	PersonalInfo PersonalInfo `json:"personalInfo" validate:"required"`
	Experience   []Experience `json:"experience"`
	Skills       Skills       `json:"skills"`
	Projects     []Project    `json:"projects"`
	Education    []Education  `json:"education"`
}

// PersonalInfo is the identity block of the profile.
type PersonalInfo struct {
	Name          string  `json:"name" validate:"required"`
	Title         string  `json:"title"`
	Location      string  `json:"location"`
	Contact       Contact `json:"contact" validate:"required"`
	Summary       string  `json:"summary"`
	ElevatorPitch string  `json:"elevator_pitch"`
}

// Contact holds contact links. Email is the stable key for the
// professional row, so it is required and must be well-formed.
type Contact struct {
	Email     string `json:"email" validate:"required,email"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
}

// Experience is one employment entry.
type Experience struct {
	Company         string   `json:"company"`
	Position        string   `json:"position"`
	Duration        string   `json:"duration"` // e.g. "2021-03 - Present"
	Description     string   `json:"description"`
	Achievements    []string `json:"achievements"`
	Technologies    []string `json:"technologies"`
	SkillsDeveloped []string `json:"skills_developed"`
	Impact          string   `json:"impact"`
	Keywords        []string `json:"keywords"`
}

// Skills groups technical skill categories and soft skills.
type Skills struct {
	Technical  []SkillCategory `json:"technical"`
	SoftSkills []SoftSkill     `json:"soft_skills"`
}

// SkillCategory is a named group of technical skills.
type SkillCategory struct {
	Category string           `json:"category"`
	Skills   []TechnicalSkill `json:"skills"`
}

// TechnicalSkill is one technical skill with proficiency and context.
type TechnicalSkill struct {
	Name        string   `json:"name"`
	Proficiency string   `json:"proficiency"`
	Experience  string   `json:"experience"` // free text, e.g. "3 years"
	Context     string   `json:"context"`
	Projects    []string `json:"projects"`
}

// SoftSkill is one soft skill with supporting evidence.
type SoftSkill struct {
	Skill    string   `json:"skill"`
	Evidence string   `json:"evidence"`
	Examples []string `json:"examples"`
}

// Project is one portfolio project.
type Project struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	Role          string   `json:"role"`
	Technologies  []string `json:"technologies"`
	Achievements  []string `json:"achievements"`
	Challenges    []string `json:"challenges"`
	URL           string   `json:"url"`
	GitHub        string   `json:"github"`
	Documentation string   `json:"documentation"`
	Status        string   `json:"status"` // "completed", "in-progress", ...
	Timeline      string   `json:"timeline"`
	TeamSize      string   `json:"team_size"`
}

// Education is one credential entry.
type Education struct {
	Institution    string   `json:"institution"`
	Degree         string   `json:"degree"`
	FieldOfStudy   string   `json:"field_of_study"`
	GraduationDate string   `json:"graduation_date"`
	GPA            string   `json:"gpa"`
	HonorsAwards   []string `json:"honors_awards"`
	Coursework     []string `json:"relevant_coursework"`
	ThesisProjects []string `json:"thesis_projects"`
	Skills         []string `json:"skills"`
	Activities     []string `json:"activities"`
}
