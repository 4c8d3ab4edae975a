package chunk

import (
	"fmt"
	"strings"

	"github.com/twinops/twindex/internal/profile"
)

// highExperienceCount is how many leading experience entries (the most
// recent ones, in document order) are tiered "high".
const highExperienceCount = 3

// Build renders the profile document into its ordered chunk sequence:
// identity block, each experience, each technical skill category, one
// aggregate soft-skills chunk, each project, each education entry.
//
// Build is pure: it touches no storage and assigns no ids. Absent fields
// render as empty strings after their labels rather than dropping the
// label, so the template shape is stable across documents.
func Build(doc *profile.Document, professionalID int64) []Chunk {
	var chunks []Chunk

	if identity := buildIdentity(doc.PersonalInfo, professionalID); identity != nil {
		chunks = append(chunks, *identity)
	}

	for i, exp := range doc.Experience {
		chunks = append(chunks, buildExperience(exp, professionalID, i))
	}

	for _, group := range doc.Skills.Technical {
		chunks = append(chunks, buildSkillCategory(group, professionalID))
	}

	if len(doc.Skills.SoftSkills) > 0 {
		chunks = append(chunks, buildSoftSkills(doc.Skills.SoftSkills, professionalID))
	}

	for i, project := range doc.Projects {
		chunks = append(chunks, buildProject(project, professionalID, i))
	}

	for i, edu := range doc.Education {
		chunks = append(chunks, buildEducation(edu, professionalID, i))
	}

	return chunks
}

func buildIdentity(info profile.PersonalInfo, professionalID int64) *Chunk {
	if info.Name == "" && info.Summary == "" {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Professional Profile: %s\n", info.Name)
	fmt.Fprintf(&b, "Title: %s\n", info.Title)
	fmt.Fprintf(&b, "Location: %s\n\n", info.Location)
	fmt.Fprintf(&b, "Summary: %s\n\n", info.Summary)
	fmt.Fprintf(&b, "Elevator Pitch: %s", info.ElevatorPitch)

	return &Chunk{
		Type:       TypeIdentity,
		Title:      "Professional Profile",
		Content:    b.String(),
		Category:   string(TypeIdentity),
		Importance: ImportanceHigh,
		Keywords:   []string{"profile", "summary", "elevator pitch", "professional"},
		Meta: map[string]any{
			"professional_id": professionalID,
			"content_type":    string(TypeIdentity),
			"name":            info.Name,
			"title":           info.Title,
		},
	}
}

func buildExperience(exp profile.Experience, professionalID int64, index int) Chunk {
	var b strings.Builder
	fmt.Fprintf(&b, "Experience at %s\n", exp.Company)
	fmt.Fprintf(&b, "Position: %s\n", exp.Position)
	fmt.Fprintf(&b, "Duration: %s\n\n", exp.Duration)
	fmt.Fprintf(&b, "Description: %s\n\n", exp.Description)
	b.WriteString("Key Achievements:\n")
	b.WriteString(bulletList(exp.Achievements))
	fmt.Fprintf(&b, "\nTechnologies: %s\n\n", strings.Join(exp.Technologies, ", "))
	fmt.Fprintf(&b, "Skills Developed: %s\n\n", strings.Join(exp.SkillsDeveloped, ", "))
	fmt.Fprintf(&b, "Impact: %s", exp.Impact)

	importance := ImportanceMedium
	if index < highExperienceCount {
		importance = ImportanceHigh
	}

	keywords := append([]string{}, exp.Keywords...)
	keywords = append(keywords, "experience", "work", strings.ToLower(exp.Company))

	return Chunk{
		Type:        TypeExperience,
		Title:       "Experience at " + orUnknown(exp.Company),
		Content:     b.String(),
		Category:    string(TypeExperience),
		Importance:  importance,
		Keywords:    keywords,
		DateContext: exp.Duration,
		Meta: map[string]any{
			"professional_id": professionalID,
			"content_type":    string(TypeExperience),
			"company":         exp.Company,
			"position":        exp.Position,
			"duration":        exp.Duration,
			"index":           index,
		},
	}
}

func buildSkillCategory(group profile.SkillCategory, professionalID int64) Chunk {
	category := group.Category
	if category == "" {
		category = "Technical"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Skills:\n\n", category)
	for _, s := range group.Skills {
		experience := s.Experience
		if experience == "" {
			experience = "N/A"
		}
		fmt.Fprintf(&b, "- %s (%s) - %s experience\n", s.Name, s.Proficiency, experience)
	}
	b.WriteString("\nContext and Examples:\n")
	for _, s := range group.Skills {
		if s.Context != "" {
			fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Context)
		}
	}

	keywords := []string{"skills", strings.ToLower(category), "expertise"}
	for _, s := range group.Skills {
		keywords = append(keywords, strings.ToLower(s.Name))
	}

	return Chunk{
		Type:       TypeSkills,
		Title:      category + " Skills",
		Content:    strings.TrimRight(b.String(), "\n"),
		Category:   string(TypeSkills),
		Importance: ImportanceHigh,
		Keywords:   keywords,
		Meta: map[string]any{
			"professional_id": professionalID,
			"content_type":    string(TypeSkills),
			"category":        category,
			"skill_count":     len(group.Skills),
		},
	}
}

func buildSoftSkills(skills []profile.SoftSkill, professionalID int64) Chunk {
	var b strings.Builder
	b.WriteString("Soft Skills:\n\n")
	for _, s := range skills {
		fmt.Fprintf(&b, "- %s\n", s.Skill)
	}
	b.WriteString("\nExamples and Context:\n")
	for _, s := range skills {
		if len(s.Examples) > 0 {
			fmt.Fprintf(&b, "- %s: %s\n", s.Skill, strings.Join(s.Examples, ", "))
		}
	}

	keywords := []string{"skills", "soft skills", "interpersonal"}
	for _, s := range skills {
		keywords = append(keywords, strings.ToLower(s.Skill))
	}

	return Chunk{
		Type:       TypeSkills,
		Title:      "Soft Skills",
		Content:    strings.TrimRight(b.String(), "\n"),
		Category:   string(TypeSkills),
		Importance: ImportanceMedium,
		Keywords:   keywords,
		Meta: map[string]any{
			"professional_id": professionalID,
			"content_type":    string(TypeSkills),
			"category":        "Soft Skills",
			"skill_count":     len(skills),
		},
	}
}

func buildProject(project profile.Project, professionalID int64, index int) Chunk {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", project.Name)
	fmt.Fprintf(&b, "Type: %s\n", project.Type)
	fmt.Fprintf(&b, "Status: %s\n\n", project.Status)
	fmt.Fprintf(&b, "Description: %s\n\n", project.Description)
	fmt.Fprintf(&b, "Technologies: %s\n\n", strings.Join(project.Technologies, ", "))
	fmt.Fprintf(&b, "Role: %s\n\n", project.Role)
	b.WriteString("Achievements:\n")
	b.WriteString(bulletList(project.Achievements))
	teamSize := project.TeamSize
	if teamSize == "" {
		teamSize = "N/A"
	}
	fmt.Fprintf(&b, "\nTeam Size: %s", teamSize)

	importance := ImportanceMedium
	if project.Status == "completed" {
		importance = ImportanceHigh
	}

	keywords := []string{"project", "portfolio"}
	keywords = append(keywords, project.Technologies...)
	keywords = append(keywords, strings.ToLower(project.Name))

	return Chunk{
		Type:        TypeProject,
		Title:       "Project: " + orUnknown(project.Name),
		Content:     b.String(),
		Category:    string(TypeProject),
		Importance:  importance,
		Keywords:    keywords,
		DateContext: project.Timeline,
		Meta: map[string]any{
			"professional_id": professionalID,
			"content_type":    string(TypeProject),
			"project_name":    project.Name,
			"project_type":    project.Type,
			"status":          project.Status,
			"index":           index,
		},
	}
}

func buildEducation(edu profile.Education, professionalID int64, index int) Chunk {
	gpa := edu.GPA
	if gpa == "" {
		gpa = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Education: %s in %s\n", edu.Degree, edu.FieldOfStudy)
	fmt.Fprintf(&b, "Institution: %s\n", edu.Institution)
	fmt.Fprintf(&b, "Graduation: %s\n", edu.GraduationDate)
	fmt.Fprintf(&b, "GPA: %s\n\n", gpa)
	fmt.Fprintf(&b, "Relevant Coursework: %s\n\n", strings.Join(edu.Coursework, ", "))
	b.WriteString("Thesis/Projects:\n")
	b.WriteString(bulletList(edu.ThesisProjects))
	fmt.Fprintf(&b, "\nHonors & Awards: %s\n\n", strings.Join(edu.HonorsAwards, ", "))
	fmt.Fprintf(&b, "Activities: %s", strings.Join(edu.Activities, ", "))

	return Chunk{
		Type:        TypeEducation,
		Title:       "Education at " + orUnknown(edu.Institution),
		Content:     b.String(),
		Category:    string(TypeEducation),
		Importance:  ImportanceMedium,
		Keywords: []string{
			"education", "degree", "university",
			strings.ToLower(edu.Institution),
			strings.ToLower(edu.FieldOfStudy),
		},
		DateContext: edu.GraduationDate,
		Meta: map[string]any{
			"professional_id": professionalID,
			"content_type":    string(TypeEducation),
			"institution":     edu.Institution,
			"degree":          edu.Degree,
			"field":           edu.FieldOfStudy,
			"index":           index,
		},
	}
}

// bulletList renders items one per line with a leading dash.
func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
