package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinops/twindex/internal/profile"
)

func testDocument() *profile.Document {
	return &profile.Document{
		PersonalInfo: profile.PersonalInfo{
			Name:          "Ada Example",
			Title:         "Software Engineer",
			Location:      "Berlin",
			Contact:       profile.Contact{Email: "ada@example.com"},
			Summary:       "Builds distributed systems.",
			ElevatorPitch: "Hire me.",
		},
		Experience: []profile.Experience{
			{Company: "Acme", Position: "Senior Engineer", Duration: "2021-03 - Present",
				Achievements: []string{"Shipped v2"}, Technologies: []string{"Go", "PostgreSQL"},
				Keywords: []string{"Backend"}},
			{Company: "Globex", Position: "Engineer", Duration: "2019-01 - 2021-02"},
			{Company: "Initech", Position: "Engineer", Duration: "2017-06 - 2018-12"},
			{Company: "Hooli", Position: "Intern", Duration: "2016-06 - 2016-09"},
		},
		Skills: profile.Skills{
			Technical: []profile.SkillCategory{
				{Category: "Backend", Skills: []profile.TechnicalSkill{
					{Name: "Go", Proficiency: "Expert", Experience: "5 years", Context: "Services"},
					{Name: "PostgreSQL", Proficiency: "Advanced"},
				}},
			},
			SoftSkills: []profile.SoftSkill{
				{Skill: "Mentoring", Examples: []string{"Onboarded juniors"}},
			},
		},
		Projects: []profile.Project{
			{Name: "Twin", Status: "completed", Technologies: []string{"Go"}, Timeline: "2022-01 - 2022-06"},
			{Name: "Draft", Status: "in-progress"},
		},
		Education: []profile.Education{
			{Institution: "TU Berlin", Degree: "BSc", FieldOfStudy: "Computer Science", GraduationDate: "2016"},
		},
	}
}

func TestBuildOrderAndCount(t *testing.T) {
	chunks := Build(testDocument(), 1)

	// identity + 4 experiences + 1 skill category + soft skills + 2 projects + 1 education
	require.Len(t, chunks, 10)

	wantTypes := []Type{
		TypeIdentity,
		TypeExperience, TypeExperience, TypeExperience, TypeExperience,
		TypeSkills, TypeSkills,
		TypeProject, TypeProject,
		TypeEducation,
	}
	for i, want := range wantTypes {
		assert.Equal(t, want, chunks[i].Type, "chunk %d", i)
	}
}

func TestBuildExperienceImportanceTiers(t *testing.T) {
	chunks := Build(testDocument(), 1)

	var experiences []Chunk
	for _, c := range chunks {
		if c.Type == TypeExperience {
			experiences = append(experiences, c)
		}
	}
	require.Len(t, experiences, 4)

	// Zero-indexed: entries 0..2 are high, the rest medium.
	assert.Equal(t, ImportanceHigh, experiences[0].Importance)
	assert.Equal(t, ImportanceHigh, experiences[2].Importance)
	assert.Equal(t, ImportanceMedium, experiences[3].Importance)
}

func TestBuildProjectImportance(t *testing.T) {
	chunks := Build(testDocument(), 1)

	var projects []Chunk
	for _, c := range chunks {
		if c.Type == TypeProject {
			projects = append(projects, c)
		}
	}
	require.Len(t, projects, 2)

	assert.Equal(t, ImportanceHigh, projects[0].Importance, "completed project")
	assert.Equal(t, ImportanceMedium, projects[1].Importance, "in-progress project")
}

func TestBuildFixedTiers(t *testing.T) {
	chunks := Build(testDocument(), 1)

	assert.Equal(t, ImportanceHigh, chunks[0].Importance, "identity chunk")

	for _, c := range chunks {
		switch {
		case c.Type == TypeSkills && c.Title == "Soft Skills":
			assert.Equal(t, ImportanceMedium, c.Importance)
		case c.Type == TypeSkills:
			assert.Equal(t, ImportanceHigh, c.Importance)
		case c.Type == TypeEducation:
			assert.Equal(t, ImportanceMedium, c.Importance)
		}
	}
}

func TestBuildKeywords(t *testing.T) {
	chunks := Build(testDocument(), 1)

	exp := chunks[1]
	assert.Contains(t, exp.Keywords, "Backend")
	assert.Contains(t, exp.Keywords, "experience")
	assert.Contains(t, exp.Keywords, "work")
	assert.Contains(t, exp.Keywords, "acme")

	var skillGroup Chunk
	for _, c := range chunks {
		if c.Type == TypeSkills && c.Title == "Backend Skills" {
			skillGroup = c
		}
	}
	assert.Contains(t, skillGroup.Keywords, "go")
	assert.Contains(t, skillGroup.Keywords, "postgresql")
	assert.Contains(t, skillGroup.Keywords, "backend")
}

func TestBuildContentTemplates(t *testing.T) {
	chunks := Build(testDocument(), 1)

	exp := chunks[1]
	assert.Contains(t, exp.Content, "Experience at Acme")
	assert.Contains(t, exp.Content, "Position: Senior Engineer")
	assert.Contains(t, exp.Content, "- Shipped v2")
	assert.Contains(t, exp.Content, "Technologies: Go, PostgreSQL")

	// Absent fields render as empty labels, not dropped labels.
	bare := chunks[4] // Hooli entry has no description or impact
	assert.Contains(t, bare.Content, "Description: ")
	assert.Contains(t, bare.Content, "Impact: ")
}

func TestBuildTitles(t *testing.T) {
	chunks := Build(testDocument(), 1)

	assert.Equal(t, "Professional Profile", chunks[0].Title)
	assert.Equal(t, "Experience at Acme", chunks[1].Title)
	assert.Equal(t, "Project: Twin", chunks[7].Title)
	assert.Equal(t, "Education at TU Berlin", chunks[9].Title)
}

func TestBuildDateContext(t *testing.T) {
	chunks := Build(testDocument(), 1)
	assert.Equal(t, "2021-03 - Present", chunks[1].DateContext)
	assert.Equal(t, "2022-01 - 2022-06", chunks[7].DateContext)
	assert.Equal(t, "2016", chunks[9].DateContext)
}

func TestBuildMissingEducationSection(t *testing.T) {
	doc := testDocument()
	doc.Education = nil

	chunks := Build(doc, 1)
	for _, c := range chunks {
		assert.NotEqual(t, TypeEducation, c.Type)
	}
}

func TestBuildMetaCarriesProfessionalID(t *testing.T) {
	chunks := Build(testDocument(), 42)
	for i, c := range chunks {
		assert.Equal(t, int64(42), c.Meta["professional_id"], "chunk %d", i)
	}
}
