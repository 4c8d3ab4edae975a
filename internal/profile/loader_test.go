package profile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinops/twindex/internal/log"
)

const minimalProfile = `{
	"personalInfo": {
		"name": "Ada Example",
		"title": "Software Engineer",
		"location": "Berlin",
		"contact": {"email": "ada@example.com"},
		"summary": "Builds things.",
		"elevator_pitch": "Hire me."
	},
	"experience": [
		{"company": "Acme", "position": "Engineer", "duration": "2021-03 - Present"}
	],
	"skills": {"technical": [], "soft_skills": []},
	"projects": [],
	"education": []
}`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mytwin.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOK(t *testing.T) {
	path := writeProfile(t, minimalProfile)

	doc, err := Load(path, log.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "Ada Example", doc.PersonalInfo.Name)
	assert.Equal(t, "ada@example.com", doc.PersonalInfo.Contact.Email)
	require.Len(t, doc.Experience, 1)
	assert.Equal(t, "Acme", doc.Experience[0].Company)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), log.NewNop())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeProfile(t, "{not json")
	_, err := Load(path, log.NewNop())
	assert.ErrorIs(t, err, ErrMalformed)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLoadMissingEmail(t *testing.T) {
	path := writeProfile(t, `{"personalInfo": {"name": "Ada", "contact": {}}}`)
	_, err := Load(path, log.NewNop())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoadMissingOptionalSectionWarns(t *testing.T) {
	// Education absent entirely: load succeeds, warning logged.
	const noEducation = `{
		"personalInfo": {"name": "Ada", "contact": {"email": "ada@example.com"}},
		"experience": [],
		"skills": {},
		"projects": []
	}`
	path := writeProfile(t, noEducation)

	var buf bytes.Buffer
	logger := log.NewWithWriter(&buf, log.Config{})

	doc, err := Load(path, logger)
	require.NoError(t, err)
	assert.Empty(t, doc.Education)
	assert.Contains(t, buf.String(), "education")
}

func TestCanonicalDeterministic(t *testing.T) {
	path := writeProfile(t, minimalProfile)
	doc, err := Load(path, log.NewNop())
	require.NoError(t, err)

	a, err := Canonical(doc)
	require.NoError(t, err)
	b, err := Canonical(doc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, bytes.Contains(a, []byte(`"ada@example.com"`)))
}
