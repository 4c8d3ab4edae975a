package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound indicates the profile document does not exist.
	// Callers treat this as "nothing to migrate".
	ErrNotFound = errors.New("profile document not found")

	// ErrMalformed indicates the profile document is not valid JSON or
	// fails structural validation. Callers treat this as corrupt input.
	ErrMalformed = errors.New("profile document malformed")
)

// requiredSections are the top-level keys a complete profile carries.
// A missing section is logged, not fatal: the pipeline simply produces no
// rows or chunks for it.
var requiredSections = []string{"personalInfo", "experience", "skills", "projects", "education"}

// validate is the shared validator instance; validator.Validate is safe
// for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates the profile document at path.
//
// Error kinds:
//   - ErrNotFound when the file does not exist
//   - ErrMalformed when the content is not valid JSON or the identity
//     block fails validation (missing name or contact email)
//   - other I/O errors wrapped as-is
func Load(path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("loading profile document", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading profile document: %w", err)
	}

	// Detect sections on the raw object before strict decoding so a
	// missing optional section can be reported by name.
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for _, name := range requiredSections {
		if _, ok := sections[name]; !ok {
			logger.Warn("profile section missing", "section", name)
		}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	logger.Info("profile document loaded",
		"experiences", len(doc.Experience),
		"skill_categories", len(doc.Skills.Technical),
		"soft_skills", len(doc.Skills.SoftSkills),
		"projects", len(doc.Projects),
		"education", len(doc.Education),
	)

	return &doc, nil
}

// Canonical returns the deterministic (sorted-key) JSON serialization of
// the document. Used for content hashing and the raw-document snapshot:
// the same document always produces the same bytes.
func Canonical(doc *Document) ([]byte, error) {
	// encoding/json sorts map keys; round-trip through a generic map so
	// struct field order does not leak into the hash.
	direct, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing document: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(direct, &generic); err != nil {
		return nil, fmt.Errorf("canonicalizing document: %w", err)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing document: %w", err)
	}
	return canonical, nil
}
