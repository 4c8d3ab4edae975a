// Package store persists profile data to PostgreSQL.
//
// The professional row is upserted by email. Every dependent entity
// (experiences, skills, projects, education, content chunks) is replaced
// wholesale: delete the professional's rows, insert the document's, one
// transaction per entity. Partially-failed runs therefore never leave a
// mix of old and new rows within an entity.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twinops/twindex/internal/chunk"
	"github.com/twinops/twindex/internal/log"
	"github.com/twinops/twindex/internal/profile"
)

// rawDocumentVersion tags json_content rows written by this pipeline.
const rawDocumentVersion = "v1"

// Store runs the relational side of the pipeline on a pgx pool.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool           *pgxpool.Pool
	logger         log.Logger
	embeddingModel string
}

// New creates a Store. embeddingModel is recorded on every content chunk
// row; it labels which model the vector index embeds with.
func New(pool *pgxpool.Pool, logger log.Logger, embeddingModel string) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, logger: logger, embeddingModel: embeddingModel}
}

// UpsertProfessional inserts the professional identified by their email,
// or updates the existing row. The email itself is never updated; it is
// the natural key.
func (s *Store) UpsertProfessional(ctx context.Context, info profile.PersonalInfo) (int64, error) {
	email := info.Contact.Email

	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM professionals WHERE email = $1`, email).Scan(&id)
	switch {
	case err == nil:
		_, err = s.pool.Exec(ctx, `
			UPDATE professionals SET
				name = $1, title = $2, location = $3,
				linkedin = $4, github = $5, portfolio = $6,
				summary = $7, elevator_pitch = $8,
				updated_at = NOW()
			WHERE id = $9`,
			info.Name, info.Title, info.Location,
			info.Contact.LinkedIn, info.Contact.GitHub, info.Contact.Portfolio,
			info.Summary, info.ElevatorPitch, id)
		if err != nil {
			return 0, fmt.Errorf("update professional %d: %w", id, err)
		}
		s.logger.Info("professional updated", "id", id, "email", email)
		return id, nil

	case errors.Is(err, pgx.ErrNoRows):
		err = s.pool.QueryRow(ctx, `
			INSERT INTO professionals (
				name, title, location, email,
				linkedin, github, portfolio,
				summary, elevator_pitch
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			info.Name, info.Title, info.Location, email,
			info.Contact.LinkedIn, info.Contact.GitHub, info.Contact.Portfolio,
			info.Summary, info.ElevatorPitch).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert professional: %w", err)
		}
		s.logger.Info("professional inserted", "id", id, "email", email)
		return id, nil

	default:
		return 0, fmt.Errorf("look up professional by email: %w", err)
	}
}

// ReplaceExperiences replaces the professional's experience rows with the
// document's, in document order. Returns the number of rows inserted.
func (s *Store) ReplaceExperiences(ctx context.Context, professionalID int64, experiences []profile.Experience) (int, error) {
	return s.replace(ctx, professionalID, "experiences", len(experiences), func(tx pgx.Tx) error {
		for _, exp := range experiences {
			dates := profile.ParseDuration(exp.Duration, s.logger)
			_, err := tx.Exec(ctx, `
				INSERT INTO experiences (
					professional_id, company, position,
					start_date, end_date, is_current,
					description, achievements, technologies,
					skills_developed, impact, keywords
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				professionalID, exp.Company, exp.Position,
				nullableDate(dates.Start), nullableDate(dates.End), dates.Ongoing,
				exp.Description, textArray(exp.Achievements), textArray(exp.Technologies),
				textArray(exp.SkillsDeveloped), exp.Impact, textArray(exp.Keywords))
			if err != nil {
				return fmt.Errorf("insert experience at %q: %w", exp.Company, err)
			}
		}
		return nil
	})
}

// ReplaceSkills flattens the document's technical skill categories and
// soft skills into one skills table and replaces the professional's rows.
// Returns the number of rows inserted.
func (s *Store) ReplaceSkills(ctx context.Context, professionalID int64, skills profile.Skills) (int, error) {
	type row struct {
		category    string
		name        string
		proficiency string
		experience  string
		context     string
		projects    []string
		technical   bool
		examples    []string
	}

	var rows []row
	for _, group := range skills.Technical {
		category := group.Category
		if category == "" {
			category = "Technical"
		}
		for _, skill := range group.Skills {
			proficiency := skill.Proficiency
			if proficiency == "" {
				proficiency = "Intermediate"
			}
			rows = append(rows, row{
				category:    category,
				name:        skill.Name,
				proficiency: proficiency,
				experience:  skill.Experience,
				context:     skill.Context,
				projects:    skill.Projects,
				technical:   true,
			})
		}
	}
	for _, skill := range skills.SoftSkills {
		rows = append(rows, row{
			category:    "Soft Skills",
			name:        skill.Skill,
			proficiency: "Advanced",
			context:     skill.Evidence,
			examples:    skill.Examples,
		})
	}

	return s.replace(ctx, professionalID, "skills", len(rows), func(tx pgx.Tx) error {
		for _, r := range rows {
			_, err := tx.Exec(ctx, `
				INSERT INTO skills (
					professional_id, category, name,
					proficiency, experience_years, context,
					projects, is_technical, examples
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				professionalID, r.category, r.name,
				r.proficiency, r.experience, r.context,
				textArray(r.projects), r.technical, textArray(r.examples))
			if err != nil {
				return fmt.Errorf("insert skill %q: %w", r.name, err)
			}
		}
		return nil
	})
}

// ReplaceProjects replaces the professional's project rows with the
// document's, in document order. Returns the number of rows inserted.
func (s *Store) ReplaceProjects(ctx context.Context, professionalID int64, projects []profile.Project) (int, error) {
	return s.replace(ctx, professionalID, "projects", len(projects), func(tx pgx.Tx) error {
		for _, project := range projects {
			dates := profile.ParseDuration(project.Timeline, s.logger)
			status := project.Status
			if status == "" {
				status = "completed"
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO projects (
					professional_id, name, description,
					role, technologies, outcomes,
					challenges, demo_url, repository_url,
					documentation_url, status, start_date, end_date
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				professionalID, project.Name, project.Description,
				project.Role, textArray(project.Technologies), textArray(project.Achievements),
				textArray(project.Challenges), project.URL, project.GitHub,
				project.Documentation, status, nullableDate(dates.Start), nullableDate(dates.End))
			if err != nil {
				return fmt.Errorf("insert project %q: %w", project.Name, err)
			}
		}
		return nil
	})
}

// ReplaceEducation replaces the professional's education rows with the
// document's, in document order. Returns the number of rows inserted.
func (s *Store) ReplaceEducation(ctx context.Context, professionalID int64, education []profile.Education) (int, error) {
	return s.replace(ctx, professionalID, "education", len(education), func(tx pgx.Tx) error {
		for _, edu := range education {
			graduation := profile.ParseDate(edu.GraduationDate, s.logger)
			_, err := tx.Exec(ctx, `
				INSERT INTO education (
					professional_id, type, institution, degree_name,
					field, graduation_date, gpa,
					achievements, relevant_coursework, projects,
					skills, status
				) VALUES ($1, 'degree', $2, $3, $4, $5, $6, $7, $8, $9, $10, 'completed')`,
				professionalID, edu.Institution, edu.Degree,
				edu.FieldOfStudy, nullableDate(graduation), edu.GPA,
				textArray(edu.HonorsAwards), textArray(edu.Coursework),
				textArray(edu.ThesisProjects), textArray(edu.Skills))
			if err != nil {
				return fmt.Errorf("insert education at %q: %w", edu.Institution, err)
			}
		}
		return nil
	})
}

// UpsertRawDocument stores the complete source document as canonical JSON
// alongside its sha256, so a later run can detect an unchanged input.
func (s *Store) UpsertRawDocument(ctx context.Context, professionalID int64, doc *profile.Document) (int64, error) {
	canonical, err := profile.Canonical(doc)
	if err != nil {
		return 0, fmt.Errorf("canonicalize document: %w", err)
	}
	sum := sha256.Sum256(canonical)
	hash := hex.EncodeToString(sum[:])

	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO json_content (
			professional_id, version, content, content_hash, validation_status
		) VALUES ($1, $2, $3, $4, 'valid')
		ON CONFLICT (professional_id, version) DO UPDATE SET
			content = EXCLUDED.content,
			content_hash = EXCLUDED.content_hash,
			validation_status = 'valid',
			created_at = NOW()
		RETURNING id`,
		professionalID, rawDocumentVersion, canonical, hash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert raw document: %w", err)
	}

	s.logger.Info("raw document stored", "id", id, "hash", hash[:12])
	return id, nil
}

// InsertChunks replaces the professional's content chunk rows with the
// given chunks, deriving each chunk's textual and vector ids from its
// position in the sequence. The chunks are mutated in place: RowID,
// ChunkID, and VectorID are filled in for the vector upsert stage.
func (s *Store) InsertChunks(ctx context.Context, professionalID int64, chunks []chunk.Chunk) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin content_chunks transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx,
		`DELETE FROM content_chunks WHERE professional_id = $1`, professionalID); err != nil {
		return fmt.Errorf("clear content_chunks: %w", err)
	}

	for i := range chunks {
		c := &chunks[i]
		c.ChunkID = chunk.ID(professionalID, c.Type, i)
		c.VectorID = chunk.VectorID(c.ChunkID)

		err := tx.QueryRow(ctx, `
			INSERT INTO content_chunks (
				professional_id, chunk_id, type,
				title, content, category,
				tags, importance, date_range,
				relevance_score, vector_id, embedding_model
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1.0, $10, $11)
			RETURNING id`,
			professionalID, c.ChunkID, string(c.Type),
			c.Title, c.Content, c.Category,
			textArray(c.Keywords), string(c.Importance), c.DateContext,
			c.VectorID, s.embeddingModel).Scan(&c.RowID)
		if err != nil {
			return fmt.Errorf("insert chunk %q: %w", c.ChunkID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit content_chunks: %w", err)
	}

	s.logger.Info("content chunks stored", "count", len(chunks))
	return nil
}

// replace runs delete-then-insert for one entity table inside a single
// transaction.
func (s *Store) replace(ctx context.Context, professionalID int64, table string, count int, insert func(pgx.Tx) error) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin %s transaction: %w", table, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx,
		`DELETE FROM `+table+` WHERE professional_id = $1`, professionalID); err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}

	if err := insert(tx); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", table, err)
	}

	s.logger.Info("rows replaced", "table", table, "count", count)
	return count, nil
}

// nullableDate maps the zero time to SQL NULL.
func nullableDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: !t.IsZero()}
}

// textArray keeps empty slices non-nil so the text[] columns get '{}'
// instead of NULL.
func textArray(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
