// Package etl orchestrates the load: profile document in, relational
// rows and vector records out.
//
// Stages run strictly in sequence and each commits on its own; a failed
// stage aborts the run but never rolls back the stages before it. The
// relational store guards itself with per-entity transactions, and the
// vector index is the last stage, so an aborted run can always be
// repaired by running again.
package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/twinops/twindex/internal/chunk"
	"github.com/twinops/twindex/internal/log"
	"github.com/twinops/twindex/internal/profile"
	"github.com/twinops/twindex/internal/retry"
	"github.com/twinops/twindex/internal/vector"
)

// Storer is the relational side of the pipeline.
type Storer interface {
	UpsertProfessional(ctx context.Context, info profile.PersonalInfo) (int64, error)
	ReplaceExperiences(ctx context.Context, professionalID int64, experiences []profile.Experience) (int, error)
	ReplaceSkills(ctx context.Context, professionalID int64, skills profile.Skills) (int, error)
	ReplaceProjects(ctx context.Context, professionalID int64, projects []profile.Project) (int, error)
	ReplaceEducation(ctx context.Context, professionalID int64, education []profile.Education) (int, error)
	UpsertRawDocument(ctx context.Context, professionalID int64, doc *profile.Document) (int64, error)
	InsertChunks(ctx context.Context, professionalID int64, chunks []chunk.Chunk) error
}

// Index is the vector side of the pipeline.
type Index interface {
	Info(ctx context.Context) (vector.IndexInfo, error)
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, records []vector.Record) error
}

// Config tunes the vector upsert stage.
type Config struct {
	BatchSize     int
	RetryAttempts int
	RetryDelay    time.Duration
	ResetIndex    bool
}

// Stats summarizes one pipeline run.
type Stats struct {
	ProfessionalID int64
	Experiences    int
	Skills         int
	Projects       int
	Education      int
	Chunks         int
	Vectors        int
	Errors         int
	Duration       time.Duration
}

func (s Stats) logFields() []any {
	return []any{
		"professional_id", s.ProfessionalID,
		"experiences", s.Experiences,
		"skills", s.Skills,
		"projects", s.Projects,
		"education", s.Education,
		"chunks", s.Chunks,
		"vectors", s.Vectors,
		"errors", s.Errors,
		"duration", s.Duration,
	}
}

// Pipeline wires the stages together.
type Pipeline struct {
	store  Storer
	index  Index
	cfg    Config
	logger log.Logger
}

// New creates a Pipeline.
func New(store Storer, index Index, cfg Config, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{store: store, index: index, cfg: cfg, logger: logger}
}

// Run executes every stage for one profile document and returns the run
// statistics. The returned Stats are valid up to the failed stage even
// when err is non-nil; on a fatal error the partial statistics are
// logged before the error is returned, so an aborted run still leaves a
// diagnostic trail.
func (p *Pipeline) Run(ctx context.Context, doc *profile.Document) (Stats, error) {
	start := time.Now()
	var stats Stats

	professionalID, err := p.store.UpsertProfessional(ctx, doc.PersonalInfo)
	if err != nil {
		return p.fail(stats, start, fmt.Errorf("upsert professional: %w", err))
	}
	stats.ProfessionalID = professionalID

	if stats.Experiences, err = p.store.ReplaceExperiences(ctx, professionalID, doc.Experience); err != nil {
		return p.fail(stats, start, fmt.Errorf("replace experiences: %w", err))
	}
	if stats.Skills, err = p.store.ReplaceSkills(ctx, professionalID, doc.Skills); err != nil {
		return p.fail(stats, start, fmt.Errorf("replace skills: %w", err))
	}
	if stats.Projects, err = p.store.ReplaceProjects(ctx, professionalID, doc.Projects); err != nil {
		return p.fail(stats, start, fmt.Errorf("replace projects: %w", err))
	}
	if stats.Education, err = p.store.ReplaceEducation(ctx, professionalID, doc.Education); err != nil {
		return p.fail(stats, start, fmt.Errorf("replace education: %w", err))
	}

	if _, err = p.store.UpsertRawDocument(ctx, professionalID, doc); err != nil {
		return p.fail(stats, start, fmt.Errorf("store raw document: %w", err))
	}

	chunks := chunk.Build(doc, professionalID)
	if err = p.store.InsertChunks(ctx, professionalID, chunks); err != nil {
		return p.fail(stats, start, fmt.Errorf("store content chunks: %w", err))
	}
	stats.Chunks = len(chunks)

	if stats.Vectors, err = p.upsertVectors(ctx, chunks); err != nil {
		return p.fail(stats, start, fmt.Errorf("upsert vectors: %w", err))
	}

	stats.Duration = time.Since(start)
	p.logger.Info("pipeline complete", stats.logFields()...)
	return stats, nil
}

// fail records the aborted run: the statistics accumulated before the
// failed stage are logged so the operator can see which stages already
// committed.
func (p *Pipeline) fail(stats Stats, start time.Time, err error) (Stats, error) {
	stats.Errors++
	stats.Duration = time.Since(start)
	p.logger.Error("pipeline aborted", append(stats.logFields(), "error", err)...)
	return stats, err
}

// upsertVectors pushes the persisted chunks to the vector index in
// batches. Each batch is retried with linear backoff; a batch that
// exhausts its attempts fails the run.
func (p *Pipeline) upsertVectors(ctx context.Context, chunks []chunk.Chunk) (int, error) {
	if p.cfg.ResetIndex {
		p.resetIndex(ctx)
	}

	batchSize := p.cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	retryCfg := retry.Config{
		MaxAttempts: p.cfg.RetryAttempts,
		Delay:       retry.Linear(p.cfg.RetryDelay),
	}

	now := time.Now().UTC().Format(time.RFC3339)
	upserted := 0
	for offset := 0; offset < len(chunks); offset += batchSize {
		end := min(offset+batchSize, len(chunks))
		batch := make([]vector.Record, 0, end-offset)
		for _, c := range chunks[offset:end] {
			batch = append(batch, vector.Record{
				ID:   c.VectorID,
				Data: c.Content,
				Meta: recordMeta(c, now),
			})
		}

		err := retry.Do(ctx, retryCfg, func(ctx context.Context) error {
			return p.index.Upsert(ctx, batch)
		})
		if err != nil {
			return upserted, fmt.Errorf("batch at offset %d: %w", offset, err)
		}

		upserted += len(batch)
		p.logger.Info("vector batch upserted", "count", len(batch), "total", upserted)
	}

	return upserted, nil
}

// resetIndex clears the index before the load. Failures here are
// warnings; stale vectors get overwritten by id anyway.
func (p *Pipeline) resetIndex(ctx context.Context) {
	info, err := p.index.Info(ctx)
	if err != nil {
		p.logger.Warn("could not read index info before reset", "error", err)
		return
	}
	if info.VectorCount == 0 {
		return
	}

	p.logger.Info("clearing existing vectors", "count", info.VectorCount)
	if err := p.index.Reset(ctx); err != nil {
		p.logger.Warn("could not clear existing vectors", "error", err)
	}
}

// recordMeta merges the chunk's own metadata with the fields every
// vector record carries.
func recordMeta(c chunk.Chunk, createdAt string) map[string]any {
	meta := make(map[string]any, len(c.Meta)+6)
	for k, v := range c.Meta {
		meta[k] = v
	}
	meta["chunk_id"] = c.RowID
	meta["vector_id"] = c.VectorID
	meta["chunk_type"] = string(c.Type)
	meta["importance"] = string(c.Importance)
	meta["keywords"] = c.Keywords
	meta["date_context"] = c.DateContext
	meta["created_at"] = createdAt
	return meta
}
