package etl

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinops/twindex/internal/chunk"
	"github.com/twinops/twindex/internal/log"
	"github.com/twinops/twindex/internal/profile"
	"github.com/twinops/twindex/internal/vector"
)

type fakeStore struct {
	professionalID int64
	chunks         []chunk.Chunk
	failChunks     error
}

func (f *fakeStore) UpsertProfessional(context.Context, profile.PersonalInfo) (int64, error) {
	return f.professionalID, nil
}

func (f *fakeStore) ReplaceExperiences(_ context.Context, _ int64, experiences []profile.Experience) (int, error) {
	return len(experiences), nil
}

func (f *fakeStore) ReplaceSkills(_ context.Context, _ int64, skills profile.Skills) (int, error) {
	n := len(skills.SoftSkills)
	for _, group := range skills.Technical {
		n += len(group.Skills)
	}
	return n, nil
}

func (f *fakeStore) ReplaceProjects(_ context.Context, _ int64, projects []profile.Project) (int, error) {
	return len(projects), nil
}

func (f *fakeStore) ReplaceEducation(_ context.Context, _ int64, education []profile.Education) (int, error) {
	return len(education), nil
}

func (f *fakeStore) UpsertRawDocument(context.Context, int64, *profile.Document) (int64, error) {
	return 1, nil
}

func (f *fakeStore) InsertChunks(_ context.Context, professionalID int64, chunks []chunk.Chunk) error {
	if f.failChunks != nil {
		return f.failChunks
	}
	for i := range chunks {
		c := &chunks[i]
		c.ChunkID = chunk.ID(professionalID, c.Type, i)
		c.VectorID = chunk.VectorID(c.ChunkID)
		c.RowID = int64(i + 1)
	}
	f.chunks = chunks
	return nil
}

type fakeIndex struct {
	upserts     [][]vector.Record
	resets      int
	vectorCount int
	failFirst   int // fail this many Upsert calls before succeeding
	calls       int
}

func (f *fakeIndex) Info(context.Context) (vector.IndexInfo, error) {
	return vector.IndexInfo{VectorCount: f.vectorCount, Dimension: 1024, SimilarityFunction: "COSINE"}, nil
}

func (f *fakeIndex) Reset(context.Context) error {
	f.resets++
	return nil
}

func (f *fakeIndex) Upsert(_ context.Context, records []vector.Record) error {
	f.calls++
	if f.calls <= f.failFirst {
		return errors.New("upstream unavailable")
	}
	copied := make([]vector.Record, len(records))
	copy(copied, records)
	f.upserts = append(f.upserts, copied)
	return nil
}

func testDocument() *profile.Document {
	return &profile.Document{
		PersonalInfo: profile.PersonalInfo{
			Name:    "Ada Example",
			Contact: profile.Contact{Email: "ada@example.com"},
			Summary: "Builds things.",
		},
		Experience: []profile.Experience{
			{Company: "Acme", Position: "Engineer", Duration: "2021-03 - Present"},
			{Company: "Globex", Position: "Engineer", Duration: "2019-01 - 2021-02"},
		},
		Skills: profile.Skills{
			Technical: []profile.SkillCategory{
				{Category: "Backend", Skills: []profile.TechnicalSkill{{Name: "Go"}}},
			},
		},
		Projects:  []profile.Project{{Name: "Twin", Status: "completed"}},
		Education: []profile.Education{{Institution: "TU Berlin"}},
	}
}

func testConfig() Config {
	return Config{BatchSize: 2, RetryAttempts: 3, RetryDelay: time.Millisecond}
}

func TestRunCountsEveryStage(t *testing.T) {
	store := &fakeStore{professionalID: 7}
	index := &fakeIndex{}
	p := New(store, index, testConfig(), nil)

	stats, err := p.Run(context.Background(), testDocument())
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.ProfessionalID)
	assert.Equal(t, 2, stats.Experiences)
	assert.Equal(t, 1, stats.Skills)
	assert.Equal(t, 1, stats.Projects)
	assert.Equal(t, 1, stats.Education)

	// identity + 2 experiences + 1 skill category + project + education
	assert.Equal(t, 6, stats.Chunks)
	assert.Equal(t, 6, stats.Vectors)
}

func TestRunBatchesByConfiguredSize(t *testing.T) {
	store := &fakeStore{professionalID: 1}
	index := &fakeIndex{}
	p := New(store, index, testConfig(), nil)

	_, err := p.Run(context.Background(), testDocument())
	require.NoError(t, err)

	// 6 chunks in batches of 2.
	require.Len(t, index.upserts, 3)
	for _, batch := range index.upserts {
		assert.Len(t, batch, 2)
	}
}

func TestRunVectorRecordsCarryChunkMetadata(t *testing.T) {
	store := &fakeStore{professionalID: 7}
	index := &fakeIndex{}
	p := New(store, index, testConfig(), nil)

	_, err := p.Run(context.Background(), testDocument())
	require.NoError(t, err)

	first := index.upserts[0][0]
	assert.Equal(t, "upstash-chunk-7-personal_info-0", first.ID)
	assert.NotEmpty(t, first.Data)
	assert.Equal(t, "personal_info", first.Meta["chunk_type"])
	assert.Equal(t, "high", first.Meta["importance"])
	assert.Equal(t, int64(7), first.Meta["professional_id"])
	assert.Equal(t, int64(1), first.Meta["chunk_id"], "relational row id travels with the vector")
	assert.NotEmpty(t, first.Meta["created_at"])
}

func TestRunRetriesFailedBatchExactlyOnce(t *testing.T) {
	store := &fakeStore{professionalID: 1}
	index := &fakeIndex{failFirst: 2}
	p := New(store, index, testConfig(), nil)

	stats, err := p.Run(context.Background(), testDocument())
	require.NoError(t, err)

	// Two failures then success: the first batch lands once, nothing is
	// double-counted.
	assert.Equal(t, 6, stats.Vectors)
	total := 0
	for _, batch := range index.upserts {
		total += len(batch)
	}
	assert.Equal(t, 6, total)
}

func TestRunFailsAfterRetriesExhausted(t *testing.T) {
	store := &fakeStore{professionalID: 1}
	index := &fakeIndex{failFirst: 3}
	p := New(store, index, testConfig(), nil)

	stats, err := p.Run(context.Background(), testDocument())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert vectors")
	assert.Zero(t, stats.Vectors, "no batch landed")
	assert.Equal(t, 1, stats.Errors)
	assert.Empty(t, index.upserts)
}

func TestRunLogsPartialStatsOnFatalError(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithWriter(&buf, log.Config{})

	store := &fakeStore{professionalID: 1}
	index := &fakeIndex{failFirst: 3}
	p := New(store, index, testConfig(), logger)

	stats, err := p.Run(context.Background(), testDocument())
	require.Error(t, err)

	// The relational stages committed before the vector stage failed;
	// their counts must survive into the diagnostic log line.
	assert.Equal(t, 2, stats.Experiences)
	assert.Equal(t, 1, stats.Errors)
	assert.NotZero(t, stats.Duration)

	out := buf.String()
	assert.Contains(t, out, "pipeline aborted")
	assert.Contains(t, out, "experiences=2")
	assert.Contains(t, out, "chunks=6")
	assert.Contains(t, out, "vectors=0")
	assert.Contains(t, out, "errors=1")
	assert.Contains(t, out, "upsert vectors")
}

func TestRunResetsIndexOnlyWhenAsked(t *testing.T) {
	store := &fakeStore{professionalID: 1}
	index := &fakeIndex{vectorCount: 42}
	cfg := testConfig()
	p := New(store, index, cfg, nil)

	_, err := p.Run(context.Background(), testDocument())
	require.NoError(t, err)
	assert.Zero(t, index.resets)

	store = &fakeStore{professionalID: 1}
	index = &fakeIndex{vectorCount: 42}
	cfg.ResetIndex = true
	p = New(store, index, cfg, nil)

	_, err = p.Run(context.Background(), testDocument())
	require.NoError(t, err)
	assert.Equal(t, 1, index.resets)
}

func TestRunSkipsResetOnEmptyIndex(t *testing.T) {
	store := &fakeStore{professionalID: 1}
	index := &fakeIndex{vectorCount: 0}
	cfg := testConfig()
	cfg.ResetIndex = true
	p := New(store, index, cfg, nil)

	_, err := p.Run(context.Background(), testDocument())
	require.NoError(t, err)
	assert.Zero(t, index.resets)
}

func TestRunStopsAtFailedStage(t *testing.T) {
	store := &fakeStore{professionalID: 1, failChunks: errors.New("disk full")}
	index := &fakeIndex{}
	p := New(store, index, testConfig(), nil)

	stats, err := p.Run(context.Background(), testDocument())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store content chunks")
	assert.Equal(t, 2, stats.Experiences, "stats valid up to the failed stage")
	assert.Equal(t, 1, stats.Errors)
	assert.Empty(t, index.upserts, "vector stage never ran")
}

func TestRunMinimalDocument(t *testing.T) {
	store := &fakeStore{professionalID: 1}
	index := &fakeIndex{}
	p := New(store, index, testConfig(), nil)

	doc := &profile.Document{
		PersonalInfo: profile.PersonalInfo{
			Name:    "Ada",
			Contact: profile.Contact{Email: "ada@example.com"},
			Summary: "Minimal.",
		},
	}
	stats, err := p.Run(context.Background(), doc)
	require.NoError(t, err)

	assert.Zero(t, stats.Experiences)
	assert.Zero(t, stats.Education)
	assert.Equal(t, 1, stats.Chunks, "identity chunk only")
	assert.Equal(t, 1, stats.Vectors)
}
