// Package verify runs an end-to-end health suite against the vector
// index: connection, configuration, server-side embedding, storage and
// retrieval, similarity search, metadata filtering, batch throughput,
// concurrent queries, and cleanup of everything it wrote.
package verify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/twinops/twindex/internal/log"
	"github.com/twinops/twindex/internal/vector"
)

// expectedDimension and expectedSimilarity are what the pipeline's
// embedding model requires of the index.
const (
	expectedDimension  = 1024
	expectedSimilarity = "cosine"
)

// settleDelay gives the index time to make fresh upserts searchable
// before the filtering check queries them.
const settleDelay = time.Second

// sampleTexts seed the index during the suite. Professional-profile
// flavored so similarity scores behave like production data.
var sampleTexts = []string{
	"Experienced software engineer with expertise in AI and machine learning",
	"Led development of scalable web applications using Next.js and React",
	"Implemented RAG systems for improved document search and retrieval",
	"DevOps engineer specializing in Kubernetes and cloud infrastructure",
	"Full-stack developer with Python, TypeScript, and PostgreSQL experience",
	"Machine learning engineer focused on NLP and computer vision",
	"Cloud architect designing microservices on AWS and Azure",
	"Data scientist building predictive models and analytics dashboards",
}

var filterCategories = []string{"engineering", "development", "ai"}

// Index is the vector surface the suite exercises.
type Index interface {
	Info(ctx context.Context) (vector.IndexInfo, error)
	Upsert(ctx context.Context, records []vector.Record) error
	Query(ctx context.Context, q vector.Query) ([]vector.Result, error)
	Fetch(ctx context.Context, ids []string) ([]vector.Result, error)
	Delete(ctx context.Context, ids []string) (int, error)
}

// Result is the outcome of one check.
type Result struct {
	Name     string         `json:"test"`
	Success  bool           `json:"success"`
	Duration float64        `json:"duration"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Summary aggregates a full run.
type Summary struct {
	TotalTests  int      `json:"total_tests"`
	Passed      int      `json:"passed"`
	Failed      int      `json:"failed"`
	SuccessRate float64  `json:"success_rate"`
	Duration    float64  `json:"duration"`
	AllPassed   bool     `json:"all_passed"`
	Results     []Result `json:"results"`
}

// Runner executes the suite.
type Runner struct {
	index  Index
	logger log.Logger
	settle time.Duration
}

// NewRunner creates a Runner for the given index.
func NewRunner(index Index, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{index: index, logger: logger, settle: settleDelay}
}

// Run executes every check in order and returns the summary. Checks
// after a failed one still run; cleanup always runs last.
func (r *Runner) Run(ctx context.Context) Summary {
	checks := []func(context.Context) Result{
		r.checkConnection,
		r.checkConfiguration,
		r.checkEmbedding,
		r.checkStorageRetrieval,
		r.checkSimilaritySearch,
		r.checkMetadataFiltering,
		r.checkBatchPerformance,
		r.checkConcurrentQueries,
		r.cleanup,
	}

	var summary Summary
	for _, check := range checks {
		result := r.timed(ctx, check)
		summary.Results = append(summary.Results, result)
		summary.Duration += result.Duration
		if result.Success {
			summary.Passed++
			r.logger.Info("check passed", "name", result.Name, "duration", result.Duration)
		} else {
			summary.Failed++
			r.logger.Error("check failed", "name", result.Name, "error", result.Error)
		}
	}

	summary.TotalTests = len(summary.Results)
	summary.AllPassed = summary.Failed == 0
	if summary.TotalTests > 0 {
		summary.SuccessRate = float64(summary.Passed) / float64(summary.TotalTests)
	}
	return summary
}

func (r *Runner) timed(ctx context.Context, check func(context.Context) Result) Result {
	start := time.Now()
	result := check(ctx)
	result.Duration = time.Since(start).Seconds()
	return result
}

func (r *Runner) checkConnection(ctx context.Context) Result {
	info, err := r.index.Info(ctx)
	if err != nil {
		return failed("Connection & Configuration", err)
	}
	return Result{
		Name:    "Connection & Configuration",
		Success: true,
		Details: map[string]any{
			"vector_count":        info.VectorCount,
			"pending_count":       info.PendingCount,
			"index_size":          info.IndexSize,
			"dimension":           info.Dimension,
			"similarity_function": info.SimilarityFunction,
		},
	}
}

func (r *Runner) checkConfiguration(ctx context.Context) Result {
	info, err := r.index.Info(ctx)
	if err != nil {
		return failed("Database Configuration", err)
	}

	dimensionOK := info.Dimension == expectedDimension
	similarityOK := strings.Contains(strings.ToLower(info.SimilarityFunction), expectedSimilarity)

	result := Result{
		Name:    "Database Configuration",
		Success: dimensionOK && similarityOK,
		Details: map[string]any{
			"dimension":           info.Dimension,
			"expected_dimension":  expectedDimension,
			"similarity_function": info.SimilarityFunction,
			"cosine_similarity":   similarityOK,
		},
	}
	if !result.Success {
		result.Error = fmt.Sprintf("index configured as %dd/%s, need %dd/%s",
			info.Dimension, info.SimilarityFunction, expectedDimension, expectedSimilarity)
	}
	return result
}

// checkEmbedding upserts raw text and queries it back. A hit proves the
// index embedded the text server-side.
func (r *Runner) checkEmbedding(ctx context.Context) Result {
	const name = "Embedding Generation"
	text := sampleTexts[0]

	err := r.index.Upsert(ctx, []vector.Record{{
		ID:   "verify-embedding-1",
		Data: text,
		Meta: map[string]any{"type": "verify", "content": text},
	}})
	if err != nil {
		return failed(name, err)
	}

	results, err := r.index.Query(ctx, vector.Query{Text: text, TopK: 1})
	if err != nil {
		return failed(name, err)
	}
	if len(results) == 0 {
		return Result{Name: name, Error: "vector stored but not searchable, embedding generation may have failed"}
	}

	return Result{
		Name:    name,
		Success: true,
		Details: map[string]any{
			"vector_id": "verify-embedding-1",
			"top_score": results[0].Score,
		},
	}
}

func (r *Runner) checkStorageRetrieval(ctx context.Context) Result {
	const name = "Vector Storage & Retrieval"

	records := make([]vector.Record, 5)
	ids := make([]string, 5)
	for i := range records {
		ids[i] = fmt.Sprintf("verify-vector-%d", i)
		records[i] = vector.Record{
			ID:   ids[i],
			Data: sampleTexts[i],
			Meta: map[string]any{
				"type":     "professional",
				"category": filterCategories[i%len(filterCategories)],
				"index":    i,
			},
		}
	}

	if err := r.index.Upsert(ctx, records); err != nil {
		return failed(name, err)
	}

	fetched, err := r.index.Fetch(ctx, ids)
	if err != nil {
		return failed(name, err)
	}

	metadataPreserved := len(fetched) > 0
	for _, got := range fetched {
		if got.Meta["type"] != "professional" || got.Meta["category"] == nil {
			metadataPreserved = false
			break
		}
	}

	result := Result{
		Name:    name,
		Success: len(fetched) == len(records) && metadataPreserved,
		Details: map[string]any{
			"inserted":           len(records),
			"retrieved":          len(fetched),
			"metadata_preserved": metadataPreserved,
		},
	}
	if !result.Success {
		result.Error = fmt.Sprintf("retrieved %d of %d vectors, metadata preserved: %v",
			len(fetched), len(records), metadataPreserved)
	}
	return result
}

func (r *Runner) checkSimilaritySearch(ctx context.Context) Result {
	const name = "Similarity Search"
	const query = "Software engineering and AI development expertise"

	results, err := r.index.Query(ctx, vector.Query{Text: query, TopK: 3})
	if err != nil {
		return failed(name, err)
	}

	metadataFound := false
	var topScore float64
	for i, res := range results {
		if i == 0 {
			topScore = res.Score
		}
		if len(res.Meta) > 0 {
			metadataFound = true
		}
	}

	result := Result{
		Name:    name,
		Success: len(results) > 0 && metadataFound && topScore > 0.5,
		Details: map[string]any{
			"query":            query,
			"results":          len(results),
			"top_score":        topScore,
			"metadata_present": metadataFound,
		},
	}
	if !result.Success {
		result.Error = fmt.Sprintf("%d results, top score %.3f, metadata present: %v",
			len(results), topScore, metadataFound)
	}
	return result
}

func (r *Runner) checkMetadataFiltering(ctx context.Context) Result {
	const name = "Metadata Filtering"

	records := make([]vector.Record, len(filterCategories))
	for i, category := range filterCategories {
		records[i] = vector.Record{
			ID:   fmt.Sprintf("verify-filter-%d", i),
			Data: category + " related content: " + sampleTexts[i],
			Meta: map[string]any{"category": category, "type": "filter_verify", "index": i},
		}
	}
	if err := r.index.Upsert(ctx, records); err != nil {
		return failed(name, err)
	}

	// Fresh upserts are indexed asynchronously.
	select {
	case <-ctx.Done():
		return failed(name, ctx.Err())
	case <-time.After(r.settle):
	}

	results, err := r.index.Query(ctx, vector.Query{
		Text:   "development and engineering",
		TopK:   5,
		Filter: "category = 'engineering'",
	})
	if err != nil {
		return failed(name, err)
	}

	filterApplied := true
	for _, res := range results {
		if res.Meta["category"] != "engineering" {
			filterApplied = false
		}
	}

	result := Result{
		Name:    name,
		Success: len(results) > 0 && filterApplied,
		Details: map[string]any{
			"filter":         "category = 'engineering'",
			"results":        len(results),
			"filter_applied": filterApplied,
		},
	}
	if !result.Success {
		result.Error = fmt.Sprintf("%d results, filter applied: %v", len(results), filterApplied)
	}
	return result
}

func (r *Runner) checkBatchPerformance(ctx context.Context) Result {
	const name = "Batch Operations Performance"
	const batchSize = 10

	records := make([]vector.Record, batchSize)
	for i := range records {
		text := fmt.Sprintf("Batch verify vector %d: %s", i, sampleTexts[i%len(sampleTexts)])
		records[i] = vector.Record{
			ID:   fmt.Sprintf("verify-batch-%d", i),
			Data: text,
			Meta: map[string]any{"batch": "performance_verify", "index": i},
		}
	}

	upsertStart := time.Now()
	if err := r.index.Upsert(ctx, records); err != nil {
		return failed(name, err)
	}
	upsertTime := time.Since(upsertStart)

	queryStart := time.Now()
	results, err := r.index.Query(ctx, vector.Query{Text: "batch verify performance", TopK: 5})
	if err != nil {
		return failed(name, err)
	}
	queryTime := time.Since(queryStart)

	return Result{
		Name:    name,
		Success: true,
		Details: map[string]any{
			"batch_size":  batchSize,
			"upsert_time": upsertTime.Seconds(),
			"query_time":  queryTime.Seconds(),
			"upsert_rate": float64(batchSize) / upsertTime.Seconds(),
			"results":     len(results),
		},
	}
}

// checkConcurrentQueries fires one query per sample text through a
// worker pool sized to the query count. Each query's error is captured
// on its own; one failure never cancels the siblings.
func (r *Runner) checkConcurrentQueries(ctx context.Context) Result {
	const name = "Concurrent Queries"

	pool, err := ants.NewPool(len(sampleTexts))
	if err != nil {
		return failed(name, err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	errs := make([]error, len(sampleTexts))
	for i, text := range sampleTexts {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			_, errs[i] = r.index.Query(ctx, vector.Query{Text: text, TopK: 3})
		})
		if submitErr != nil {
			errs[i] = submitErr
			wg.Done()
		}
	}
	wg.Wait()

	failures := 0
	var firstErr string
	for _, err := range errs {
		if err != nil {
			failures++
			if firstErr == "" {
				firstErr = err.Error()
			}
		}
	}

	result := Result{
		Name:    name,
		Success: failures == 0,
		Details: map[string]any{
			"queries":  len(sampleTexts),
			"failures": failures,
		},
	}
	if failures > 0 {
		result.Error = fmt.Sprintf("%d of %d queries failed, first: %s", failures, len(sampleTexts), firstErr)
	}
	return result
}

// cleanup deletes every id the suite may have written.
func (r *Runner) cleanup(ctx context.Context) Result {
	const name = "Cleanup Test Data"

	ids := []string{"verify-embedding-1"}
	for i := range 5 {
		ids = append(ids, fmt.Sprintf("verify-vector-%d", i))
	}
	for i := range filterCategories {
		ids = append(ids, fmt.Sprintf("verify-filter-%d", i))
	}
	for i := range 10 {
		ids = append(ids, fmt.Sprintf("verify-batch-%d", i))
	}

	deleted, err := r.index.Delete(ctx, ids)
	if err != nil {
		return failed(name, err)
	}

	return Result{
		Name:    name,
		Success: true,
		Details: map[string]any{
			"ids_processed": len(ids),
			"deleted":       deleted,
		},
	}
}

func failed(name string, err error) Result {
	return Result{Name: name, Error: err.Error()}
}
