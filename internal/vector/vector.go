// Package vector wraps the Upstash Vector index behind the small surface
// the rest of the program needs. Embeddings are produced server-side by
// the index's configured model; callers hand over raw text and get back
// one normalized Result shape from every read path, whether the hit came
// from a similarity query or a direct id fetch.
package vector

import (
	"context"
	"fmt"

	upstash "github.com/upstash/vector-go"
)

// Record is one unit of text to be embedded and stored.
type Record struct {
	ID   string
	Data string
	Meta map[string]any
}

// Result is a normalized read result. Score is the cosine similarity for
// query hits and 1 for direct fetches.
type Result struct {
	ID    string
	Score float64
	Data  string
	Meta  map[string]any
}

// IndexInfo is the subset of index state the pipeline and the
// verification harness care about.
type IndexInfo struct {
	VectorCount        int
	PendingCount       int
	IndexSize          int
	Dimension          int
	SimilarityFunction string
}

// Query describes one similarity search.
type Query struct {
	Text   string
	TopK   int
	Filter string // Upstash metadata filter expression, optional
}

// Client is the concrete Upstash-backed implementation. Consumers that
// want to fake it declare their own interface over the methods they use.
type Client struct {
	index *upstash.Index
}

// New connects to the Upstash Vector REST endpoint. No request is made
// until the first operation.
func New(url, token string) *Client {
	return &Client{index: upstash.NewIndex(url, token)}
}

// Info returns the index's current counts and configuration.
func (c *Client) Info(ctx context.Context) (IndexInfo, error) {
	info, err := c.index.Info()
	if err != nil {
		return IndexInfo{}, fmt.Errorf("index info: %w", err)
	}
	return IndexInfo{
		VectorCount:        info.VectorCount,
		PendingCount:       info.PendingVectorCount,
		IndexSize:          info.IndexSize,
		Dimension:          info.Dimension,
		SimilarityFunction: info.SimilarityFunction,
	}, nil
}

// Reset deletes every vector in the index.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.index.Reset(); err != nil {
		return fmt.Errorf("index reset: %w", err)
	}
	return nil
}

// Upsert writes one batch of records. The index embeds each record's
// Data field with its configured model.
func (c *Client) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	data := make([]upstash.UpsertData, 0, len(records))
	for _, r := range records {
		data = append(data, upstash.UpsertData{
			Id:       r.ID,
			Data:     r.Data,
			Metadata: r.Meta,
		})
	}

	if err := c.index.UpsertDataMany(data); err != nil {
		return fmt.Errorf("upsert %d records: %w", len(data), err)
	}
	return nil
}

// Query runs a similarity search over the index.
func (c *Client) Query(ctx context.Context, q Query) ([]Result, error) {
	scores, err := c.index.QueryData(upstash.QueryData{
		Data:            q.Text,
		TopK:            q.TopK,
		Filter:          q.Filter,
		IncludeMetadata: true,
		IncludeData:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results := make([]Result, 0, len(scores))
	for _, s := range scores {
		results = append(results, normalizeScore(s))
	}
	return results, nil
}

// Fetch retrieves records by id. Ids not present in the index are
// silently absent from the result.
func (c *Client) Fetch(ctx context.Context, ids []string) ([]Result, error) {
	vectors, err := c.index.Fetch(upstash.Fetch{
		Ids:             ids,
		IncludeMetadata: true,
		IncludeData:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %d ids: %w", len(ids), err)
	}

	results := make([]Result, 0, len(vectors))
	for _, v := range vectors {
		results = append(results, normalizeVector(v))
	}
	return results, nil
}

// Delete removes the given ids and reports how many existed.
func (c *Client) Delete(ctx context.Context, ids []string) (int, error) {
	deleted, err := c.index.DeleteMany(ids)
	if err != nil {
		return 0, fmt.Errorf("delete %d ids: %w", len(ids), err)
	}
	return deleted, nil
}

func normalizeScore(s upstash.VectorScore) Result {
	return Result{ID: s.Id, Score: float64(s.Score), Data: s.Data, Meta: s.Metadata}
}

func normalizeVector(v upstash.Vector) Result {
	return Result{ID: v.Id, Score: 1, Data: v.Data, Meta: v.Metadata}
}
