package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	upstash "github.com/upstash/vector-go"
)

func TestNormalizeScore(t *testing.T) {
	got := normalizeScore(upstash.VectorScore{
		Id:       "upstash-chunk-1-experience-0",
		Score:    0.87,
		Data:     "Experience at Acme",
		Metadata: map[string]any{"content_type": "experience"},
	})

	assert.Equal(t, "upstash-chunk-1-experience-0", got.ID)
	assert.InDelta(t, 0.87, got.Score, 1e-6)
	assert.Equal(t, "Experience at Acme", got.Data)
	assert.Equal(t, "experience", got.Meta["content_type"])
}

func TestNormalizeVectorUsesUnitScore(t *testing.T) {
	got := normalizeVector(upstash.Vector{
		Id:   "upstash-chunk-1-skills-4",
		Data: "Backend Skills",
	})

	assert.Equal(t, "upstash-chunk-1-skills-4", got.ID)
	assert.Equal(t, float64(1), got.Score)
	assert.Equal(t, "Backend Skills", got.Data)
	assert.Nil(t, got.Meta)
}
