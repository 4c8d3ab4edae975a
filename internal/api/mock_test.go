package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockResponseKeywordBranches(t *testing.T) {
	assert.Contains(t, mockResponse("describe the database architecture"), "hybrid architecture")
	assert.Contains(t, mockResponse("how fast is the latency"), "0.265 seconds")
	assert.Contains(t, mockResponse("show me the testing results"), "13 out of 15")
	assert.Contains(t, mockResponse("who are you"), `"who are you"`)
}

func TestMockSources(t *testing.T) {
	assert.Contains(t, mockSources("system overview"), "docs/current_system_overview.md")
	assert.Contains(t, mockSources("performance numbers"), "rag_test_results.json")
	assert.Contains(t, mockSources("test coverage"), "debug_rag.py")
	assert.Contains(t, mockSources("hello"), "README.md")

	// Every branch carries the base sources.
	for _, q := range []string{"system", "performance", "test", "hello"} {
		assert.Contains(t, mockSources(q), "schema/complete_schema.sql", "query %q", q)
	}
}

func TestMockConfidence(t *testing.T) {
	assert.InDelta(t, 0.65, mockConfidence("short"), 1e-9, "short queries lose confidence")
	assert.InDelta(t, 0.95, mockConfidence("this is a very long and detailed query about many things"), 1e-9)
	assert.InDelta(t, 0.92, mockConfidence("vector embedding query"), 1e-9, "technical terms gain confidence")
	assert.InDelta(t, 0.85, mockConfidence("a plain medium question"), 1e-9)
}
