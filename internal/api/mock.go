package api

import "strings"

// Canned answers keyed by query keywords. They quote the measured
// numbers from the last full verification run so the frontend renders
// realistic payloads.

const (
	architectureAnswer = "The Digital Twin RAG system uses a hybrid architecture combining " +
		"PostgreSQL and Upstash Vector databases. The system maintains a relational schema for " +
		"professionals, experiences, skills, projects, and education, and leverages content-chunk " +
		"vector embeddings using the 1024-dimensional mixbread-large model. Current performance " +
		"metrics show 86.7% accuracy with 0.265s average latency and 3.8 queries per second throughput."

	performanceAnswer = "Current system performance metrics: average latency of 0.265 seconds, " +
		"throughput of 3.8 queries per second, and 86.7% test success rate (13/15 tests passing). " +
		"The vector search typically completes in under 100ms, while PostgreSQL queries average " +
		"165ms response time."

	testingAnswer = "The RAG system has been thoroughly tested with a success rate of 86.7% " +
		"(13 out of 15 tests passing). Testing covers vector similarity search, content retrieval, " +
		"chunk id mapping, and end-to-end query processing. Recent improvements fixed critical " +
		"chunk id mapping issues between the vector database and PostgreSQL."
)

// mockResponse picks a canned answer by keyword, falling back to a
// generic answer that echoes the query.
func mockResponse(query string) string {
	lower := strings.ToLower(query)

	switch {
	case containsAny(lower, "system", "architecture", "database"):
		return architectureAnswer
	case containsAny(lower, "performance", "speed", "latency"):
		return performanceAnswer
	case containsAny(lower, "test", "testing", "results"):
		return testingAnswer
	default:
		return "Based on your query about \"" + query + "\", I can provide information from the " +
			"knowledge base. The Digital Twin RAG system combines advanced vector search with " +
			"relational database querying to deliver accurate, contextual responses. The system " +
			"processes your request through semantic similarity matching and retrieves the most " +
			"relevant information from our comprehensive knowledge repository."
	}
}

// mockSources lists plausible provenance files for the canned answer.
func mockSources(query string) []string {
	lower := strings.ToLower(query)
	base := []string{"schema/complete_schema.sql", "test_rag_functionality.py"}

	switch {
	case containsAny(lower, "system", "architecture"):
		return append(base, "docs/current_system_overview.md", "IMPLEMENTATION_SUMMARY.md")
	case strings.Contains(lower, "performance"):
		return append(base, "rag_test_results.json", "upstash_vector_test_results.json")
	case strings.Contains(lower, "test"):
		return append(base, "test_rag_functionality.py", "debug_rag.py")
	default:
		return append(base, "README.md")
	}
}

// mockConfidence scores the query by length and technical vocabulary.
// Short queries lose confidence, long or technical ones gain it.
func mockConfidence(query string) float64 {
	const base = 0.85

	switch {
	case len(query) < 10:
		return max(0.6, base-0.2)
	case len(query) > 50:
		return min(0.95, base+0.1)
	}

	if containsAny(strings.ToLower(query), "database", "vector", "embedding", "sql", "performance", "latency") {
		return min(0.92, base+0.07)
	}
	return base
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
