// Package chunk derives retrieval-sized content chunks from a profile
// document.
//
// The chunk-id and vector-id formats live here and ONLY here. A previous
// generation of this system derived the vector id with ad-hoc string
// formatting at two call sites and shipped mismatched ids between the
// vector index and the relational store; every call site now goes through
// ID, VectorID, and ChunkIDFromVectorID.
package chunk

import (
	"fmt"
	"strings"
)

// Type tags the semantic slice of the profile a chunk was rendered from.
type Type string

// Chunk types, one per semantic slice of the profile document.
const (
	TypeIdentity   Type = "personal_info"
	TypeExperience Type = "experience"
	TypeSkills     Type = "skills"
	TypeProject    Type = "project"
	TypeEducation  Type = "education"
)

// Importance is the retrieval priority tier of a chunk.
type Importance string

// Importance tiers. The builder assigns them by fixed rules; there is no
// scoring model.
const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
)

// Chunk is one retrieval unit: rendered text plus metadata.
//
// RowID, ChunkID, and VectorID are assigned by the persister
// (store.InsertChunks) and are zero until then. The persister mutates the
// chunks it is given; the vector upserter depends on that.
type Chunk struct {
	Type        Type
	Title       string
	Content     string
	Category    string
	Importance  Importance
	Keywords    []string
	DateContext string         // optional date-range string, e.g. "2021-03 - Present"
	Meta        map[string]any // copied into the vector record's metadata

	// Assigned at persistence time.
	RowID    int64  // content_chunks.id
	ChunkID  string // derived textual id, see ID
	VectorID string // derived vector-store id, see VectorID
}

// vectorIDPrefix is the fixed, reversible prefix that maps a chunk id to
// its vector-store id.
const vectorIDPrefix = "upstash-"

// ID derives the textual chunk id for the chunk at the given position in
// the builder's output sequence.
func ID(professionalID int64, t Type, index int) string {
	return fmt.Sprintf("chunk-%d-%s-%d", professionalID, t, index)
}

// VectorID derives the vector-store id for a chunk id.
func VectorID(chunkID string) string {
	return vectorIDPrefix + chunkID
}

// ChunkIDFromVectorID recovers the chunk id from a vector-store id.
// Returns false if the id does not carry the expected prefix.
// Round-trip law: ChunkIDFromVectorID(VectorID(id)) == id for every id.
func ChunkIDFromVectorID(vectorID string) (string, bool) {
	return strings.CutPrefix(vectorID, vectorIDPrefix)
}
