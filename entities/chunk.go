package entities

import "fmt"

// Chunk is one retrievable unit of extracted document text.
// Immutable once created; the id is deterministic so re-ingesting the
// same file set overwrites instead of duplicating.
type Chunk struct {
	ID             string `json:"id"`
	JobID          string `json:"job_id"`
	SourceFilename string `json:"source"`
	SequenceIndex  int    `json:"chunk_id"`
	Text           string `json:"text"`
	CharStart      int    `json:"char_start"`
	CharEnd        int    `json:"char_end"`
}

// ChunkID builds the deterministic chunk identifier for a
// (job, file, sequence) triple.
func ChunkID(jobID, sourceFilename string, seq int) string {
	return fmt.Sprintf("%s_%s_%d", jobID, sourceFilename, seq)
}

// EmbeddedChunk pairs a chunk with its embedding vector. Transient:
// produced by the embedder, handed to the vector index, not retained.
type EmbeddedChunk struct {
	Chunk
	Vector []float32
}

// ScoredChunk is a chunk returned from a similarity query together with
// its relevance score.
type ScoredChunk struct {
	Chunk
	Score float32
}

// SourceCitation is the provenance record attached to an assistant
// answer, derived from a retrieved chunk.
type SourceCitation struct {
	SourceFilename string  `json:"source"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float32 `json:"relevance_score"`
}
