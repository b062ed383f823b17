package model

// Chunk is one embedded text segment of a document. Chunks are written in
// bulk during ingestion and never updated; they disappear with their
// document via FK cascade.
type Chunk struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
	Position   int       `json:"position"`
}

// ChunkMatch is a chunk paired with its cosine distance from a query vector
// and the owning document's filename for citation. Never persisted.
type ChunkMatch struct {
	Chunk    Chunk
	Distance float64
	Filename string
}
