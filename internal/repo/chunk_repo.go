package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/docuchat/docuchat/internal/model"
)

// ChunkRepo is the vector store adapter: batched chunk persistence plus
// cosine-distance nearest-neighbor search over pgvector.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

type ChunkInput struct {
	Content   string
	Embedding []float32
}

// StoreBatch persists all chunks of one document in a single transaction.
// Either every chunk lands or none do; a partially ingested document must
// never be able to reach the ready state.
func (r *ChunkRepo) StoreBatch(ctx context.Context, documentID string, inputs []ChunkInput) ([]int64, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no chunks to store for document %s", documentID)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
		INSERT INTO chunks (document_id, content, embedding, pos)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	ids := make([]int64, 0, len(inputs))
	for position, input := range inputs {
		var id int64
		err := tx.QueryRowContext(ctx, query,
			documentID,
			input.Content,
			pgvector.NewVector(input.Embedding),
			position,
		).Scan(&id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Search returns up to k chunks nearest to vector by cosine distance,
// restricted to documents in scope. Equal distances are broken by ascending
// chunk id, which matches insertion order, so results are deterministic.
// An empty scope short-circuits to no results without touching the store.
func (r *ChunkRepo) Search(ctx context.Context, vector []float32, scope []string, k int) ([]model.ChunkMatch, error) {
	if len(scope) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = 10
	}
	const query = `
		SELECT c.id, c.document_id, c.content, c.pos,
		       c.embedding <=> $1 AS distance,
		       d.filename
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.document_id = ANY($2)
		ORDER BY distance ASC, c.id ASC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(vector), pq.Array(scope), k)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var matches []model.ChunkMatch
	for rows.Next() {
		var match model.ChunkMatch
		err := rows.Scan(
			&match.Chunk.ID,
			&match.Chunk.DocumentID,
			&match.Chunk.Content,
			&match.Chunk.Position,
			&match.Distance,
			&match.Filename,
		)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *ChunkRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM chunks WHERE document_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, documentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	const query = `DELETE FROM chunks WHERE document_id = $1`
	result, err := r.db.ExecContext(ctx, query, documentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
