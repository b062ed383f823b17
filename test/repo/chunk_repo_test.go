package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/model"
	"github.com/docuchat/docuchat/internal/repo"
	"github.com/docuchat/docuchat/test/testutil"
)

const testDim = 384

// basisVector returns a unit vector pointing along one axis, so cosine
// distances in tests are exactly 0 or 1.
func basisVector(axis int) []float32 {
	v := make([]float32, testDim)
	v[axis] = 1
	return v
}

func TestChunkRepoStoreAndSearch(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedUser(t, db, "user-1")
	seedDocument(t, db, "user-1", "doc-a", model.StatusReady)
	seedDocument(t, db, "user-1", "doc-b", model.StatusReady)

	chunks := repo.NewChunkRepo(db)
	idsA, err := chunks.StoreBatch(context.Background(), "doc-a", []repo.ChunkInput{
		{Content: "alpha", Embedding: basisVector(0)},
		{Content: "beta", Embedding: basisVector(1)},
	})
	require.NoError(t, err)
	require.Len(t, idsA, 2)

	_, err = chunks.StoreBatch(context.Background(), "doc-b", []repo.ChunkInput{
		{Content: "gamma", Embedding: basisVector(0)},
	})
	require.NoError(t, err)

	matches, err := chunks.Search(context.Background(), basisVector(0), []string{"doc-a"}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "alpha", matches[0].Chunk.Content)
	require.InDelta(t, 0, matches[0].Distance, 1e-6)
	require.Equal(t, "doc-a.md", matches[0].Filename)

	// doc-b is outside the scope even though its chunk matches exactly
	for _, m := range matches {
		require.Equal(t, "doc-a", m.Chunk.DocumentID)
	}
}

func TestChunkRepoSearchEmptyScope(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	chunks := repo.NewChunkRepo(db)
	matches, err := chunks.Search(context.Background(), basisVector(0), nil, 10)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestChunkRepoSearchTieBreakByID(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedUser(t, db, "user-1")
	seedDocument(t, db, "user-1", "doc-a", model.StatusReady)

	chunks := repo.NewChunkRepo(db)
	ids, err := chunks.StoreBatch(context.Background(), "doc-a", []repo.ChunkInput{
		{Content: "first", Embedding: basisVector(2)},
		{Content: "second", Embedding: basisVector(2)},
		{Content: "third", Embedding: basisVector(2)},
	})
	require.NoError(t, err)

	matches, err := chunks.Search(context.Background(), basisVector(2), []string{"doc-a"}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	for i, m := range matches {
		require.Equal(t, ids[i], m.Chunk.ID)
	}
	require.Equal(t, []string{"first", "second", "third"},
		[]string{matches[0].Chunk.Content, matches[1].Chunk.Content, matches[2].Chunk.Content})
}

func TestChunkRepoStoreBatchAtomic(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedUser(t, db, "user-1")
	seedDocument(t, db, "user-1", "doc-a", model.StatusReady)

	chunks := repo.NewChunkRepo(db)
	_, err := chunks.StoreBatch(context.Background(), "doc-a", []repo.ChunkInput{
		{Content: "good", Embedding: basisVector(0)},
		{Content: "bad dimension", Embedding: []float32{1, 0}},
	})
	require.Error(t, err)

	count, err := chunks.CountByDocument(context.Background(), "doc-a")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestChunkRepoCascadeDelete(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	seedUser(t, db, "user-1")
	seedDocument(t, db, "user-1", "doc-a", model.StatusReady)

	chunks := repo.NewChunkRepo(db)
	_, err := chunks.StoreBatch(context.Background(), "doc-a", []repo.ChunkInput{
		{Content: "alpha", Embedding: basisVector(0)},
		{Content: "beta", Embedding: basisVector(1)},
	})
	require.NoError(t, err)

	docs := repo.NewDocumentRepo(db)
	require.NoError(t, docs.Delete(context.Background(), "user-1", "doc-a"))

	count, err := chunks.CountByDocument(context.Background(), "doc-a")
	require.NoError(t, err)
	require.Zero(t, count)
}
