package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docuchat/docuchat/internal/model"
	appErr "github.com/docuchat/docuchat/internal/pkg/errors"
)

// Fixed responses. The two cases stay distinct on purpose: an empty scope
// set means the user never linked anything, zero matches means the linked
// documents had nothing relevant. Neither reaches the language model.
const (
	MsgNoDocumentsLinked = "No documents are linked to this chat yet. Link an uploaded document to ask questions about it."
	MsgNoRelevantInfo    = "I couldn't find any relevant information in the uploaded documents to answer your question."
)

const systemPrompt = "You are a helpful assistant that answers questions based ONLY on the provided document context. " +
	"If the context doesn't contain enough information to answer the question, say so honestly. " +
	"Do not make up information or use knowledge outside the provided context. " +
	"Cite the source document when possible."

const contextSeparator = "\n\n---\n\n"

// Embedder turns a query into a vector in the same space as stored chunks.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher answers k-nearest-neighbor queries restricted to a scope
// set of document ids.
type ChunkSearcher interface {
	Search(ctx context.Context, vector []float32, scope []string, k int) ([]model.ChunkMatch, error)
}

// Generator produces the final answer text from a system instruction and a
// grounded prompt.
type Generator interface {
	Answer(ctx context.Context, system, prompt string) (string, error)
}

type RetrievalResponder struct {
	embedder  Embedder
	store     ChunkSearcher
	generator Generator
	topK      int
	cache     *expirable.LRU[string, string]
}

func NewRetrievalResponder(embedder Embedder, store ChunkSearcher, generator Generator, topK int) *RetrievalResponder {
	if topK <= 0 {
		topK = 10
	}
	return &RetrievalResponder{
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      topK,
		cache:     expirable.NewLRU[string, string](2048, nil, 2*time.Hour),
	}
}

func (r *RetrievalResponder) GetResponse(ctx context.Context, userID, query string, scope []string) (string, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID))
	if len(scope) == 0 {
		logger.Debug("empty scope set, skipping retrieval")
		return MsgNoDocumentsLinked, nil
	}

	cacheKey := answerCacheKey(query, scope)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached, nil
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		logger.Error("query embedding failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", appErr.ErrEmbeddingFailed, err)
	}

	matches, err := r.store.Search(ctx, queryVec, scope, r.topK)
	if err != nil {
		logger.Error("similarity search failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", appErr.ErrStorageFailed, err)
	}
	if len(matches) == 0 {
		logger.Info("no relevant chunks in scope", zap.Int("documents", len(scope)))
		return MsgNoRelevantInfo, nil
	}

	prompt := buildPrompt(query, matches)
	answer, err := r.generator.Answer(ctx, systemPrompt, prompt)
	if err != nil {
		logger.Error("answer generation failed", zap.Error(err), zap.Int("context_chunks", len(matches)))
		return "", fmt.Errorf("%w: %v", appErr.ErrAnswerFailed, err)
	}

	r.cache.Add(cacheKey, answer)
	logger.Info("answer generated", zap.Int("context_chunks", len(matches)))
	return answer, nil
}

// buildPrompt renders retrieved chunks in ascending-distance order, each
// tagged with its source document for citation.
func buildPrompt(query string, matches []model.ChunkMatch) string {
	parts := make([]string, 0, len(matches))
	for _, match := range matches {
		source := match.Filename
		if source == "" {
			source = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", source, match.Chunk.Content))
	}
	contextBlock := strings.Join(parts, contextSeparator)
	return fmt.Sprintf("Context from uploaded documents:\n\n%s\n\n---\n\nQuestion: %s\n\nAnswer:", contextBlock, query)
}

func answerCacheKey(query string, scope []string) string {
	sorted := make([]string, len(scope))
	copy(sorted, scope)
	sort.Strings(sorted)
	h := sha256.New()
	_, _ = h.Write([]byte(query))
	for _, id := range sorted {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(id))
	}
	return hex.EncodeToString(h.Sum(nil))
}
