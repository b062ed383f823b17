package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ManagerConfig struct {
	EmbedDimension  int
	TimeoutSeconds  int
	Temperature     float32
	MaxOutputTokens int
}

// Manager binds one generator and one embedder for the process lifetime.
// Documents and queries must share the same embedding space, so the whole
// application goes through a single Manager.
type Manager struct {
	generator IGenerator
	embedder  IEmbedder
	cfg       ManagerConfig
}

func NewManager(generator IGenerator, embedder IEmbedder, cfg ManagerConfig) *Manager {
	return &Manager{generator: generator, embedder: embedder, cfg: cfg}
}

// EmbedBatch embeds all texts in one provider call and verifies every
// returned vector has the configured dimensionality. A mismatch means the
// provider or model was swapped under stored vectors, which would silently
// corrupt similarity search.
func (m *Manager) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if len(vec) != m.cfg.EmbedDimension {
			return nil, fmt.Errorf("embedding dimension mismatch at input %d: got %d, want %d", i, len(vec), m.cfg.EmbedDimension)
		}
	}
	return vectors, nil
}

func (m *Manager) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Answer runs one grounded generation call under the configured timeout,
// temperature and output token limit.
func (m *Manager) Answer(ctx context.Context, system, prompt string) (string, error) {
	if m.generator == nil {
		return "", fmt.Errorf("generator not configured")
	}
	if m.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	resp, err := m.generator.Generate(ctx, GenerateRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: m.cfg.Temperature,
		MaxTokens:   m.cfg.MaxOutputTokens,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

func (m *Manager) Dimension() int {
	return m.cfg.EmbedDimension
}

func (m *Manager) EmbeddingModelName() string {
	if m.embedder == nil {
		return ""
	}
	return m.embedder.ModelName()
}
