package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	generateResp string
	generateErr  error
	embedDim     int
	embedErr     error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, model string, req GenerateRequest) (string, error) {
	return s.generateResp, s.generateErr
}

func (s *stubProvider) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.embedDim)
	}
	return out, nil
}

func newTestManager(p IProvider, dim int) *Manager {
	return NewManager(NewGenerator(p, "m"), NewEmbedder(p, "m"), ManagerConfig{
		EmbedDimension:  dim,
		TimeoutSeconds:  5,
		Temperature:     0.3,
		MaxOutputTokens: 100,
	})
}

func TestManagerEmbedBatch(t *testing.T) {
	m := newTestManager(&stubProvider{embedDim: 8}, 8)
	vectors, err := m.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	empty, err := m.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, empty)
}

func TestManagerEmbedDimensionMismatch(t *testing.T) {
	m := newTestManager(&stubProvider{embedDim: 4}, 8)
	_, err := m.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "dimension mismatch")
}

func TestManagerAnswerTrimsAndRejectsEmpty(t *testing.T) {
	m := newTestManager(&stubProvider{generateResp: "  the answer \n", embedDim: 8}, 8)
	answer, err := m.Answer(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	require.Equal(t, "the answer", answer)

	m = newTestManager(&stubProvider{generateResp: "   ", embedDim: 8}, 8)
	_, err = m.Answer(context.Background(), "sys", "prompt")
	require.Error(t, err)
}

func TestManagerAnswerPropagatesProviderError(t *testing.T) {
	wantErr := errors.New("rate limited")
	m := newTestManager(&stubProvider{generateErr: wantErr, embedDim: 8}, 8)
	_, err := m.Answer(context.Background(), "sys", "prompt")
	require.ErrorIs(t, err, wantErr)
}
