package rag

import (
	"context"
	"fmt"
	"strings"
)

// Responder answers a user query against a scope set of document ids.
// Implementations are interchangeable and selected once at startup from
// configuration.
type Responder interface {
	GetResponse(ctx context.Context, userID, query string, scope []string) (string, error)
}

// PlaceholderMessage is returned by the placeholder engine, a safe default
// for deployments without an answer provider configured.
const PlaceholderMessage = "This is a placeholder response. No retrieval engine is active."

type placeholderResponder struct{}

func NewPlaceholderResponder() Responder {
	return placeholderResponder{}
}

func (placeholderResponder) GetResponse(ctx context.Context, userID, query string, scope []string) (string, error) {
	return PlaceholderMessage, nil
}

// NewResponder builds the engine named in config.
func NewResponder(engine string, retrieval *RetrievalResponder) (Responder, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "retrieval":
		if retrieval == nil {
			return nil, fmt.Errorf("retrieval engine requires an embedder, a chunk store and a generator")
		}
		return retrieval, nil
	case "placeholder":
		return NewPlaceholderResponder(), nil
	default:
		return nil, fmt.Errorf("unsupported rag engine: %s", engine)
	}
}
