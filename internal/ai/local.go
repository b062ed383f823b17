package ai

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"
)

// The local embedder maps text into a fixed 384-dimension space using
// feature hashing over word tokens and character trigrams. It needs no
// network and is fully deterministic: the same text always produces the
// same vector. Quality is far below a neural model, but it keeps the whole
// pipeline runnable offline and is the default in config.
const localDimension = 384

type localConfig struct {
	Dimension int `json:"dimension"`
}

type localProvider struct {
	dim int
}

func (p *localProvider) Name() string {
	return "local"
}

func (p *localProvider) Generate(ctx context.Context, model string, req GenerateRequest) (string, error) {
	return "", ErrUnavailable
}

func (p *localProvider) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	m := sharedHashModel(p.dim)
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, m.embed(text))
	}
	return out, nil
}

// hashModel is process-wide state. Concurrent first users race into
// sync.Once and converge on one instance, so every embedding in the process
// comes from the same model.
type hashModel struct {
	dim       int
	stopwords map[string]struct{}
	signs     [256]float32
}

var (
	hashModelOnce sync.Once
	hashModelInst *hashModel
)

func sharedHashModel(dim int) *hashModel {
	hashModelOnce.Do(func() {
		if dim <= 0 {
			dim = localDimension
		}
		m := &hashModel{
			dim:       dim,
			stopwords: buildStopwords(),
		}
		for i := range m.signs {
			h := fnv.New32a()
			_, _ = h.Write([]byte{byte(i), 0x9e, 0x37})
			if h.Sum32()&1 == 0 {
				m.signs[i] = 1
			} else {
				m.signs[i] = -1
			}
		}
		hashModelInst = m
	})
	return hashModelInst
}

func (m *hashModel) embed(text string) []float32 {
	vec := make([]float32, m.dim)
	tokens := tokenize(text)
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		if _, skip := m.stopwords[tok]; skip {
			continue
		}
		counts[tok]++
	}
	if len(counts) == 0 && strings.TrimSpace(text) != "" {
		counts[strings.TrimSpace(text)] = 1
	}
	for tok, count := range counts {
		weight := float32(1 + math.Log(float64(count)))
		m.addFeature(vec, "w:"+tok, weight)
		runes := []rune(tok)
		for i := 0; i+3 <= len(runes); i++ {
			m.addFeature(vec, "t:"+string(runes[i:i+3]), weight*0.5)
		}
	}
	normalize(vec)
	return vec
}

func (m *hashModel) addFeature(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(m.dim))
	vec[idx] += weight * m.signs[byte(sum>>56)]
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

func buildStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "so", "such", "into", "about", "can", "will", "just", "not",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func createLocalFactory(args interface{}) (IProvider, error) {
	cfg := &localConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	dim := cfg.Dimension
	if dim <= 0 {
		dim = localDimension
	}
	return &localProvider{dim: dim}, nil
}

func init() {
	Register("local", createLocalFactory)
}
