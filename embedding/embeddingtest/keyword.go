// Package embeddingtest 테스트용 결정적 임베딩 생성기를 제공합니다.
package embeddingtest

import (
	"context"
	"hash/fnv"
	"strings"
	"sync/atomic"
	"unicode"

	"hotel-review-rag/embedding"
)

const (
	hashBuckets   = 64
	conceptWeight = 3
)

// DefaultConcepts 호텔 리뷰에서 자주 등장하는 주제어 묶음
var DefaultConcepts = map[string]string{
	"breakfast":   "food",
	"food":        "food",
	"restaurant":  "food",
	"dirty":       "cleanliness",
	"clean":       "cleanliness",
	"cleanliness": "cleanliness",
	"noisy":       "cleanliness",
	"smell":       "cleanliness",
	"location":    "location",
	"station":     "location",
	"staff":       "service",
	"friendly":    "service",
	"service":     "service",
}

// KeywordEmbedder 같은 주제어를 같은 차원에 모으고 나머지 단어는 해시 버킷에 넣는 임베딩 생성기.
// 같은 텍스트는 항상 같은 벡터가 됩니다.
type KeywordEmbedder struct {
	concepts map[string]int
	dims     int
	calls    atomic.Int64

	// Err 설정되면 모든 호출이 이 에러를 반환합니다
	Err error
}

// New 주제어 사전으로 임베딩 생성기를 만듭니다. nil이면 DefaultConcepts를 사용합니다.
func New(concepts map[string]string) *KeywordEmbedder {
	if concepts == nil {
		concepts = DefaultConcepts
	}
	index := map[string]int{}
	byWord := map[string]int{}
	for word, concept := range concepts {
		idx, ok := index[concept]
		if !ok {
			idx = len(index)
			index[concept] = idx
		}
		byWord[word] = idx
	}
	return &KeywordEmbedder{concepts: byWord, dims: len(index) + hashBuckets}
}

var _ embedding.Embedder = (*KeywordEmbedder)(nil)

// EmbedText 텍스트를 벡터로 변환합니다
func (e *KeywordEmbedder) EmbedText(_ context.Context, text string, _ embedding.TaskType) ([]float32, error) {
	e.calls.Add(1)
	if e.Err != nil {
		return nil, e.Err
	}

	vec := make([]float32, e.dims)
	conceptDims := e.dims - hashBuckets
	for _, tok := range tokenize(text) {
		if idx, ok := e.concepts[tok]; ok {
			vec[idx] += conceptWeight
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[conceptDims+int(h.Sum32()%hashBuckets)]++
	}
	return vec, nil
}

// Calls EmbedText가 호출된 횟수
func (e *KeywordEmbedder) Calls() int {
	return int(e.calls.Load())
}

func (e *KeywordEmbedder) ModelName() string { return "keyword-test" }

func (e *KeywordEmbedder) Close() error { return nil }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
