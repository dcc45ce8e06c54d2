package rag

import (
	"context"
	"fmt"

	"hotel-review-rag/embedding"
	"hotel-review-rag/models"
)

// Index 벡터 검색 인터페이스 (db.Store가 구현)
type Index interface {
	Search(ctx context.Context, queryVector []float32, topK int) ([]*models.Document, error)
}

// Retriever 질문과 가장 가까운 리뷰를 찾습니다
type Retriever struct {
	embedder      embedding.Embedder
	index         Index
	minSimilarity float32
}

// NewRetriever 검색기를 생성합니다. minSimilarity가 0 이하면 유사도 필터를 쓰지 않습니다.
func NewRetriever(embedder embedding.Embedder, index Index, minSimilarity float32) *Retriever {
	return &Retriever{embedder: embedder, index: index, minSimilarity: minSimilarity}
}

// Retrieve 질문을 인덱스와 같은 공간으로 임베딩한 뒤 가까운 순서로 최대 k개의 리뷰를 반환합니다.
// 인덱스가 비어있으면 빈 결과를 반환합니다.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]*models.Document, error) {
	queryVector, err := r.embedder.EmbedText(ctx, query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: 질문 임베딩 실패: %w", models.ErrRetrievalUnavailable, err)
	}

	documents, err := r.index.Search(ctx, queryVector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRetrievalUnavailable, err)
	}

	if r.minSimilarity <= 0 {
		return documents, nil
	}

	filtered := documents[:0]
	for _, doc := range documents {
		if doc.Similarity >= r.minSimilarity {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}
