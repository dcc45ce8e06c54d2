package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"hotel-review-rag/models"

	"github.com/philippgille/chromem-go"
)

// Store 벡터 DB 저장소
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
}

// collectionMetadata cosine 거리 계산 방식 설정
var collectionMetadata = map[string]string{
	"hnsw:space": "cosine",
}

// noEmbedding 벡터는 항상 미리 계산해서 넣기 때문에 컬렉션 자체 임베딩은 쓰지 않습니다
func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("컬렉션 임베딩 함수는 사용하지 않습니다")
}

// Open 벡터 DB 저장소를 엽니다 (기존 DB가 있으면 로드, 없으면 생성)
func Open(dbPath, collectionName string, compress bool) (*Store, error) {
	db, err := chromem.NewPersistentDB(dbPath, compress)
	if err != nil {
		return nil, fmt.Errorf("DB 초기화 실패: %w", err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, collectionMetadata, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("Collection 생성 실패: %w", err)
	}

	return &Store{db: db, collection: collection, name: collectionName}, nil
}

// Exists DB 디렉터리가 존재하는지 확인합니다
func Exists(dbPath string) bool {
	_, err := os.Stat(dbPath)
	return err == nil
}

// Count 저장된 문서의 개수를 반환합니다
func (s *Store) Count() int {
	return s.collection.Count()
}

// Reset 컬렉션을 삭제하고 다시 생성합니다 (리로드 시 사용)
func (s *Store) Reset() error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("Collection 삭제 실패: %w", err)
	}
	collection, err := s.db.CreateCollection(s.name, collectionMetadata, noEmbedding)
	if err != nil {
		return fmt.Errorf("Collection 생성 실패: %w", err)
	}
	s.collection = collection
	return nil
}

// AddDocuments 임베딩이 채워진 문서들을 벡터 DB에 추가합니다
func (s *Store) AddDocuments(ctx context.Context, docs []*models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		if len(doc.Vector) == 0 {
			return fmt.Errorf("문서에 임베딩 벡터가 없습니다: %s", doc.ID)
		}
		chromemDocs[i] = chromem.Document{
			ID:        doc.ID,
			Metadata:  doc.Meta,
			Embedding: doc.Vector,
			Content:   doc.Content,
		}
	}

	if err := s.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("문서 추가 실패: %w", err)
	}
	return nil
}

// Search 유사한 문서를 유사도 내림차순으로 검색합니다 (Top K).
// 인덱스가 비어있으면 빈 결과를 반환합니다.
func (s *Store) Search(ctx context.Context, queryVector []float32, topK int) ([]*models.Document, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("쿼리 벡터가 비어있습니다")
	}

	count := s.collection.Count()
	if topK > count {
		topK = count
	}
	if topK <= 0 {
		return []*models.Document{}, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, queryVector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("검색 실패: %w", err)
	}

	documents := make([]*models.Document, 0, len(results))
	for _, result := range results {
		doc := &models.Document{
			ID:         result.ID,
			Content:    result.Content,
			Similarity: result.Similarity,
		}
		if result.Metadata != nil {
			meta := make(map[string]string, len(result.Metadata))
			for k, v := range result.Metadata {
				meta[k] = v
			}
			doc.Meta = meta
		}
		documents = append(documents, doc)
	}

	return documents, nil
}

// GetByID ID로 저장된 리뷰를 가져옵니다. 없으면 models.ErrReviewNotFound를 반환합니다.
func (s *Store) GetByID(ctx context.Context, docID string) (*models.Document, error) {
	// chromem은 빈 ID와 없는 ID에만 에러를 반환합니다
	result, err := s.collection.GetByID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrReviewNotFound, err)
	}

	return &models.Document{
		ID:      result.ID,
		Content: result.Content,
		Vector:  result.Embedding,
		Meta:    result.Metadata,
	}, nil
}

// Close chromem-go의 PersistentDB는 쓰기 시점에 바로 저장되므로 정리할 것이 없습니다
func (s *Store) Close() error {
	return nil
}
