package models

// Document 코퍼스에서 읽어온 리뷰 한 건을 나타내는 구조체
type Document struct {
	ID         string            // 문서 ID (CSV 행 번호 또는 Notion 페이지 ID)
	Content    string            // 리뷰 본문 (앞뒤 공백 제거됨)
	Vector     []float32         // 임베딩 벡터
	Meta       map[string]string // 메타데이터 (출처, 행 번호 등)
	Similarity float32           // 검색 시 쿼리와의 유사도 (검색 결과에서만 채워짐)
}
