package notion

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hotel-review-rag/models"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"
)

const (
	pageSize = 100

	// Notion API 평균 허용량 (초당 3회)
	requestsPerSecond = 3
)

// databaseAPI Loader가 사용하는 Notion 데이터베이스 API
type databaseAPI interface {
	Get(ctx context.Context, id notionapi.DatabaseID) (*notionapi.Database, error)
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

// Loader Notion 데이터베이스의 각 행을 리뷰 문서로 읽어오는 구조체
type Loader struct {
	databases databaseAPI
	limiter   *rate.Limiter
}

// NewLoader 새로운 Notion 로더를 생성합니다
func NewLoader(apiKey string) *Loader {
	client := notionapi.NewClient(notionapi.Token(apiKey))
	return &Loader{
		databases: client.Database,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// LoadReviews 데이터베이스의 모든 행에서 property 값을 읽어 리뷰 문서로 변환합니다.
// property가 데이터베이스에 없으면 *models.SchemaError를 반환하고, 빈 값은 건너뜁니다.
func (l *Loader) LoadReviews(ctx context.Context, databaseID, property string) ([]*models.Document, error) {
	id := notionapi.DatabaseID(databaseID)

	database, err := l.databases.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("데이터베이스 조회 실패: %w", err)
	}
	if _, ok := database.Properties[property]; !ok {
		found := make([]string, 0, len(database.Properties))
		for name := range database.Properties {
			found = append(found, name)
		}
		sort.Strings(found)
		return nil, &models.SchemaError{Column: property, Required: []string{property}, Found: found}
	}

	pages, err := l.queryAll(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("데이터베이스 행 조회 실패: %w", err)
	}
	fmt.Printf("📄 총 %d개의 행을 찾았습니다.\n", len(pages))

	var documents []*models.Document
	for _, page := range pages {
		text := strings.TrimSpace(propertyText(page.Properties[property]))
		if text == "" {
			continue
		}
		pageID := string(page.ID)
		documents = append(documents, &models.Document{
			ID:      pageID,
			Content: text,
			Meta: map[string]string{
				"source":  "notion",
				"page_id": pageID,
				"url":     getPageURL(page),
			},
		})
	}

	return documents, nil
}

// queryAll 커서를 따라가며 모든 행을 가져옵니다
func (l *Loader) queryAll(ctx context.Context, id notionapi.DatabaseID) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req := &notionapi.DatabaseQueryRequest{PageSize: pageSize}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := l.databases.Query(ctx, id, req)
		if err != nil {
			return nil, err
		}
		allPages = append(allPages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// propertyText rich text 또는 title 속성의 평문을 반환합니다
func propertyText(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		return extractRichText(p.RichText)
	case *notionapi.TitleProperty:
		return extractRichText(p.Title)
	default:
		return ""
	}
}

// extractRichText RichText 배열에서 텍스트를 추출합니다
func extractRichText(richText []notionapi.RichText) string {
	var parts []string
	for _, rt := range richText {
		parts = append(parts, rt.PlainText)
	}
	return strings.Join(parts, "")
}

// getPageURL 페이지 URL을 생성합니다
func getPageURL(page notionapi.Page) string {
	return fmt.Sprintf("https://www.notion.so/%s", strings.ReplaceAll(string(page.ID), "-", ""))
}
