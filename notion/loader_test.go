package notion

import (
	"context"
	"errors"
	"testing"

	"hotel-review-rag/models"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestLoader(fake *fakeDatabases) *Loader {
	return &Loader{databases: fake, limiter: rate.NewLimiter(rate.Inf, 1)}
}

type fakeDatabases struct {
	database *notionapi.Database
	pages    [][]notionapi.Page
	getErr   error

	requests []*notionapi.DatabaseQueryRequest
}

func (f *fakeDatabases) Get(ctx context.Context, id notionapi.DatabaseID) (*notionapi.Database, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.database, nil
}

func (f *fakeDatabases) Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	f.requests = append(f.requests, req)
	i := len(f.requests) - 1
	resp := &notionapi.DatabaseQueryResponse{Results: f.pages[i]}
	if i < len(f.pages)-1 {
		resp.HasMore = true
		resp.NextCursor = notionapi.Cursor("cursor-next")
	}
	return resp, nil
}

func reviewPage(id, text string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Name":   &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: "Guest " + id}}},
			"review": &notionapi.RichTextProperty{RichText: []notionapi.RichText{{PlainText: text}}},
		},
	}
}

func reviewDatabase() *notionapi.Database {
	return &notionapi.Database{
		Properties: notionapi.PropertyConfigs{
			"Name":   &notionapi.TitlePropertyConfig{},
			"review": &notionapi.RichTextPropertyConfig{},
		},
	}
}

func TestLoadReviews_PaginatesAndDropsBlanks(t *testing.T) {
	fake := &fakeDatabases{
		database: reviewDatabase(),
		pages: [][]notionapi.Page{
			{reviewPage("p-1", "  Great breakfast  "), reviewPage("p-2", "   ")},
			{reviewPage("p-3", "Room was dirty")},
		},
	}
	loader := newTestLoader(fake)

	docs, err := loader.LoadReviews(context.Background(), "db-1", "review")
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "p-1", docs[0].ID)
	assert.Equal(t, "Great breakfast", docs[0].Content)
	assert.Equal(t, "notion", docs[0].Meta["source"])
	assert.Equal(t, "Room was dirty", docs[1].Content)

	require.Len(t, fake.requests, 2)
	assert.Equal(t, pageSize, fake.requests[0].PageSize)
	assert.Empty(t, fake.requests[0].StartCursor)
	assert.Equal(t, notionapi.Cursor("cursor-next"), fake.requests[1].StartCursor)
}

func TestLoadReviews_TitleProperty(t *testing.T) {
	fake := &fakeDatabases{
		database: reviewDatabase(),
		pages:    [][]notionapi.Page{{reviewPage("p-1", "ignored")}},
	}
	loader := newTestLoader(fake)

	docs, err := loader.LoadReviews(context.Background(), "db-1", "Name")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Guest p-1", docs[0].Content)
}

func TestLoadReviews_MissingProperty(t *testing.T) {
	fake := &fakeDatabases{database: reviewDatabase()}
	loader := newTestLoader(fake)

	_, err := loader.LoadReviews(context.Background(), "db-1", "comment")

	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"comment"}, schemaErr.Required)
	assert.Equal(t, []string{"Name", "review"}, schemaErr.Found)
	assert.Empty(t, fake.requests)
}

func TestLoadReviews_GetError(t *testing.T) {
	fake := &fakeDatabases{getErr: errors.New("unauthorized")}
	loader := newTestLoader(fake)

	_, err := loader.LoadReviews(context.Background(), "db-1", "review")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestGetPageURL(t *testing.T) {
	page := notionapi.Page{ID: notionapi.ObjectID("abc-def-123")}
	assert.Equal(t, "https://www.notion.so/abcdef123", getPageURL(page))
}
