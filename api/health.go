package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DocumentCounter 인덱스에 저장된 문서 수 (db.Store가 구현)
type DocumentCounter interface {
	Count() int
}

type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Service    string    `json:"service"`
	Version    string    `json:"version"`
	LLMModel   string    `json:"llm_model,omitempty"`
	EmbedModel string    `json:"embed_model,omitempty"`
	Documents  int       `json:"documents"`
}

type HealthHandler struct {
	serviceName string
	version     string
	llmModel    string
	embedModel  string
	docs        DocumentCounter
}

func NewHealthHandler(serviceName, version, llmModel, embedModel string, docs DocumentCounter) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		llmModel:    llmModel,
		embedModel:  embedModel,
		docs:        docs,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	count := 0
	if h.docs != nil {
		count = h.docs.Count()
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Service:    h.serviceName,
		Version:    h.version,
		LLMModel:   h.llmModel,
		EmbedModel: h.embedModel,
		Documents:  count,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
