package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"hotel-review-rag/models"
	"hotel-review-rag/rag"

	"github.com/gin-gonic/gin"
)

// fallbackMessage 프론트엔드 파일이 없을 때 / 에서 돌려주는 메시지
const fallbackMessage = "호텔 리뷰 질의응답 API가 실행 중입니다. 프론트엔드 파일을 찾을 수 없어 /ask?query=... 로 직접 질문해주세요."

// Asker 질문을 받아 답변을 돌려주는 질의 서비스 (rag.Searcher가 구현)
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// ReviewGetter ID로 인덱스에 저장된 리뷰를 조회합니다 (db.Store가 구현)
type ReviewGetter interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
}

// AskRequest POST /ask 요청 본문
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse /ask 응답
type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ReviewResponse GET /reviews/:id 응답
type ReviewResponse struct {
	ID      string            `json:"id"`
	Content string            `json:"content"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// ErrorResponse 에러 응답
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Server HTTP 핸들러 모음. 질의 서비스는 시작 시 한 번 만들어 주입받습니다.
type Server struct {
	asker        Asker
	reviews      ReviewGetter
	frontendPath string
	health       *HealthHandler
}

// NewServer 새로운 HTTP 서버 핸들러를 생성합니다
func NewServer(asker Asker, reviews ReviewGetter, frontendPath string, health *HealthHandler) *Server {
	return &Server{asker: asker, reviews: reviews, frontendPath: frontendPath, health: health}
}

// Router 미들웨어와 라우트가 등록된 gin 엔진을 반환합니다
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AllowAllCORS())
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes 라우트를 등록합니다
func (s *Server) RegisterRoutes(r gin.IRouter) {
	r.GET("/", s.Index)
	r.GET("/ask", s.AskGet)
	r.POST("/ask", s.AskPost)
	if s.reviews != nil {
		r.GET("/reviews/:id", s.Review)
	}
	if s.health != nil {
		s.health.RegisterRoutes(r)
	}
}

// Index 프론트엔드 HTML이 있으면 그대로 내려주고, 없으면 안내 메시지를 반환합니다
func (s *Server) Index(c *gin.Context) {
	if info, err := os.Stat(s.frontendPath); err == nil && !info.IsDir() {
		c.File(s.frontendPath)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fallbackMessage})
}

// AskGet GET /ask?query=...
func (s *Server) AskGet(c *gin.Context) {
	s.answer(c, c.Query("query"))
}

// AskPost POST /ask {"query": "..."}
func (s *Server) AskPost(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "요청 본문이 올바르지 않습니다: " + err.Error()})
		return
	}
	s.answer(c, req.Query)
}

// Review GET /reviews/:id 검색 근거가 된 리뷰 원문을 조회합니다
func (s *Server) Review(c *gin.Context) {
	doc, err := s.reviews.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ReviewResponse{ID: doc.ID, Content: doc.Content, Meta: doc.Meta})
}

func (s *Server) answer(c *gin.Context, query string) {
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: models.ErrInvalidQuery.Error()})
		return
	}

	answer, err := s.asker.Ask(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, models.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
			return
		}
		// 백엔드 실패는 200 응답의 답변 문자열로 전달합니다
		log.Printf("❌ [%s] 질문 처리 실패: %v", GetRequestID(c.Request.Context()), err)
		answer = rag.GenericFailurePrefix + err.Error()
	}

	c.JSON(http.StatusOK, AskResponse{Question: query, Answer: answer})
}
