package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"hotel-review-rag/embedding"
	"hotel-review-rag/llm"
	"hotel-review-rag/models"
)

// OllamaRemediation 언어 모델 서버에 연결할 수 없을 때 돌려주는 안내 메시지 (%s: 모델 이름)
const OllamaRemediation = `Ollama 서비스에 연결할 수 없습니다.
해결 방법:
1. Ollama 서비스가 실행 중인지 확인하세요 (터미널에서 실행: ollama serve)
2. 모델이 다운로드되어 있는지 확인하세요 (실행: ollama pull %s)
3. Ollama가 기본 포트 11434에서 실행 중인지 확인하세요`

// LLMUnavailableMessage Ollama 외의 언어 모델 백엔드에 연결할 수 없을 때의 안내 메시지 (%s: 모델 이름)
const LLMUnavailableMessage = "언어 모델(%s)에 연결할 수 없습니다. 네트워크와 API Key 설정을 확인하세요."

// NoReviewsAnswer 검색된 리뷰가 없을 때의 고정 답변
const NoReviewsAnswer = "질문과 관련된 리뷰를 찾을 수 없습니다."

// GenericFailurePrefix 분류되지 않은 실패에 붙는 답변 접두어
const GenericFailurePrefix = "에이전트 처리 실패: "

const retrievalFailurePrefix = "리뷰 검색 실패: "

// Options 검색기 설정
type Options struct {
	TopK           int
	MinSimilarity  float32
	MapConcurrency int
	// reduce 프롬프트에 넣을 부분 답변의 최대 글자 수 (0이면 제한 없음)
	MaxCombineChars int
	QuestionPrompt  string
	CombinePrompt   string
}

// Searcher 질문을 받아 리뷰 검색과 요약을 거쳐 답변 문자열을 돌려주는 질의 서비스.
// 시작 시 한 번 만들어 모든 요청이 공유합니다.
type Searcher struct {
	retriever   *Retriever
	synthesizer *Synthesizer
	topK        int
	modelName   string
	ollamaModel string
}

// NewSearcher 새로운 RAG 검색기를 생성합니다
func NewSearcher(embedder embedding.Embedder, index Index, generator llm.Generator, opts Options) (*Searcher, error) {
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("top_k는 1 이상이어야 합니다: %d", opts.TopK)
	}

	prompts, err := NewPrompts(opts.QuestionPrompt, opts.CombinePrompt)
	if err != nil {
		return nil, err
	}

	// 안내 메시지의 ollama pull 대상: 언어 모델이 Ollama면 그 모델, 아니면 임베딩 모델
	var ollamaModel string
	if _, ok := generator.(*llm.OllamaGenerator); ok {
		ollamaModel = generator.ModelName()
	} else if _, ok := embedder.(*embedding.OllamaEmbedder); ok {
		ollamaModel = embedder.ModelName()
	}

	return &Searcher{
		retriever:   NewRetriever(embedder, index, opts.MinSimilarity),
		synthesizer: NewSynthesizer(generator, prompts, opts.MapConcurrency, opts.MaxCombineChars),
		topK:        opts.TopK,
		modelName:   generator.ModelName(),
		ollamaModel: ollamaModel,
	}, nil
}

// Ask 질문에 대한 답변을 반환합니다.
// 빈 질문이면 백엔드를 호출하지 않고 ErrInvalidQuery를 반환합니다.
// 그 외의 실패는 에러 대신 사용자에게 보여줄 안내 문자열로 바뀝니다.
func (s *Searcher) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", models.ErrInvalidQuery
	}

	documents, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return s.failure(err), nil
	}
	if len(documents) == 0 {
		return NoReviewsAnswer, nil
	}

	answer, err := s.synthesizer.Synthesize(ctx, question, documents)
	if err != nil {
		return s.failure(err), nil
	}
	return answer, nil
}

// ModelName 답변 생성에 사용하는 언어 모델 이름
func (s *Searcher) ModelName() string {
	return s.modelName
}

func (s *Searcher) failure(err error) string {
	log.Printf("❌ 질문 처리 실패: %v", err)

	switch {
	case models.IsOllamaUnavailable(err) && s.ollamaModel != "":
		// 질문 임베딩 단계의 Ollama 연결 실패도 같은 안내를 돌려줍니다
		return fmt.Sprintf(OllamaRemediation, s.ollamaModel)
	case errors.Is(err, models.ErrLLMUnavailable):
		return fmt.Sprintf(LLMUnavailableMessage, s.modelName)
	case errors.Is(err, models.ErrRetrievalUnavailable):
		return retrievalFailurePrefix + err.Error()
	default:
		return GenericFailurePrefix + err.Error()
	}
}
