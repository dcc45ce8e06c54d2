package rag

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultQuestionPrompt 리뷰 한 건마다 적용되는 map 단계 프롬프트
const DefaultQuestionPrompt = `다음 리뷰 내용을 바탕으로 질문에 답하세요.
세 문장 이내로 요약하고, 내용을 지어내지 말고, 관련 리뷰를 그대로 인용하며, 과정은 설명하지 마세요.

리뷰: {{.Context}}
질문: {{.Question}}

답변:`

// DefaultCombinePrompt 리뷰별 답변을 합치는 reduce 단계 프롬프트
const DefaultCombinePrompt = `다음은 각 리뷰에 대한 답변입니다. 이를 종합하여 최종 답변을 작성하세요.
세 문장 이내로 요약하고, 내용을 지어내지 말고, 관련 리뷰를 그대로 인용하며, 과정은 설명하지 마세요.

리뷰별 답변:
{{.Summaries}}

최종 질문: {{.Question}}

최종 답변:`

// Prompts map/reduce 단계 프롬프트 템플릿
type Prompts struct {
	question *template.Template
	combine  *template.Template
}

type questionData struct {
	Context  string
	Question string
}

type combineData struct {
	Summaries string
	Question  string
}

// NewPrompts 프롬프트 템플릿을 파싱합니다. 빈 문자열이면 기본 프롬프트를 사용합니다.
func NewPrompts(questionPrompt, combinePrompt string) (*Prompts, error) {
	if strings.TrimSpace(questionPrompt) == "" {
		questionPrompt = DefaultQuestionPrompt
	}
	if strings.TrimSpace(combinePrompt) == "" {
		combinePrompt = DefaultCombinePrompt
	}

	question, err := template.New("question").Parse(questionPrompt)
	if err != nil {
		return nil, fmt.Errorf("질문 프롬프트 파싱 실패: %w", err)
	}
	combine, err := template.New("combine").Parse(combinePrompt)
	if err != nil {
		return nil, fmt.Errorf("종합 프롬프트 파싱 실패: %w", err)
	}
	return &Prompts{question: question, combine: combine}, nil
}

// RenderQuestion 리뷰 하나와 질문으로 map 단계 프롬프트를 만듭니다
func (p *Prompts) RenderQuestion(review, question string) (string, error) {
	var sb strings.Builder
	if err := p.question.Execute(&sb, questionData{Context: review, Question: question}); err != nil {
		return "", fmt.Errorf("질문 프롬프트 렌더링 실패: %w", err)
	}
	return sb.String(), nil
}

// RenderCombine 리뷰별 답변 묶음과 질문으로 reduce 단계 프롬프트를 만듭니다
func (p *Prompts) RenderCombine(summaries, question string) (string, error) {
	var sb strings.Builder
	if err := p.combine.Execute(&sb, combineData{Summaries: summaries, Question: question}); err != nil {
		return "", fmt.Errorf("종합 프롬프트 렌더링 실패: %w", err)
	}
	return sb.String(), nil
}
