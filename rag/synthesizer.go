package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"hotel-review-rag/llm"
	"hotel-review-rag/models"

	"golang.org/x/sync/errgroup"
)

// partialSeparator reduce 단계에서 리뷰별 답변을 이어붙이는 구분자
const partialSeparator = "\n\n"

// Synthesizer 검색된 리뷰들을 map-reduce 방식으로 요약합니다
type Synthesizer struct {
	generator       llm.Generator
	prompts         *Prompts
	concurrency     int
	maxCombineChars int
}

// NewSynthesizer 요약기를 생성합니다. concurrency는 map 단계에서 동시에 보낼 LLM 요청 수이고,
// maxCombineChars는 reduce 프롬프트에 넣을 부분 답변의 최대 글자 수입니다 (0이면 제한 없음).
func NewSynthesizer(generator llm.Generator, prompts *Prompts, concurrency, maxCombineChars int) *Synthesizer {
	if concurrency <= 0 {
		concurrency = 1
	}
	if maxCombineChars < 0 {
		maxCombineChars = 0
	}
	return &Synthesizer{
		generator:       generator,
		prompts:         prompts,
		concurrency:     concurrency,
		maxCombineChars: maxCombineChars,
	}
}

// Synthesize 리뷰마다 부분 답변을 만든 뒤(map) 검색 순서대로 합쳐 최종 답변을 만듭니다(reduce).
// LLM 호출이 하나라도 실패하면 남은 호출을 취소하고 에러를 반환합니다.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, docs []*models.Document) (string, error) {
	if len(docs) == 0 {
		return "", errors.New("요약할 리뷰가 없습니다")
	}

	partials, err := s.mapStep(ctx, question, docs)
	if err != nil {
		return "", err
	}

	partials, err = s.collapse(ctx, question, partials)
	if err != nil {
		return "", err
	}

	answer, err := s.combine(ctx, question, partials)
	if err != nil {
		return "", wrapLLMError("최종 답변 생성 실패", err)
	}
	return strings.TrimSpace(answer), nil
}

func (s *Synthesizer) mapStep(ctx context.Context, question string, docs []*models.Document) ([]string, error) {
	return s.parallel(ctx, len(docs), func(ctx context.Context, i int) (string, error) {
		prompt, err := s.prompts.RenderQuestion(docs[i].Content, question)
		if err != nil {
			return "", err
		}
		partial, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			return "", wrapLLMError(fmt.Sprintf("리뷰 %d 요약 실패", i+1), err)
		}
		return partial, nil
	})
}

// collapse 부분 답변의 합이 maxCombineChars를 넘으면 이웃한 답변끼리 묶어
// combine 프롬프트로 다시 요약합니다. 순서는 유지되고, 더 줄일 수 없으면 그대로 반환합니다.
func (s *Synthesizer) collapse(ctx context.Context, question string, partials []string) ([]string, error) {
	for s.maxCombineChars > 0 && joinedLen(partials) > s.maxCombineChars {
		groups := groupPartials(partials, s.maxCombineChars)
		if len(groups) == len(partials) {
			break
		}

		collapsed, err := s.parallel(ctx, len(groups), func(ctx context.Context, i int) (string, error) {
			if len(groups[i]) == 1 {
				return groups[i][0], nil
			}
			out, err := s.combine(ctx, question, groups[i])
			if err != nil {
				return "", wrapLLMError(fmt.Sprintf("부분 답변 %d 묶음 요약 실패", i+1), err)
			}
			return out, nil
		})
		if err != nil {
			return nil, err
		}
		partials = collapsed
	}
	return partials, nil
}

func (s *Synthesizer) combine(ctx context.Context, question string, partials []string) (string, error) {
	prompt, err := s.prompts.RenderCombine(strings.Join(partials, partialSeparator), question)
	if err != nil {
		return "", err
	}
	return s.generator.Generate(ctx, prompt)
}

// parallel fn을 n번 실행하고 결과를 인덱스 순서대로 돌려줍니다. 동시 실행 수는 concurrency로 제한됩니다.
func (s *Synthesizer) parallel(ctx context.Context, n int, fn func(ctx context.Context, i int) (string, error)) ([]string, error) {
	results := make([]string, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range n {
		g.Go(func() error {
			out, err := fn(gctx, i)
			if err != nil {
				return err
			}
			results[i] = strings.TrimSpace(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// groupPartials 이웃한 부분 답변을 합친 길이가 limit 이하가 되도록 순서대로 묶습니다.
// 혼자서 limit을 넘는 답변은 단독 묶음이 됩니다.
func groupPartials(partials []string, limit int) [][]string {
	var groups [][]string
	var current []string
	for _, p := range partials {
		if len(current) > 0 && joinedLen(append(current[:len(current):len(current)], p)) > limit {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, p)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func joinedLen(parts []string) int {
	if len(parts) == 0 {
		return 0
	}
	n := utf8.RuneCountInString(partialSeparator) * (len(parts) - 1)
	for _, p := range parts {
		n += utf8.RuneCountInString(p)
	}
	return n
}

// wrapLLMError 연결 실패나 타임아웃이면 ErrLLMUnavailable로 표시합니다
func wrapLLMError(msg string, err error) error {
	if models.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %w", models.ErrLLMUnavailable, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
