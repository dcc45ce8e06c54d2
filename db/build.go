package db

import (
	"context"
	"fmt"
	"sync/atomic"

	"hotel-review-rag/embedding"
	"hotel-review-rag/models"

	"golang.org/x/sync/errgroup"
)

const progressEvery = 100

// Build 모든 문서를 임베딩하여 벡터 DB에 저장합니다.
// 하나라도 실패하면 아무것도 저장하지 않고 에러를 반환합니다.
func Build(ctx context.Context, store *Store, embedder embedding.Embedder, docs []*models.Document, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	var done atomic.Int64
	total := len(docs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, doc := range docs {
		g.Go(func() error {
			vector, err := embedder.EmbedText(gctx, doc.Content, embedding.TaskDocument)
			if err != nil {
				return fmt.Errorf("문서 %s 임베딩 실패: %w", doc.ID, err)
			}
			doc.Vector = vector

			if n := done.Add(1); n%progressEvery == 0 || int(n) == total {
				fmt.Printf("임베딩 생성 중: %d/%d\n", n, total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := store.AddDocuments(ctx, docs); err != nil {
		return err
	}

	if store.Count() != total {
		return fmt.Errorf("벡터 개수 불일치: 문서 %d개, 벡터 %d개", total, store.Count())
	}
	return nil
}
