package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotel-review-rag/api"
	"hotel-review-rag/config"
	"hotel-review-rag/corpus"
	"hotel-review-rag/db"
	"hotel-review-rag/embedding"
	"hotel-review-rag/llm"
	"hotel-review-rag/models"
	"hotel-review-rag/notion"
	"hotel-review-rag/rag"
	"hotel-review-rag/ui"

	"golang.org/x/term"
)

func main() {
	// 플래그 파싱
	configPath := flag.String("config", "config.yaml", "설정 파일 경로")
	reload := flag.Bool("reload", false, "코퍼스를 다시 읽어 벡터 DB를 새로 만듭니다")
	tui := flag.Bool("tui", false, "HTTP 서버 대신 터미널 UI로 질문합니다")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 설정 로드
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("설정 로드 실패: %v", err)
	}

	// DB 초기화 (Open이 디렉터리를 만들기 때문에 존재 여부를 먼저 확인)
	dbExists := db.Exists(cfg.Index.Path)
	store, err := db.Open(cfg.Index.Path, cfg.Index.Collection, cfg.Index.Compress)
	if err != nil {
		log.Fatalf("DB 초기화 실패: %v", err)
	}
	defer store.Close()

	// 임베딩 생성기 초기화 (인덱스 구축과 검색에 같은 모델을 사용)
	embedder, err := embedding.New(ctx, cfg.Embedder)
	if err != nil {
		log.Fatalf("임베딩 생성기 초기화 실패: %v", err)
	}
	defer embedder.Close()

	if shouldBuildIndex(*reload, dbExists, store.Count()) {
		if err := buildIndex(ctx, cfg, store, embedder, *reload); err != nil {
			log.Fatalf("벡터 DB 구축 실패: %v", err)
		}
	} else {
		fmt.Printf("⚡ 기존 벡터 DB를 로드했습니다. (총 %d개 리뷰)\n", store.Count())
	}

	// 언어 모델 초기화
	fmt.Printf("🤖 언어 모델 연결 확인 중 (%s)...\n", cfg.LLM.Type)
	generator, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("언어 모델 초기화 실패: %v", err)
	}
	defer generator.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := generator.Ping(pingCtx); err != nil {
		log.Printf("⚠️  언어 모델(%s)에 연결할 수 없습니다. 질문 시 안내 메시지가 반환됩니다: %v", generator.ModelName(), err)
	}
	cancel()

	// RAG 검색기 초기화
	searcher, err := rag.NewSearcher(embedder, store, generator, rag.Options{
		TopK:            cfg.Retrieval.TopK,
		MinSimilarity:   cfg.Retrieval.MinSimilarity,
		MapConcurrency:  cfg.Synthesis.MapConcurrency,
		MaxCombineChars: cfg.Synthesis.MaxCombineChars,
		QuestionPrompt:  cfg.Synthesis.QuestionPrompt,
		CombinePrompt:   cfg.Synthesis.CombinePrompt,
	})
	if err != nil {
		log.Fatalf("RAG 검색기 초기화 실패: %v", err)
	}

	if *tui {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			log.Fatalf("-tui 옵션은 터미널에서만 사용할 수 있습니다")
		}
		fmt.Println("검색 모드로 진입합니다...")
		if err := ui.Run(ctx, searcher); err != nil {
			log.Fatalf("TUI 실행 실패: %v", err)
		}
		return
	}

	if err := serve(ctx, cfg, searcher, store, embedder.ModelName(), generator.ModelName()); err != nil {
		log.Fatalf("서버 실행 실패: %v", err)
	}
}

// shouldBuildIndex 인덱스를 새로 만들어야 하는지 판단합니다.
// 비어있지 않은 인덱스가 있으면 코퍼스를 열지 않고 그대로 사용합니다.
func shouldBuildIndex(reload, exists bool, count int) bool {
	return reload || !exists || count == 0
}

// buildIndex 코퍼스를 읽어 임베딩한 뒤 벡터 DB에 저장합니다
func buildIndex(ctx context.Context, cfg *config.Config, store *db.Store, embedder embedding.Embedder, reset bool) error {
	if reset && store.Count() > 0 {
		fmt.Println("🗑️  기존 벡터 DB를 비우는 중...")
		if err := store.Reset(); err != nil {
			return err
		}
	}

	fmt.Printf("🔄 코퍼스를 읽는 중 (%s)...\n", cfg.Corpus.Source)
	documents, err := loadCorpus(ctx, cfg)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return errors.New("코퍼스에 유효한 리뷰가 없습니다")
	}
	fmt.Printf("📄 총 %d개의 리뷰를 읽었습니다.\n", len(documents))

	fmt.Printf("🧠 벡터 DB 구축 중 (%s, 첫 실행은 시간이 걸립니다)...\n", embedder.ModelName())
	if err := db.Build(ctx, store, embedder, documents, cfg.Index.EmbedConcurrency); err != nil {
		return err
	}

	fmt.Printf("✅ 벡터 DB 구축 완료! (총 %d개 리뷰, 경로: %s)\n\n", store.Count(), cfg.Index.Path)
	return nil
}

// loadCorpus 설정된 출처에서 리뷰를 읽어옵니다
func loadCorpus(ctx context.Context, cfg *config.Config) ([]*models.Document, error) {
	switch cfg.Corpus.Source {
	case "notion":
		apiKey := os.Getenv(cfg.Corpus.Notion.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("환경 변수 %s에 Notion API Key가 설정되지 않았습니다", cfg.Corpus.Notion.APIKeyEnv)
		}
		return notion.NewLoader(apiKey).LoadReviews(ctx, cfg.Corpus.Notion.DatabaseID, cfg.Corpus.Column)
	default:
		return corpus.LoadCSV(cfg.Corpus.Path, cfg.Corpus.Column)
	}
}

// serve HTTP 서버를 실행하고 종료 신호를 받으면 정상 종료합니다
func serve(ctx context.Context, cfg *config.Config, searcher *rag.Searcher, store *db.Store, embedModel, llmModel string) error {
	api.SetGinMode(cfg.App.Environment)

	health := api.NewHealthHandler(cfg.App.Name, cfg.App.Version, llmModel, embedModel, store)
	server := api.NewServer(searcher, store, cfg.Frontend.IndexPath, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	fmt.Printf("🚀 서버 시작: http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("   질문 예시: http://localhost:%d/ask?query=호텔의 청결 상태는 어떤가요\n", cfg.Server.Port)
	fmt.Printf("   상태 확인: http://localhost:%d/health\n", cfg.Server.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	fmt.Println("\n🛑 서버를 종료합니다...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
