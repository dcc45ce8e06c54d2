package models

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrDataNotFound 코퍼스 파일이 존재하지 않을 때 반환됩니다
	ErrDataNotFound = errors.New("코퍼스 데이터를 찾을 수 없습니다")

	// ErrInvalidQuery 질문이 비어있을 때 반환됩니다
	ErrInvalidQuery = errors.New("질문은 비워둘 수 없습니다")

	// ErrRetrievalUnavailable 임베딩 또는 벡터 인덱스에 접근할 수 없을 때 반환됩니다
	ErrRetrievalUnavailable = errors.New("검색 백엔드를 사용할 수 없습니다")

	// ErrLLMUnavailable 언어 모델 서버에 연결할 수 없을 때 반환됩니다
	ErrLLMUnavailable = errors.New("언어 모델 서버를 사용할 수 없습니다")

	// ErrReviewNotFound 인덱스에 해당 ID의 리뷰가 없을 때 반환됩니다
	ErrReviewNotFound = errors.New("리뷰를 찾을 수 없습니다")
)

// SchemaError 코퍼스에 필요한 컬럼이 없을 때 반환되는 에러
type SchemaError struct {
	Column   string
	Required []string
	Found    []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("'%s' 컬럼을 찾을 수 없습니다 (필요: [%s], 사용 가능: [%s])",
		e.Column, strings.Join(e.Required, ", "), strings.Join(e.Found, ", "))
}

// Kind 백엔드 호출 실패의 종류
type Kind int

const (
	KindOther Kind = iota
	KindUnreachable
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// BackendError 외부 백엔드(임베딩, 언어 모델) 호출 실패를 나타냅니다.
// Kind는 클라이언트 경계에서 에러 타입을 보고 결정됩니다.
type BackendError struct {
	Backend string
	Kind    Kind
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Backend, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError 전송 계층 에러를 분류하여 BackendError로 감쌉니다
func NewBackendError(backend string, err error) *BackendError {
	return &BackendError{Backend: backend, Kind: ClassifyKind(err), Err: err}
}

// IsUnavailable 연결 실패 또는 타임아웃으로 분류된 BackendError인지 확인합니다
func IsUnavailable(err error) bool {
	var be *BackendError
	if !errors.As(err, &be) {
		return false
	}
	return be.Kind == KindUnreachable || be.Kind == KindTimeout
}

// IsOllamaUnavailable Ollama 서버(언어 모델 또는 임베딩)에 연결할 수 없는 경우인지 확인합니다
func IsOllamaUnavailable(err error) bool {
	var be *BackendError
	if !errors.As(err, &be) || !strings.HasPrefix(be.Backend, "ollama") {
		return false
	}
	return be.Kind == KindUnreachable || be.Kind == KindTimeout
}

// ClassifyKind 에러 타입으로 실패 종류를 판별합니다
func ClassifyKind(err error) Kind {
	if err == nil {
		return KindOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return KindUnreachable
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindUnreachable
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindUnreachable
	}

	// Gemini 클라이언트는 gRPC 상태 코드를 담은 에러를 반환합니다
	switch status.Code(err) {
	case codes.Unavailable:
		return KindUnreachable
	case codes.DeadlineExceeded:
		return KindTimeout
	}

	return KindOther
}
