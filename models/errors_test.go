package models

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyKind_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := http.Get(url)
	require.Error(t, err)

	assert.Equal(t, KindUnreachable, ClassifyKind(err))
}

func TestClassifyKind_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	assert.Equal(t, KindTimeout, ClassifyKind(ctx.Err()))
	assert.Equal(t, KindTimeout, ClassifyKind(fmt.Errorf("send request: %w", ctx.Err())))
}

func TestClassifyKind_DialOpError(t *testing.T) {
	err := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no route")}
	assert.Equal(t, KindUnreachable, ClassifyKind(err))
}

func TestClassifyKind_GRPCStatus(t *testing.T) {
	assert.Equal(t, KindUnreachable, ClassifyKind(status.Error(codes.Unavailable, "down")))
	assert.Equal(t, KindTimeout, ClassifyKind(status.Error(codes.DeadlineExceeded, "slow")))
	assert.Equal(t, KindOther, ClassifyKind(status.Error(codes.InvalidArgument, "bad")))
}

func TestClassifyKind_Other(t *testing.T) {
	assert.Equal(t, KindOther, ClassifyKind(errors.New("model not found")))
	assert.Equal(t, KindOther, ClassifyKind(nil))
}

func TestBackendError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("send request: %w", context.DeadlineExceeded)
	err := fmt.Errorf("generate: %w", NewBackendError("ollama", cause))

	assert.True(t, IsUnavailable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "ollama", be.Backend)
	assert.Equal(t, KindTimeout, be.Kind)
	assert.Contains(t, be.Error(), "timeout")
}

func TestIsUnavailable_OtherKind(t *testing.T) {
	err := NewBackendError("ollama", errors.New("status 500"))
	assert.False(t, IsUnavailable(err))
	assert.False(t, IsUnavailable(errors.New("plain")))
}

func TestIsOllamaUnavailable(t *testing.T) {
	refused := fmt.Errorf("질문 임베딩 실패: %w", &BackendError{Backend: "ollama-embedding", Kind: KindUnreachable, Err: syscall.ECONNREFUSED})
	assert.True(t, IsOllamaUnavailable(refused))
	assert.True(t, IsOllamaUnavailable(&BackendError{Backend: "ollama", Kind: KindTimeout, Err: context.DeadlineExceeded}))

	assert.False(t, IsOllamaUnavailable(&BackendError{Backend: "ollama", Kind: KindOther, Err: errors.New("status 404")}))
	assert.False(t, IsOllamaUnavailable(&BackendError{Backend: "gemini", Kind: KindUnreachable, Err: errors.New("unavailable")}))
	assert.False(t, IsOllamaUnavailable(errors.New("plain")))
}

func TestSchemaError_Message(t *testing.T) {
	err := &SchemaError{Column: "review", Required: []string{"review"}, Found: []string{"id", "rating"}}
	assert.Contains(t, err.Error(), "review")
	assert.Contains(t, err.Error(), "id, rating")
}
