package executioncontext

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ExecutionContext carries the request scoped values that handlers need. It is
// created at the route level so that every handler logs with the same request
// metadata and reports the same request id back to the caller.
type ExecutionContext struct {
	Ctx       context.Context
	RequestID string
	Logger    *slog.Logger
	Method    string
	URI       string
	BaseURL   string
	RawQuery  string
	Headers   http.Header
	StartedAt time.Time
}

func NewExecutionContext(
	ctx context.Context,
	requestID string,
	logger *slog.Logger,
	method string,
	uri string,
	baseURL string,
	rawQuery string,
	headers http.Header,
) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecutionContext{
		Ctx:       ctx,
		RequestID: requestID,
		Logger:    logger,
		Method:    method,
		URI:       uri,
		BaseURL:   baseURL,
		RawQuery:  rawQuery,
		Headers:   headers,
		StartedAt: time.Now(),
	}
}
