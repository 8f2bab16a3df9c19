package server

import (
	"net/http"

	"github.com/terra-ansible-demo/status-page/internal/executioncontext"
)

// newExecutionContext creates a new ExecutionContext for the request. This function
// is called at the route level before invoking the handlers to set up
// request-scoped context.
//
// The function automatically enhances the logger with request-specific fields via
// loggerWithRequest. This enables automatic request ID tracking (from
// X-Global-Transaction-Id header or auto-generated UUID) and structured logging
// with consistent request metadata. The request context is kept so that the
// tracing span started by the middleware reaches the handlers.
//
// Parameters:
//   - r: The HTTP request to extract context from
//
// Returns:
//   - *ExecutionContext: A new execution context ready for use in handlers
func (s *Server) newExecutionContext(r *http.Request) *executioncontext.ExecutionContext {
	// Enhance logger with request-specific fields
	requestID, enhancedLogger := s.loggerWithRequest(r)

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	baseURL := scheme + "://" + r.Host

	return executioncontext.NewExecutionContext(
		r.Context(),
		requestID,
		enhancedLogger,
		r.Method,
		r.URL.Path,
		baseURL,
		r.URL.RawQuery,
		r.Header,
	)
}
