package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/terra-ansible-demo/status-page/internal/config"
	"github.com/terra-ansible-demo/status-page/internal/constants"
	"github.com/terra-ansible-demo/status-page/internal/handlers"
	"github.com/terra-ansible-demo/status-page/internal/messages"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	mu            sync.Mutex
	httpServer    *http.Server
	closed        bool
	port          int
	logger        *slog.Logger
	serviceConfig *config.Config
	environment   *config.Environment
}

// ServerClosedError is returned by Start once the server has been shut down.
type ServerClosedError struct{}

func (e *ServerClosedError) Error() string {
	return "server closed"
}

func (e *ServerClosedError) Is(target error) bool {
	_, ok := target.(*ServerClosedError)
	return ok
}

// NewServer creates a new HTTP server instance with the provided logger and configuration.
// The server uses standard library net/http.ServeMux for routing without a web framework.
//
// The server implements the routing pattern where:
//   - Every handler receives *ExecutionContext, RequestWrapper, ResponseWrapper
//   - ExecutionContext is created at the route level before calling handlers
//   - Routes manually switch on HTTP method in handler functions
//
// All routes are wrapped with Prometheus metrics middleware for request duration and
// status code tracking, and with OpenTelemetry instrumentation when tracing is enabled.
//
// Parameters:
//   - logger: The structured logger for the server
//   - serviceConfig: The service configuration containing port and other settings
//   - environment: The profiles and properties answered to the handlers, the bound
//     port is published into it when the server starts
//
// Returns:
//   - *Server: A configured server instance
//   - error: An error if logger or serviceConfig is nil
func NewServer(logger *slog.Logger, serviceConfig *config.Config, environment *config.Environment) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for the server")
	}
	if (serviceConfig == nil) || (serviceConfig.Service == nil) {
		return nil, fmt.Errorf("service config is required for the server")
	}
	if environment == nil {
		return nil, fmt.Errorf("environment is required for the server")
	}

	return &Server{
		port:          serviceConfig.Service.Port,
		logger:        logger,
		serviceConfig: serviceConfig,
		environment:   environment,
	}, nil
}

// GetPort returns the configured port, or the bound port once the server has started.
func (s *Server) GetPort() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// LoggerWithRequest enhances a logger with request-specific fields for distributed
// tracing and structured logging. This function is called when creating an ExecutionContext
// to automatically enrich all log entries for a given HTTP request with consistent metadata.
//
// The enhanced logger includes the following fields (when available):
//   - request_id: Extracted from X-Global-Transaction-Id header, or auto-generated UUID if missing
//   - method: HTTP method (GET, POST, etc.)
//   - uri: Request path (from URL.Path or RequestURI)
//   - user_agent: Client user agent from User-Agent header
//   - remote_addr: Client IP address
//   - remote_user: Authenticated user from URL user info or Remote-User header
//   - referer: HTTP referer header
//
// Parameters:
//   - r: The HTTP request to extract fields from
//
// Returns:
//   - string: The request id
//   - *slog.Logger: A new logger instance with request-specific fields attached
func (s *Server) loggerWithRequest(r *http.Request) (string, *slog.Logger) {
	requestID := r.Header.Get(constants.HEADER_REQUEST_ID)
	if requestID == "" {
		requestID = uuid.New().String() // generate a UUID if not present
	}

	enhancedLogger := s.logger.With(constants.LOG_REQUEST_ID, requestID)

	// Extract and add HTTP method and URI if they exist
	method := r.Method
	if method != "" {
		enhancedLogger = enhancedLogger.With(constants.LOG_METHOD, method)
	}

	uri := ""
	if r.URL != nil {
		uri = r.URL.Path
	}
	if uri == "" {
		uri = r.RequestURI
	}
	if uri != "" {
		enhancedLogger = enhancedLogger.With(constants.LOG_URI, uri)
	}

	// Extract and add HTTP request fields to logger if they exist
	userAgent := r.Header.Get("User-Agent")
	if userAgent != "" {
		enhancedLogger = enhancedLogger.With(constants.LOG_USER_AGENT, userAgent)
	}

	remoteAddr := r.RemoteAddr
	if remoteAddr != "" {
		enhancedLogger = enhancedLogger.With(constants.LOG_REMOTE_ADR, remoteAddr)
	}

	// Extract remote_user from URL user info or header
	remoteUser := ""
	if r.URL != nil && r.URL.User != nil {
		remoteUser = r.URL.User.Username()
	}
	if remoteUser == "" {
		remoteUser = r.Header.Get("Remote-User")
	}
	if remoteUser != "" {
		enhancedLogger = enhancedLogger.With(constants.LOG_USER, remoteUser)
	}

	referer := r.Header.Get("Referer")
	if referer != "" {
		enhancedLogger = enhancedLogger.With(constants.LOG_REFERER, referer)
	}

	return requestID, enhancedLogger
}

func (s *Server) setupRoutes() (http.Handler, error) {
	router := http.NewServeMux()
	h := handlers.New(s.environment, s.serviceConfig)

	// Smoke test page
	router.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		ctx := s.newExecutionContext(r)
		resp := NewRespWrapper(w, ctx)
		req := NewRequestWrapper(r)
		switch req.Method() {
		case http.MethodGet:
			h.HandleTestPage(ctx, req, resp)
		default:
			resp.ErrorWithMessageCode(ctx.RequestID, messages.MethodNotAllowed, "Method", req.Method(), "Api", req.URI())
		}
	})

	// Health and status endpoints
	router.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := s.newExecutionContext(r)
		resp := NewRespWrapper(w, ctx)
		req := NewRequestWrapper(r)
		switch req.Method() {
		case http.MethodGet:
			h.HandleHealth(ctx, req, resp)
		default:
			resp.ErrorWithMessageCode(ctx.RequestID, messages.MethodNotAllowed, "Method", req.Method(), "Api", req.URI())
		}
	})

	router.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		ctx := s.newExecutionContext(r)
		resp := NewRespWrapper(w, ctx)
		req := NewRequestWrapper(r)
		switch req.Method() {
		case http.MethodGet:
			h.HandleStatus(ctx, req, resp)
		default:
			resp.ErrorWithMessageCode(ctx.RequestID, messages.MethodNotAllowed, "Method", req.Method(), "Api", req.URI())
		}
	})

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// anything else is answered with a JSON 404
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ctx := s.newExecutionContext(r)
		resp := NewRespWrapper(w, ctx)
		resp.ErrorWithMessageCode(ctx.RequestID, messages.ResourceNotFound, "Path", r.URL.Path)
	})

	handler := http.Handler(router)
	handler = Recovery(handler, s.logger)

	// Wrap with metrics middleware
	handler = Middleware(handler)

	// Tracing is outermost so that the span covers the whole request
	if s.serviceConfig.OTEL != nil && s.serviceConfig.OTEL.Enabled {
		handler = otelhttp.NewHandler(handler, constants.SERVICE_NAME)
	}

	return handler, nil
}

// SetupRoutes exposes the route setup for testing
func (s *Server) SetupRoutes() (http.Handler, error) {
	return s.setupRoutes()
}

// Start binds the listener, publishes the bound port as local.server.port,
// writes the ready file and serves until Shutdown is called.
func (s *Server) Start() error {
	handler, err := s.setupRoutes()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return &ServerClosedError{}
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	if addr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = addr.Port
	}
	s.environment.SetProperty(constants.PROPERTY_LOCAL_SERVER_PORT, strconv.Itoa(s.port))
	s.httpServer = &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	httpServer := s.httpServer
	port := s.port
	s.mu.Unlock()

	s.logger.Info("Writing the server ready message", "file", s.serviceConfig.Service.ReadyFile)
	if err := SetReady(s.serviceConfig, s.environment, s.logger); err != nil {
		_ = listener.Close()
		return err
	}

	s.logger.Info("Server starting", "port", port, "profiles", s.environment.ProfilesString())
	err = httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return &ServerClosedError{}
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down server gracefully...")
	return httpServer.Shutdown(ctx)
}
