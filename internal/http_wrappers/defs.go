package http_wrappers

import "github.com/terra-ansible-demo/status-page/internal/messages"

// RequestWrapper abstracts the underlying HTTP request.
type RequestWrapper interface {
	Method() string
	URI() string
	Header(key string) string
	Path() string
	Query(key string) []string
}

// Response abstraction of underlying HTTP library
type ResponseWrapper interface {
	Error(err error, requestId string)
	ErrorWithMessageCode(requestId string, messageCode *messages.MessageCode, messageParams ...any)
	SetHeader(key string, value string)
	SetStatusCode(code int)
	Write(buf []byte) (n int, err error)
	WriteJSON(v any, code int)
}
