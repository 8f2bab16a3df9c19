package server

import (
	"encoding/json"
	"net/http"

	"github.com/terra-ansible-demo/status-page/internal/executioncontext"
	"github.com/terra-ansible-demo/status-page/internal/logging"
	"github.com/terra-ansible-demo/status-page/internal/messages"
	"github.com/terra-ansible-demo/status-page/internal/serviceerrors"
	"github.com/terra-ansible-demo/status-page/pkg/api"
)

type ReqWrapper struct {
	request *http.Request
}

func NewRequestWrapper(r *http.Request) *ReqWrapper {
	return &ReqWrapper{request: r}
}

func (r *ReqWrapper) Method() string {
	return r.request.Method
}

func (r *ReqWrapper) URI() string {
	return r.request.URL.RequestURI()
}

func (r *ReqWrapper) Header(key string) string {
	return r.request.Header.Get(key)
}

func (r *ReqWrapper) Path() string {
	return r.request.URL.Path
}

func (r *ReqWrapper) Query(key string) []string {
	return r.request.URL.Query()[key]
}

type RespWrapper struct {
	w   http.ResponseWriter
	ctx *executioncontext.ExecutionContext
}

func NewRespWrapper(w http.ResponseWriter, ctx *executioncontext.ExecutionContext) *RespWrapper {
	return &RespWrapper{w: w, ctx: ctx}
}

func (r *RespWrapper) Error(err error, requestId string) {
	se := serviceerrors.AsServiceError(err)
	r.ErrorWithMessageCode(requestId, se.MessageCode(), se.MessageParams()...)
}

func (r *RespWrapper) ErrorWithMessageCode(requestId string, messageCode *messages.MessageCode, messageParams ...any) {
	msg := messages.GetErrorMessage(messageCode, messageParams...)
	body, err := json.Marshal(api.Error{
		MessageCode: messageCode.GetCode(),
		Message:     msg,
		Trace:       requestId,
	})
	if err != nil {
		http.Error(r.w, msg, messageCode.GetStatusCode())
		logging.LogRequestFailed(r.ctx, messageCode.GetStatusCode(), msg)
		return
	}

	header := r.w.Header()
	// Delete the Content-Length header, which might be for some other content.
	header.Del("Content-Length")
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("X-Content-Type-Options", "nosniff")
	r.w.WriteHeader(messageCode.GetStatusCode())
	_, _ = r.w.Write(body)

	logging.LogRequestFailed(r.ctx, messageCode.GetStatusCode(), msg)
}

func (r *RespWrapper) SetHeader(key string, value string) {
	r.w.Header().Set(key, value)
}

func (r *RespWrapper) SetStatusCode(code int) {
	r.w.WriteHeader(code)
}

func (r *RespWrapper) Write(buf []byte) (int, error) {
	return r.w.Write(buf)
}

func (r *RespWrapper) WriteJSON(v any, code int) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		r.ErrorWithMessageCode(r.ctx.RequestID, messages.InternalServerError, "Error", err.Error())
		return
	}
	r.w.Header().Set("Content-Type", "application/json")
	r.w.WriteHeader(code)
	_, _ = r.w.Write(body)
}
