package messages

import (
	"fmt"
	"net/http"
	"strings"
)

// This package provides all the error messages that should be reported to the user.
// Note that we add a comment with the message parameters so that it is possible
// to see the parameters in the IDE when creating an error message.
var (
	// API errors

	// MethodNotAllowed The HTTP method {{.Method}} is not allowed for the API {{.Api}}.
	MethodNotAllowed = createMessage(
		http.StatusMethodNotAllowed,
		"method_not_allowed",
		"The HTTP method {{.Method}} is not allowed for the API {{.Api}}.",
	)

	// ResourceNotFound The resource {{.Path}} was not found.
	ResourceNotFound = createMessage(
		http.StatusNotFound,
		"resource_not_found",
		"The resource {{.Path}} was not found.",
	)

	// Configuration related errors

	// ConfigurationFailed The service startup failed: '{{.Error}}'.
	ConfigurationFailed = createMessage(
		http.StatusInternalServerError,
		"configuration_failed",
		"The service startup failed: '{{.Error}}'.",
	)

	// ConfigurationInvalid The configuration value {{.Field}} failed the '{{.Rule}}' rule: '{{.Value}}'.
	ConfigurationInvalid = createMessage(
		http.StatusInternalServerError,
		"configuration_invalid",
		"The configuration value {{.Field}} failed the '{{.Rule}}' rule: '{{.Value}}'.",
	)

	// Rendering errors

	// RenderingFailed The rendering of the {{.Type}} failed: '{{.Error}}'.
	RenderingFailed = createMessage(
		http.StatusInternalServerError,
		"rendering_failed",
		"The rendering of the {{.Type}} failed: '{{.Error}}'.",
	)

	// InternalServerError An internal server error occurred: '{{.Error}}'.
	InternalServerError = createMessage(
		http.StatusInternalServerError,
		"internal_server_error",
		"An internal server error occurred: '{{.Error}}'.",
	)

	// UnknownError An unknown error occurred: '{{.Error}}'. This is a fallback error if the error is not a service error.
	UnknownError = createMessage(
		http.StatusInternalServerError,
		"unknown_error",
		"An unknown error occurred: {{.Error}}.",
	)
)

type MessageCode struct {
	status int
	code   string
	one    string
}

func (m *MessageCode) GetStatusCode() int {
	return m.status
}

func (m *MessageCode) GetCode() string {
	return m.code
}

func (m *MessageCode) GetMessage() string {
	return m.one
}

func createMessage(status int, code string, one string) *MessageCode {
	return &MessageCode{
		status,
		code,
		one,
	}
}

func GetErrorMessage(messageCode *MessageCode, messageParams ...any) string {
	msg := messageCode.GetMessage()
	for i := 0; i < len(messageParams); i += 2 {
		param := messageParams[i]
		var paramValue any
		if i+1 < len(messageParams) {
			paramValue = messageParams[i+1]
		} else {
			paramValue = "NOT_DEFINED" // this is a placeholder for a missing parameter value - if you see this value then the code needs to be fixed
		}
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{{.%v}}", param), fmt.Sprintf("%v", paramValue))
	}
	return msg
}
