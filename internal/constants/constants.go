package constants

const (
	// log field names used by the request scoped logger
	LOG_REQUEST_ID = "request_id"
	LOG_METHOD     = "method"
	LOG_URI        = "uri"
	LOG_USER_AGENT = "user_agent"
	LOG_REMOTE_ADR = "remote_addr"
	LOG_USER       = "remote_user"
	LOG_REFERER    = "referer"

	// HEADER_REQUEST_ID is the header used to propagate the request id between services
	HEADER_REQUEST_ID = "X-Global-Transaction-Id"

	// environment variables read outside of the configuration file
	EnvVarHostname        = "HOSTNAME"
	EnvVarTerminationFile = "TERMINATION_FILE"
	EnvVarConfigPath      = "CONFIG_PATH"

	// PROPERTY_LOCAL_SERVER_PORT is published by the server once the listener is bound
	PROPERTY_LOCAL_SERVER_PORT = "local.server.port"

	// fallback values used by the status page
	DEFAULT_HOSTNAME = "localhost"
	DEFAULT_PORT     = "8080"

	SERVICE_NAME = "status-page"
)
