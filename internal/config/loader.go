package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/terra-ansible-demo/status-page/internal/constants"
)

var localMode = flag.Bool("local", false, "Server operates in local mode or not.")

// defaultEnvMappings are bound even when no configuration file is found,
// env_mappings in config.yaml add to or replace them.
var defaultEnvMappings = map[string]string{
	"port":              "service.port",
	"profiles_active":   "profiles.active",
	"log_level":         "logging.level",
	"ready_file":        "service.ready_file",
	"termination_file":  "service.termination_file",
	"otel_enabled":      "otel.enabled",
	"otel_exporter":     "otel.exporter",
	"otel_endpoint":     "otel.endpoint",
	"otel_insecure":     "otel.insecure",
	"otel_sample_ratio": "otel.sample_ratio",
}

type EnvMap struct {
	EnvMappings map[string]string `mapstructure:"env_mappings,omitempty"`
}

type SecretMap struct {
	Secrets struct {
		Dir      string            `mapstructure:"dir,omitempty"`
		Mappings map[string]string `mapstructure:"mappings,omitempty"`
	} `mapstructure:"secrets,omitempty"`
}

// readConfig locates and reads a configuration file using Viper. It searches for
// a file named "{name}.{ext}" in each of the given directories in order; the first
// found file is read. The returned Viper instance contains the parsed config and
// can be used for further unmarshaling or env binding.
//
// Parameters:
//   - logger: Logger for config load messages (success and failure).
//   - name: Config file base name without extension (e.g., "config").
//   - ext: Config file extension/type (e.g., "yaml"); used by Viper as config type.
//   - dirs: One or more directories to search for the file; first match wins.
//
// Returns:
//   - *viper.Viper: Viper instance with the config loaded, or a new Viper if no file was read.
//   - error: Non-nil if no config file was found in any dir or if reading failed.
func readConfig(logger *slog.Logger, name string, ext string, dirs ...string) (*viper.Viper, error) {
	logger.Info("Reading the configuration file", "file", fmt.Sprintf("%s.%s", name, ext), "dirs", fmt.Sprintf("%v", dirs))

	configValues := viper.New()
	setDefaults(configValues)

	configValues.SetConfigName(name) // name of config file (without extension)
	configValues.SetConfigType(ext)  // REQUIRED if the config file does not have the extension in the name
	for _, dir := range dirs {
		configValues.AddConfigPath(dir)
	}
	err := configValues.ReadInConfig() // Find and read the config file

	if err != nil {
		logger.Error("Failed to read the configuration file", "file", fmt.Sprintf("%s.%s", name, ext), "dirs", fmt.Sprintf("%v", dirs), "error", err.Error())
	} else {
		logger.Info("Read the configuration file", "file", configValues.ConfigFileUsed())
	}

	return configValues, err
}

func setDefaults(configValues *viper.Viper) {
	configValues.SetDefault("service.port", 8080)
	configValues.SetDefault("profiles.active", []string{})
	configValues.SetDefault("logging.level", "info")
	configValues.SetDefault("otel.enabled", false)
	configValues.SetDefault("otel.exporter", OTEL_EXPORTER_STDOUT)
	configValues.SetDefault("otel.service_name", constants.SERVICE_NAME)
	configValues.SetDefault("otel.sample_ratio", 1.0)
}

// mergeOverlay merges the file named by CONFIG_PATH on top of the bundled configuration.
// Operators mount this file to change individual values without shipping a full config.
func mergeOverlay(logger *slog.Logger, configValues *viper.Viper) error {
	overlayPath := strings.TrimSpace(os.Getenv(constants.EnvVarConfigPath))
	if overlayPath == "" {
		return nil
	}
	overlay := viper.New()
	overlay.SetConfigFile(filepath.Clean(overlayPath))
	if err := overlay.ReadInConfig(); err != nil {
		logger.Error("Failed to read the configuration overlay", "file", overlayPath, "error", err.Error())
		return fmt.Errorf("failed to read the configuration overlay %s: %w", overlayPath, err)
	}
	if err := configValues.MergeConfigMap(overlay.AllSettings()); err != nil {
		return fmt.Errorf("failed to merge the configuration overlay %s: %w", overlayPath, err)
	}
	logger.Info("Merged the configuration overlay", "file", overlay.ConfigFileUsed())
	return nil
}

func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// LoadConfig loads configuration using a two-tier system with Viper. This implements
// a loading strategy that supports cascading configuration values and multiple sources.
//
// Configuration loading order (later sources override earlier ones):
//  1. Built-in defaults (port 8080, no active profiles, info logging, tracing disabled)
//  2. config.yaml - the first one found in dirs (config, ./config, ../../config when dirs is empty)
//  3. The file named by CONFIG_PATH, merged on top of config.yaml
//  4. Secrets from files - Mapped via secrets.mappings with secrets.dir
//  5. Environment variables - The built-in mappings plus those in env_mappings
//
// A missing config.yaml is not fatal: the service is a smoke test and must come up
// on a freshly provisioned host with nothing but its defaults.
//
// Example configuration structure:
//
//	env_mappings:
//	  port: service.port
//	  profiles_active: profiles.active
//	secrets:
//	  dir: /tmp
//	  mappings:
//	    otel_endpoint:optional: otel.endpoint
//
// Parameters:
//   - logger: The logger for configuration loading messages
//   - version, build, buildDate: Set at compile time and copied into the service config
//   - dirs: Optional directories to search for config.yaml
//
// Returns:
//   - *Config: The loaded configuration with all sources applied
//   - error: An error if configuration cannot be loaded or is invalid
func LoadConfig(logger *slog.Logger, version string, build string, buildDate string, dirs ...string) (*Config, error) {
	if len(dirs) == 0 {
		dirs = []string{"config", "./config", "../../config"}
	}
	configValues, err := readConfig(logger, "config", "yaml", dirs...)
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		logger.Warn("No configuration file found, using the defaults", "dirs", fmt.Sprintf("%v", dirs))
	}

	if err := mergeOverlay(logger, configValues); err != nil {
		return nil, err
	}

	// set up the secrets from the secrets directory
	secrets := SecretMap{}
	if err := configValues.Unmarshal(&secrets); err != nil {
		return nil, err
	}
	if secrets.Secrets.Dir != "" {
		// check that the secrets directory exists
		if _, err := os.Stat(secrets.Secrets.Dir); !os.IsNotExist(err) {
			for fileName, fieldName := range secrets.Secrets.Mappings {
				// the secret file name can be optional by appending :optional to the file name
				optional := strings.HasSuffix(fileName, ":optional")
				if optional {
					fileName = strings.TrimSuffix(fileName, ":optional")
				}
				secret, err := getSecret(secrets.Secrets.Dir, fileName, optional)
				if err != nil {
					// log the error and fail the startup (by returning the error)
					logger.Error("Failed to read secret file", "file", filepath.Join(secrets.Secrets.Dir, fileName), "error", err.Error())
					return nil, err
				}
				if secret != "" {
					configValues.Set(fieldName, secret)
				}
			}
		}
	}

	// set up the environment variable mappings
	envMappings := EnvMap{}
	if err := configValues.Unmarshal(&envMappings); err != nil {
		return nil, err
	}
	mappings := maps.Clone(defaultEnvMappings)
	maps.Copy(mappings, envMappings.EnvMappings)
	for envName, field := range mappings {
		if err := configValues.BindEnv(field, strings.ToUpper(envName)); err != nil {
			return nil, fmt.Errorf("failed to bind the environment variable %s: %w", envName, err)
		}
		logger.Info("Mapped environment variable", "field_name", field, "env_name", strings.ToUpper(envName))
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	conf := Config{}
	if err := configValues.Unmarshal(&conf, decodeHook()); err != nil {
		return nil, fmt.Errorf("failed to decode the configuration: %w", err)
	}
	if conf.Service == nil {
		conf.Service = &ServiceConfig{}
	}
	if conf.Profiles == nil {
		conf.Profiles = &ProfilesConfig{}
	}
	if conf.Logging == nil {
		conf.Logging = &LoggingConfig{}
	}
	if conf.OTEL == nil {
		conf.OTEL = &OTELConfig{}
	}

	// set the version, build, and build date
	conf.Service.Version = version
	conf.Service.Build = build
	conf.Service.BuildDate = buildDate
	conf.Service.LocalMode = conf.Service.LocalMode || *localMode
	conf.values = configValues
	return &conf, nil
}

// getSecret reads a secret from a file and returns the value as a string.
// If the file does not exist and optional is true, it silently returns an empty string.
// Any other failure is returned to the caller. Surrounding whitespace (typically the
// trailing newline of a mounted secret) is removed.
//
// Parameters:
//   - secretsDir: The directory containing the secret files
//   - secretName: The name of the secret file
//   - optional: If true, missing files are not an error
//
// Returns:
//   - string: The value of the secret as a string, or empty string if an optional file doesn't exist
//   - error: The read error, if any
func getSecret(secretsDir string, secretName string, optional bool) (string, error) {
	// this is the full name of the secrets file to read
	secret, err := os.ReadFile(filepath.Join(secretsDir, secretName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && optional {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
