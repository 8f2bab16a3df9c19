package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/terra-ansible-demo/status-page/internal/config"
	"github.com/terra-ansible-demo/status-page/internal/constants"
)

// handle ready and termination messages

const defaultTerminationFile = "/dev/termination-log"

func GetTerminationFile(conf *config.Config, logger *slog.Logger) string {
	tf := ""
	if (conf != nil) && (conf.Service != nil) {
		tf = strings.TrimSpace(conf.Service.TerminationFile)
		if len(tf) > 0 {
			return tf
		}
	}
	// if the config file fails then we still need to be able to get this
	tf = os.Getenv(constants.EnvVarTerminationFile)
	if tf != "" {
		logger.Info("Termination file set from environment variable", "env", constants.EnvVarTerminationFile, "file", tf)
		return tf
	}
	// this must exist and not be part of the readonly file system
	logger.Info("Termination file fallback value", "file", defaultTerminationFile)
	return defaultTerminationFile
}

func writeFile(fname string, message string, fileType string, logger *slog.Logger) error {
	filename := filepath.Clean(fname)
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create the %s file: %s: %w", fileType, filename, err)
	}
	_, err = file.Write([]byte(message))
	if err1 := file.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		logger.Error(fmt.Sprintf("when trying to write %s message", fileType), "file", filename, "message", message, "error", err.Error())
	} else {
		logger.Info(fmt.Sprintf("Set %s message", fileType), "message", message)
	}
	return err
}

func getReadyContents(conf *config.Config, environment *config.Environment) string {
	return fmt.Sprintf("Version: %s\nBuild: %s\nBuildDate: %s\nProfiles: %s\nPort: %s\n",
		conf.Service.Version,
		conf.Service.Build,
		conf.Service.BuildDate,
		environment.ProfilesString(),
		environment.GetProperty(constants.PROPERTY_LOCAL_SERVER_PORT, constants.DEFAULT_PORT),
	)
}

// SetReady writes the ready file used by the container runtime probes. Nothing
// is written when no ready file is configured.
func SetReady(conf *config.Config, environment *config.Environment, logger *slog.Logger) error {
	if strings.TrimSpace(conf.Service.ReadyFile) == "" {
		logger.Info("No ready file configured")
		return nil
	}
	return writeFile(conf.Service.ReadyFile, getReadyContents(conf, environment), "ready", logger)
}

func SetTerminationMessage(terminationFile string, message string, logger *slog.Logger) error {
	return writeFile(terminationFile, message, "termination", logger)
}
