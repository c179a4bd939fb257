package generator

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/dangerouslaser/repogen/internal/logger"
)

const (
	// markerFilename marks that a generation run is in progress, so two
	// runs never race on the same output tree.
	markerFilename = "repogen-run-marker.bin"

	// markerLifetime is the period after which a leftover marker is
	// considered stale and recovered from.
	markerLifetime = 15 * time.Minute

	// baseExecutableName is this tool's binary name without extension.
	baseExecutableName = "repogen"
)

// errGeneratorRunning indicates another generation run holds the marker.
var errGeneratorRunning = errors.New("another generator run is in progress")

// isGeneratorRunningNow checks presence of the run marker and attempts
// recovery when it looks stale.
func isGeneratorRunningNow(ctx context.Context) bool {
	fileInfo, err := os.Stat(markerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is stale, attempting cleanup")

		if err = terminateProcessByName(executableName()); err != nil {
			return true
		}

		if err = os.Remove(markerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// writeRunMarker claims the marker for the current run.
func writeRunMarker() error {
	return os.WriteFile(markerFilename, []byte{}, outputFileMode)
}

// removeRunMarker releases the marker once the run is over.
func removeRunMarker(ctx context.Context) {
	if err := os.Remove(markerFilename); err != nil {
		logger.Infof(ctx, "Unable to remove run marker: %v", err)
	}
}

// terminateProcessByName tries to kill other processes with the provided
// executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		runningProcess, err := os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// executableName returns the platform-specific binary name.
func executableName() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return baseExecutableName + ".exe"
	}

	return baseExecutableName
}
