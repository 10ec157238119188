package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/ndtree/ndtree/session"
	"github.com/ndtree/ndtree/tree"
)

// logWriter writes to stderr and to the rotator, if there is one.  stdout
// is left to command output.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var (
	// backendLog is shared by every subsystem logger
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is nil until InitLogRotator runs; before that logs only go
	// to stderr
	logRotator *rotator.Rotator

	treeLog = backendLog.Logger("TREE")
	sessLog = backendLog.Logger("SESS")

	// Log is for the command line tool itself
	Log = backendLog.Logger("NDTR")
)

func init() {
	tree.UseLogger(treeLog)
	session.UseLogger(sessLog)
}

// subsystemLoggers maps each subsystem id to its logger
var subsystemLoggers = map[string]btclog.Logger{
	"TREE": treeLog,
	"SESS": sessLog,
	"NDTR": Log,
}

// InitLogRotator starts writing logs to logFile as well, rolling it over
// every 10 MB and keeping 3 old rolls.
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	return nil
}

// Close flushes and closes the log file
func Close() {
	if logRotator != nil {
		logRotator.Close()
		logRotator = nil
	}
}

// SupportedSubsystems returns the sorted subsystem ids
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(subsystemLoggers))
	for id := range subsystemLoggers {
		subsystems = append(subsystems, id)
	}
	sort.Strings(subsystems)
	return subsystems
}

// SetLogLevel sets the level of one subsystem.  Unknown subsystems are
// ignored.
func SetLogLevel(subsystemID string, level btclog.Level) {
	if logger, ok := subsystemLoggers[subsystemID]; ok {
		logger.SetLevel(level)
	}
}

// SetLogLevels parses levelStr ("trace", "debug", "info", ...) and applies it
// to every subsystem.
func SetLogLevels(levelStr string) error {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("invalid log level %q", levelStr)
	}
	for id := range subsystemLoggers {
		SetLogLevel(id, level)
	}
	return nil
}
