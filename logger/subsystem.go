package logger

import (
	"fmt"
	"os"
)

// BackendLog is the logging backend used to create all subsystem loggers.
var BackendLog = NewBackend()

// SubsystemTags is an enum of all subsystem tags.
var SubsystemTags = struct {
	HSKD,
	CHAN,
	NAME,
	BCDB,
	GENS string
}{
	HSKD: "HSKD",
	CHAN: "CHAN",
	NAME: "NAME",
	BCDB: "BCDB",
	GENS: "GENS",
}

// subsystemLoggers maps each subsystem identifier to its associated
// logger.
var subsystemLoggers = make(map[string]*Logger)

// Get returns a logger of a specific sub-system.
func Get(tag string) (*Logger, bool) {
	logger, ok := subsystemLoggers[tag]
	return logger, ok
}

// SetLogLevel sets the logging level for the provided subsystem. Invalid
// subsystems are ignored. Uninitialized subsystems are dynamically
// created as needed.
func SetLogLevel(subsystemID string, logLevel string) {
	level, _ := LevelFromString(logLevel)
	if logger, ok := subsystemLoggers[subsystemID]; ok {
		logger.SetLevel(level)
	}
}

// SetLogLevels sets the log level for all subsystem loggers to the passed
// level. It also dynamically creates the subsystem loggers as needed, so
// it can be used to initialize the logging system.
func SetLogLevels(logLevel string) error {
	level, ok := LevelFromString(logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %s", logLevel)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}

// InitLog attaches log file and error log file to the backend log.
func InitLog(logFile, errLogFile string) {
	err := BackendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator "+
			"for level %s: %s", logFile, LevelTrace, err)
		os.Exit(1)
	}
	err = BackendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding log file %s as log rotator "+
			"for level %s: %s", errLogFile, LevelWarn, err)
		os.Exit(1)
	}
}

func init() {
	for _, tag := range []string{SubsystemTags.HSKD, SubsystemTags.CHAN,
		SubsystemTags.NAME, SubsystemTags.BCDB, SubsystemTags.GENS} {
		subsystemLoggers[tag] = BackendLog.Logger(tag)
	}
}
