package logger

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
)

// LogFormatter renders entries as "timestamp [LEVEL] message".
type LogFormatter struct {
	TimestampFormat string
	LevelDesc       []string
}

// Format formats one entry in the custom layout.
func (f *LogFormatter) Format(entry *log.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)
	level := f.LevelDesc[entry.Level]
	msg := fmt.Sprintf("%s [%s] %s\n", timestamp, level, entry.Message)
	return []byte(msg), nil
}

// createLogFolder creates a dated folder for the current day's logs.
func createLogFolder(logFile string) (string, error) {
	baseDir := filepath.Dir(logFile)
	dateFolder := filepath.Join(baseDir, time.Now().Format("2006-01-02"))
	err := os.MkdirAll(dateFolder, 0755)
	return dateFolder, err
}

// initializeLogRotation sets up hourly rotation with gzip of rotated files.
func initializeLogRotation(logFile, dateFolder string, logFileMaxAge int) (*rotatelogs.RotateLogs, error) {
	return rotatelogs.New(
		fmt.Sprintf("%s/%%Y-%%m-%%d-%%H%s", dateFolder, filepath.Base(logFile)),
		rotatelogs.WithLinkName(fmt.Sprintf("%s/%s", dateFolder, filepath.Base(logFile))),
		rotatelogs.WithRotationTime(time.Hour),
		rotatelogs.WithMaxAge(time.Duration(logFileMaxAge)*24*time.Hour),
		rotatelogs.WithHandler(rotatelogs.HandlerFunc(func(e rotatelogs.Event) {
			if e.Type() != rotatelogs.FileRotatedEventType {
				return
			}
			compressLogFile(e.(*rotatelogs.FileRotatedEvent).PreviousFile())
		})),
	)
}

// OpenLog initializes logrus with rotation, compression and cleanup. Must be
// called once at process start before any WriteLog call.
func OpenLog() {
	log.SetFormatter(&LogFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		LevelDesc:       []string{"PANIC", "FATAL", "ERROR", "WARN", "INFO", "DEBUG", "TRACE"},
	})

	if os.Getenv("LOG_LEVEL") == "DEBUG" {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	logDirectory := os.Getenv("LOG_DIRECTORY")
	if logDirectory == "" {
		logDirectory = "./logs"
	}

	logFileMaxAge, err := strconv.Atoi(os.Getenv("LOG_FILE_MAX_AGE"))
	if err != nil || logFileMaxAge <= 0 {
		logFileMaxAge = 2 // days
	}

	logFile := filepath.Join(logDirectory, "importer.log")
	dateFolder, err := createLogFolder(logFile)
	if err != nil {
		fmt.Println("Error creating log folder:", err)
		os.Exit(1)
	}

	rl, err := initializeLogRotation(logFile, dateFolder, logFileMaxAge)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	log.SetOutput(rl)

	go cleanupRoutine(logDirectory, logFileMaxAge)
}

// WriteLog writes a log entry tagged with the import run id and a key that
// names the stage (FETCH, MAP, UPSERT, CSV, ASSET, ...).
func WriteLog(level string, runID string, key string, message interface{}) {
	if runID == "" {
		runID = "no-run-id"
	}

	entry := fmt.Sprintf("[%v] [%v] | %+v", key, runID, message)
	switch level {
	case "ERROR":
		log.Error(entry)
	case "WARN":
		log.Warn(entry)
	case "DEBUG":
		log.Debug(entry)
	default:
		log.Info(entry)
	}
}

// Info logs a plain informational message.
func Info(message string) {
	log.Info(message)
}

// Infof logs a formatted informational message.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Error logs a plain error message.
func Error(message string) {
	log.Error(message)
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Debug logs a debug message.
func Debug(message string) {
	log.Debug(message)
}

// cleanupRoutine periodically deletes dated log folders past their max age.
func cleanupRoutine(logDirectory string, logFileMaxAge int) {
	for {
		deleteOldDateFolders(logDirectory, logFileMaxAge)
		time.Sleep(time.Hour)
	}
}

// deleteOldDateFolders deletes date folders older than the max age.
func deleteOldDateFolders(baseDir string, maxAgeDays int) {
	cutoff := time.Now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)

	err := filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if d.IsDir() && path != baseDir {
			dirInfo, err := os.Stat(path)
			if err != nil {
				return err
			}
			if dirInfo.ModTime().Before(cutoff) {
				if err := os.RemoveAll(path); err != nil {
					log.Errorf("Failed to delete old log directory %s: %v", path, err)
				}
			}
		}
		return nil
	})

	if err != nil {
		log.Errorf("Log cleanup walk failed: %v", err)
	}
}

// compressLogFile compresses a rotated log file to gzip and removes the
// original.
func compressLogFile(src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}
	defer f.Close()

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat log file: %v", err)
	}

	gzf, err := os.OpenFile(src+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode())
	if err != nil {
		return fmt.Errorf("failed to open compressed log file: %v", err)
	}
	defer gzf.Close()

	gz := gzip.NewWriter(gzf)
	defer gz.Close()

	if _, err := io.Copy(gz, f); err != nil {
		return err
	}
	return os.Remove(src)
}
