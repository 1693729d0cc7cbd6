package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
)

// Color variables for console output.
var (
	SurgingColor   = color.New(color.FgRed, color.Bold) // SurgingColor represents standard danger.
	GrowingColor   = color.New(color.FgYellow)          // GrowingColor represents standard caution, not bold.
	StableColor    = color.New(color.FgCyan)            // StableColor represents a flat trend.
	DecliningColor = color.New(color.FgGreen)           // DecliningColor represents an easing trend.
)

// GetColorLabel returns a colored trend label for console output (table).
// It uses schema.GetTrendLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(reff float64) string {
	text := schema.GetTrendLabel(reff)

	switch text {
	case schema.SurgingTrend:
		return SurgingColor.Sprint(text)
	case schema.GrowingTrend:
		return GrowingColor.Sprint(text)
	case schema.StableTrend:
		return StableColor.Sprint(text)
	default: // "Declining"
		return DecliningColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".casetrack_cache.db"
	}
	return filepath.Join(homeDir, ".casetrack_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run history.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".casetrack_runs.db"
	}
	return filepath.Join(homeDir, ".casetrack_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
