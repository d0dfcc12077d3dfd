package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Status label constants for console output.
const (
	OKValue      = "OK"
	WarnValue    = "Warn"
	FailureValue = "Failed"
)

// Color variables for console output.
var (
	OKColor      = color.New(color.FgGreen, color.Bold)
	WarnColor    = color.New(color.FgYellow)
	FailureColor = color.New(color.FgRed, color.Bold)
	HeaderColor  = color.New(color.FgCyan, color.Bold)
)

// GetStatusLabel returns a colored label for a yes/no condition. A degraded but
// working state (ok with warnings) renders as Warn.
func GetStatusLabel(ok, warn bool) string {
	switch {
	case !ok:
		return FailureColor.Sprint(FailureValue)
	case warn:
		return WarnColor.Sprint(WarnValue)
	default:
		return OKColor.Sprint(OKValue)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logrus.WithError(err).Fatalf("Fatal %s", msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logrus.WithError(err).Warnf("Warn %s", msg)
}

// GetDBFilePath returns the path to the default SQLite record store.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".stepviz.db"
	}
	return filepath.Join(homeDir, ".stepviz.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma-separated flag value, trimming blanks and dropping empty items.
// Order is preserved since it decides line colors for selections.
func SplitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
