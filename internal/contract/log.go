package contract

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger. Logs go to stderr so that
// stdout stays clean for csv/json output and the MCP stdio transport.
func SetupLogging(level logrus.Level) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
}
