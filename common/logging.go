package common

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes logrus output to stderr for error-level entries
// and stdout for everything else, the stream separation NewLogger wires
// into every configured logger.
type OutputSplitter struct{}

func (splitter *OutputSplitter) Write(p []byte) (n int, err error) {
	if bytes.Contains(p, []byte("level=error")) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the package-level logrus instance for call sites that want
// OutputSplitter's stream separation without building a full LoggerConfig
// (cli's `eve routes`, which only needs to tweak the level before use).
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
}
