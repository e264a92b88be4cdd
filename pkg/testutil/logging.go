package testutil

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func init() {
	logrus.SetLevel(logrus.TraceLevel)
	if !verboseTestRun(os.Args[1:]) {
		logrus.SetOutput(io.Discard)
	}
}

func verboseTestRun(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "-test.v", arg == "-test.v=true", strings.HasPrefix(arg, "-test.v=test2json"):
			return true
		}
	}
	return false
}

// CaptureLogs records every entry written to the standard logger for the
// rest of the test.
func CaptureLogs(t testing.TB) *test.Hook {
	hook := test.NewGlobal()
	t.Cleanup(func() {
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	})
	return hook
}
