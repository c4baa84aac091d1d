package codebench_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/codebench-edu/codebench"
)

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(codebench.GetSlogHandler(false, &buf))

	logger.Debug("noise")
	if buf.Len() != 0 {
		t.Errorf("debug record should be dropped outside debug mode, got %q", buf.String())
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("info record missing: %q", buf.String())
	}
}

func TestSlogHandlerSourceOnlyInDebug(t *testing.T) {
	var buf bytes.Buffer
	slog.New(codebench.GetSlogHandler(false, &buf)).Info("plain")
	if strings.Contains(buf.String(), "logging_test.go") {
		t.Errorf("source location leaked into non-debug output: %q", buf.String())
	}

	buf.Reset()
	slog.New(codebench.GetSlogHandler(true, &buf)).Info("verbose")
	if !strings.Contains(buf.String(), "logging_test.go") {
		t.Errorf("debug output should carry the call site: %q", buf.String())
	}
}
