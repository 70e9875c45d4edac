package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	scierrors "github.com/SnoozeScript/aies-lab/pkg/errors"
)

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		if got := ToLogLevel(tt.in); got != tt.want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	err := scierrors.New("cleaning failed")
	logger.Error("pipeline aborted", ErrAttr(err))

	out := buf.String()
	if !strings.Contains(out, "pipeline aborted") {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, StacktraceAttrKey) {
		t.Errorf("output missing %q attribute: %s", StacktraceAttrKey, out)
	}
}
