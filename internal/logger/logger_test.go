package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"cloud.google.com/go/logging"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	entries []logging.Entry
}

func (l *recordingLogger) Log(e logging.Entry) {
	l.entries = append(l.entries, e)
}

func TestParseLevel(t *testing.T) {
	r := require.New(t)

	t.Run("should parse names case-insensitively", func(t *testing.T) {
		r.Equal(slog.LevelDebug, ParseLevel("DEBUG"))
		r.Equal(slog.LevelWarn, ParseLevel("warn"))
		r.Equal(slog.LevelWarn, ParseLevel("Warning"))
		r.Equal(slog.LevelError, ParseLevel(" error "))
	})

	t.Run("should fall back to info", func(t *testing.T) {
		r.Equal(slog.LevelInfo, ParseLevel(""))
		r.Equal(slog.LevelInfo, ParseLevel("verbose"))
	})
}

func TestNewHandler(t *testing.T) {
	r := require.New(t)

	t.Run("should write json when not on a terminal", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newHandler(&buf, slog.LevelInfo, FormatAuto, false))
		logger.Info("setup finished", "files", 3)
		logger.Debug("hidden")

		var line map[string]any
		r.NoError(json.Unmarshal(buf.Bytes(), &line))
		r.Equal("setup finished", line["msg"])
		r.Equal(float64(3), line["files"])
		r.Equal(1, strings.Count(buf.String(), "\n"))
	})

	t.Run("should write plain console lines for the text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(newHandler(&buf, slog.LevelDebug, FormatText, false))
		logger.Debug("stub copied", "path", "docker")

		r.Contains(buf.String(), "stub copied")
		r.Contains(buf.String(), "path=docker")
		r.NotContains(buf.String(), "\033[")
	})
}

func TestLogName(t *testing.T) {
	r := require.New(t)

	t.Run("should default to the laravel log", func(t *testing.T) {
		r.Equal(lib.DefaultCloudLogName, LogName(""))
	})

	t.Run("should replace unsupported characters", func(t *testing.T) {
		r.Equal("Acme-Billing-API", LogName("Acme Billing/API"))
		r.Equal("acme_api-v1.2", LogName("acme_api-v1.2"))
	})
}

func TestSeverity(t *testing.T) {
	r := require.New(t)

	t.Run("should map slog levels to cloud severities", func(t *testing.T) {
		r.Equal(logging.Debug, severity(slog.LevelDebug))
		r.Equal(logging.Info, severity(slog.LevelInfo))
		r.Equal(logging.Warning, severity(slog.LevelWarn))
		r.Equal(logging.Error, severity(slog.LevelError))
		r.Equal(logging.Critical, severity(slog.LevelError+4))
	})
}

func TestCloudHandler(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	t.Run("should fall back to stderr without a project", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewCloudHandler(ctx, CloudConfig{Level: slog.LevelInfo, Writer: &buf})
		r.Nil(h.cloud)

		slog.New(h).Info("request served", "status", 200)
		r.Contains(buf.String(), "using stderr only")
		r.Contains(buf.String(), `"msg":"request served"`)
		r.NoError(h.Close())
	})

	t.Run("should send structured entries to cloud logging", func(t *testing.T) {
		var buf bytes.Buffer
		cloud := &recordingLogger{}
		h := NewCloudHandler(ctx, CloudConfig{Level: slog.LevelDebug, Writer: &buf})
		h.cloud = cloud

		logger := slog.New(h).With("service", "acme-api").WithGroup("db")
		logger.Error("query failed", "error", errors.New("timeout"), slog.Group("pool", "open", 4))

		r.Len(cloud.entries, 1)
		entry := cloud.entries[0]
		r.Equal(logging.Error, entry.Severity)

		payload := entry.Payload.(map[string]any)
		r.Equal("query failed", payload["message"])
		fields := payload["context"].(map[string]any)
		r.Equal("acme-api", fields["service"])
		r.Equal("timeout", fields["db.error"])
		r.Equal(int64(4), fields["db.pool.open"])
		r.Contains(buf.String(), "query failed")
	})

	t.Run("should respect the level", func(t *testing.T) {
		cloud := &recordingLogger{}
		h := NewCloudHandler(ctx, CloudConfig{Level: slog.LevelWarn, Writer: &bytes.Buffer{}})
		h.cloud = cloud

		slog.New(h).Info("ignored")
		r.Empty(cloud.entries)
	})
}
