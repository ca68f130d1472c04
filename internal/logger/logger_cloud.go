package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"cloud.google.com/go/logging"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"google.golang.org/api/option"
)

var logNameRegExp = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)

type CloudConfig struct {
	ProjectID string
	LogName   string
	Level     slog.Level
	// Writer receives the stderr copy of every record, os.Stderr when nil.
	Writer io.Writer
}

type entryLogger interface {
	Log(e logging.Entry)
}

// CloudHandler writes every record to stderr and, when a project is known, to Cloud Logging.
type CloudHandler struct {
	stderr slog.Handler
	cloud  entryLogger
	client *logging.Client
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

// LogName turns an application name into a valid Cloud Logging log ID.
func LogName(appName string) string {
	if appName == "" {
		return lib.DefaultCloudLogName
	}
	return logNameRegExp.ReplaceAllString(appName, "-")
}

// NewCloudHandler never fails: without a project, or when the client cannot be created,
// only the stderr handler is active.
func NewCloudHandler(ctx context.Context, cfg CloudConfig, opts ...option.ClientOption) *CloudHandler {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	h := &CloudHandler{
		stderr: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level}),
		level:  cfg.Level,
	}

	if cfg.ProjectID == "" {
		_, _ = fmt.Fprintf(w, "cloud logging: %s not set, using stderr only\n", lib.GoogleCloudProjectEnv)
		return h
	}

	client, err := logging.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		_, _ = fmt.Fprintf(w, "cloud logging: %v, using stderr only\n", err)
		return h
	}
	client.OnError = func(err error) {
		_, _ = fmt.Fprintf(w, "cloud logging failed: %v\n", err)
	}

	logName := LogName(cfg.LogName)
	h.client = client
	h.cloud = client.Logger(logName)
	_, _ = fmt.Fprintf(w, "cloud logging: initialized for project=%s, logName=%s\n", cfg.ProjectID, logName)

	return h
}

func severity(level slog.Level) logging.Severity {
	switch {
	case level < slog.LevelInfo:
		return logging.Debug
	case level < slog.LevelWarn:
		return logging.Info
	case level < slog.LevelError:
		return logging.Warning
	case level == slog.LevelError:
		return logging.Error
	default:
		return logging.Critical
	}
}

func (h *CloudHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *CloudHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.stderr.Handle(ctx, r)
	if h.cloud == nil {
		return err
	}

	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addField(fields, "", a)
	}
	prefix := h.groupPrefix()
	r.Attrs(func(a slog.Attr) bool {
		addField(fields, prefix, a)
		return true
	})

	h.cloud.Log(logging.Entry{
		Timestamp: r.Time,
		Severity:  severity(r.Level),
		Payload: map[string]any{
			"message": r.Message,
			"context": fields,
		},
	})
	return err
}

func (h *CloudHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.stderr = h.stderr.WithAttrs(attrs)
	prefix := h.groupPrefix()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		c.attrs = append(c.attrs, a)
	}
	return c
}

func (h *CloudHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.stderr = h.stderr.WithGroup(name)
	c.groups = append(c.groups, name)
	return c
}

// Close flushes buffered entries.
func (h *CloudHandler) Close() error {
	if h.client == nil {
		return nil
	}
	return h.client.Close()
}

func (h *CloudHandler) clone() *CloudHandler {
	return &CloudHandler{
		stderr: h.stderr,
		cloud:  h.cloud,
		client: h.client,
		level:  h.level,
		attrs:  append([]slog.Attr{}, h.attrs...),
		groups: append([]string{}, h.groups...),
	}
}

func (h *CloudHandler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func addField(fields map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, nested := range a.Value.Group() {
			addField(fields, groupPrefix, nested)
		}
		return
	}

	value := a.Value.Any()
	if err, ok := value.(error); ok {
		value = err.Error()
	}
	fields[prefix+a.Key] = value
}
