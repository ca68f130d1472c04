package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/AnotherFullstackDev/spinewire/internal/gcp"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const (
	StatusOK            = "OK"
	StatusError         = "ERROR"
	StatusNotConfigured = "not_configured"
	StatusConfigured    = "configured"

	ConnectionHealthy = "healthy"
	ConnectionFailed  = "failed"

	databaseProbeTimeout = 3 * time.Second
)

type Report struct {
	Service     string         `json:"service"`
	Environment string         `json:"environment"`
	Status      int            `json:"status"`
	Timestamp   string         `json:"timestamp"`
	Database    DatabaseReport `json:"database"`
	Gcp         GcpReport      `json:"gcp"`
}

type DatabaseReport struct {
	Status     string `json:"status"`
	Connection string `json:"connection,omitempty"`
	Error      string `json:"error,omitempty"`
}

type GcpReport struct {
	Status     string  `json:"status"`
	AuthMethod *string `json:"auth_method"`
	ProjectID  *string `json:"project_id,omitempty"`

	detailed bool
}

// MarshalJSON always emits project_id in detailed reports, as null when the project is unknown.
func (g GcpReport) MarshalJSON() ([]byte, error) {
	type plain GcpReport
	if !g.detailed {
		return json.Marshal(plain(g))
	}

	return json.Marshal(struct {
		plain
		ProjectID *string `json:"project_id"`
	}{plain(g), g.ProjectID})
}

type Service struct {
	appName      string
	environment  string
	databaseURL  string
	env          gcp.Environment
	pingDatabase func(ctx context.Context, databaseURL string) error
	now          func() time.Time
}

func NewService(appName, environment, databaseURL string, env gcp.Environment) *Service {
	return &Service{
		appName:      appName,
		environment:  environment,
		databaseURL:  databaseURL,
		env:          env,
		pingDatabase: pingPostgres,
		now:          time.Now,
	}
}

// Check runs the database and credentials probes concurrently.
// Failing probes are reported, never returned; detailed adds error messages and the project ID.
func (s *Service) Check(ctx context.Context, detailed bool) Report {
	report := Report{
		Service:     s.appName,
		Environment: s.environment,
		Status:      http.StatusOK,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Database = s.checkDatabase(gctx, detailed)
		return nil
	})
	g.Go(func() error {
		report.Gcp = s.checkGcp(gctx, detailed)
		return nil
	})
	_ = g.Wait()

	return report
}

func (s *Service) checkDatabase(ctx context.Context, detailed bool) DatabaseReport {
	if s.databaseURL == "" {
		return DatabaseReport{Status: StatusNotConfigured}
	}

	if err := s.pingDatabase(ctx, s.databaseURL); err != nil {
		slog.WarnContext(ctx, "database health probe failed", "error", err)

		result := DatabaseReport{Status: StatusError, Connection: ConnectionFailed}
		if detailed {
			result.Error = err.Error()
		}
		return result
	}

	return DatabaseReport{Status: StatusOK, Connection: ConnectionHealthy}
}

func (s *Service) checkGcp(ctx context.Context, detailed bool) GcpReport {
	result := GcpReport{Status: StatusNotConfigured}

	if method := gcp.DetectAuthMethod(ctx, s.env); method != gcp.AuthMethodNone {
		m := string(method)
		result.Status = StatusConfigured
		result.AuthMethod = &m
	}

	if detailed {
		result.detailed = true
		if projectID, ok := s.env.LookupEnv(lib.GoogleCloudProjectEnv); ok && projectID != "" {
			result.ProjectID = &projectID
		}
	}

	return result
}

func pingPostgres(ctx context.Context, databaseURL string) error {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("parsing database url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("%w - unsupported database scheme %q", lib.BadUserInputError, u.Scheme)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, databaseProbeTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}
