package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	run "cloud.google.com/go/run/apiv2"
	runpb "cloud.google.com/go/run/apiv2/runpb"
	"github.com/AnotherFullstackDev/spinewire/internal/config"
	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"google.golang.org/api/option"
)

const jobExecutionTimeout = 15 * time.Minute

type JobsRunner struct {
	config config.CloudRunConfig
	client *run.JobsClient
}

func NewJobsRunner(ctx context.Context, cfg config.CloudRunConfig, opts ...option.ClientOption) (*JobsRunner, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w - Cloud Run project ID is required", lib.BadUserInputError)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w - Cloud Run region is required", lib.BadUserInputError)
	}

	client, err := run.NewJobsClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Cloud Run jobs client: %w", err)
	}

	return &JobsRunner{config: cfg, client: client}, nil
}

// JobName builds projects/{project}/locations/{region}/jobs/{job}.
func JobName(cfg config.CloudRunConfig, job string) (string, error) {
	if job == "" {
		return "", fmt.Errorf("%w - Cloud Run job name is required", lib.BadUserInputError)
	}
	return fmt.Sprintf("projects/%s/locations/%s/jobs/%s", cfg.ProjectID, cfg.Region, job), nil
}

func runJobRequest(name string, args []string) *runpb.RunJobRequest {
	req := &runpb.RunJobRequest{Name: name}
	if len(args) > 0 {
		req.Overrides = &runpb.RunJobRequest_Overrides{
			ContainerOverrides: []*runpb.RunJobRequest_Overrides_ContainerOverride{
				{Args: args},
			},
		}
	}
	return req
}

// RunJob starts an execution of the job, overriding the container arguments when args are given.
// With wait set it blocks until the execution finished or the timeout elapsed.
func (r *JobsRunner) RunJob(ctx context.Context, job string, wait bool, args ...string) (string, error) {
	name, err := JobName(r.config, job)
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "starting Cloud Run job", "job", name, "args", args)

	op, err := r.client.RunJob(ctx, runJobRequest(name, args))
	if err != nil {
		return "", fmt.Errorf("running Cloud Run job %s: %w", name, err)
	}

	if !wait {
		return op.Name(), nil
	}

	slog.InfoContext(ctx, "waiting for Cloud Run job execution to complete", "job", job)

	waitCtx, cancel := context.WithTimeout(ctx, jobExecutionTimeout)
	defer cancel()

	execution, err := op.Wait(waitCtx)
	if err != nil {
		return "", fmt.Errorf("waiting for Cloud Run job %s to complete: %w", name, err)
	}

	slog.InfoContext(ctx, "Cloud Run job execution completed",
		"job", job,
		"execution", execution.GetName(),
		"succeeded", execution.GetSucceededCount(),
		"failed", execution.GetFailedCount())

	if execution.GetFailedCount() > 0 {
		return execution.GetName(), fmt.Errorf("Cloud Run job %s finished with %d failed tasks", name, execution.GetFailedCount())
	}
	return execution.GetName(), nil
}

func (r *JobsRunner) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
