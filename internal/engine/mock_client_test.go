package engine

import (
	"context"
	"errors"
	"time"

	"github.com/mmehrtens/get-RPstatistics/internal/client"
)

// MockCatalogClient implements client.CatalogClient for testing.
type MockCatalogClient struct {
	ListJobsFn          func(ctx context.Context, kinds []string) ([]client.JobInfo, error)
	GetJobFn            func(ctx context.Context, id string) (*client.JobInfo, error)
	ListRestorePointsFn func(ctx context.Context, jobID string) ([]client.RestorePointInfo, error)
	PingFn              func(ctx context.Context) error
}

func (m *MockCatalogClient) ListJobs(ctx context.Context, kinds []string) ([]client.JobInfo, error) {
	if m.ListJobsFn != nil {
		return m.ListJobsFn(ctx, kinds)
	}
	return nil, nil
}

func (m *MockCatalogClient) GetJob(ctx context.Context, id string) (*client.JobInfo, error) {
	if m.GetJobFn != nil {
		return m.GetJobFn(ctx, id)
	}
	return nil, nil
}

func (m *MockCatalogClient) ListRestorePoints(ctx context.Context, jobID string) ([]client.RestorePointInfo, error) {
	if m.ListRestorePointsFn != nil {
		return m.ListRestorePointsFn(ctx, jobID)
	}
	return nil, nil
}

func (m *MockCatalogClient) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

func (m *MockCatalogClient) BaseURL() string {
	return "https://mock:9419"
}

// fixtureCatalog builds a mock from a static job -> restore points table.
// Jobs whose points are nil fail with errMockFailure.
func fixtureCatalog(jobs []client.JobInfo, points map[string][]client.RestorePointInfo) *MockCatalogClient {
	return &MockCatalogClient{
		ListJobsFn: func(_ context.Context, _ []string) ([]client.JobInfo, error) {
			return jobs, nil
		},
		GetJobFn: func(_ context.Context, id string) (*client.JobInfo, error) {
			for i := range jobs {
				if jobs[i].ID == id {
					j := jobs[i]
					return &j, nil
				}
			}
			return nil, nil
		},
		ListRestorePointsFn: func(_ context.Context, jobID string) ([]client.RestorePointInfo, error) {
			pts, ok := points[jobID]
			if !ok || pts == nil {
				return nil, errMockFailure
			}
			out := make([]client.RestorePointInfo, len(pts))
			copy(out, pts)
			return out, nil
		},
	}
}

// rp builds a restore point for machine completed at done (nil = running).
func rp(machine string, created time.Time, done *time.Time) client.RestorePointInfo {
	return client.RestorePointInfo{
		ID:             machine + "@" + created.Format(time.RFC3339),
		Name:           machine,
		PlatformID:     "id-" + machine,
		Type:           "Full",
		CreationTime:   created,
		CompletionTime: done,
		ApproxSize:     1 << 30,
		Repository:     client.RepositoryRef{Name: "repo1", Type: "LinuxLocal"},
	}
}

func at(t time.Time) *time.Time { return &t }

var errMockFailure = errors.New("mock failure")
