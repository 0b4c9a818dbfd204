package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	endpointToken      = "/api/oauth2/token"
	endpointServerInfo = "/api/v1/serverInfo"
	endpointJobs       = "/api/v1/jobs"
)

// getPaged walks a paginated list endpoint until every item is collected.
func getPaged[T any](ctx context.Context, c *DefaultClient, path string, query url.Values) ([]T, error) {
	var out []T
	skip := 0
	for {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("skip", strconv.Itoa(skip))
		q.Set("limit", strconv.Itoa(c.config.PageSize))

		body, err := c.doGet(ctx, path+"?"+q.Encode())
		if err != nil {
			return nil, err
		}

		var page pagedResponse[T]
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = append(out, page.Data...)
		skip += len(page.Data)

		if len(page.Data) == 0 || skip >= page.Pagination.Total {
			return out, nil
		}
	}
}

// GetServerInfo fetches the backup server's identity from /api/v1/serverInfo.
func (c *DefaultClient) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	body, err := c.doGet(ctx, endpointServerInfo)
	if err != nil {
		return nil, fmt.Errorf("GetServerInfo: %w", err)
	}

	var result ServerInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetServerInfo decode: %w", err)
	}
	return &result, nil
}

// ListJobs fetches every job of the given types from /api/v1/jobs.
func (c *DefaultClient) ListJobs(ctx context.Context, kinds []string) ([]JobInfo, error) {
	q := url.Values{}
	if len(kinds) > 0 {
		q.Set("typeFilter", strings.Join(kinds, ","))
	}
	jobs, err := getPaged[JobInfo](ctx, c, endpointJobs, q)
	if err != nil {
		return nil, fmt.Errorf("ListJobs: %w", err)
	}
	return jobs, nil
}

// GetJob fetches a single job from /api/v1/jobs/{id}. A 404 yields nil, nil.
func (c *DefaultClient) GetJob(ctx context.Context, id string) (*JobInfo, error) {
	if id == "" {
		return nil, fmt.Errorf("GetJob: id must not be empty")
	}
	body, err := c.doGet(ctx, endpointJobs+"/"+url.PathEscape(id))
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("GetJob: %w", err)
	}

	var result JobInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("GetJob decode: %w", err)
	}
	return &result, nil
}

// ListRestorePoints fetches the restore points of a job, newest completion
// first.
func (c *DefaultClient) ListRestorePoints(ctx context.Context, jobID string) ([]RestorePointInfo, error) {
	if jobID == "" {
		return nil, fmt.Errorf("ListRestorePoints: job id must not be empty")
	}
	q := url.Values{}
	q.Set("orderColumn", "CompletionTime")
	q.Set("orderAsc", "false")

	path := endpointJobs + "/" + url.PathEscape(jobID) + "/restorePoints"
	points, err := getPaged[RestorePointInfo](ctx, c, path, q)
	if err != nil {
		return nil, fmt.Errorf("ListRestorePoints %s: %w", jobID, err)
	}
	return points, nil
}
