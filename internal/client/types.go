package client

import "time"

// TokenResponse is the body returned by /api/oauth2/token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ServerInfo represents the response from /api/v1/serverInfo.
type ServerInfo struct {
	VBRID        string `json:"vbrId"`
	Name         string `json:"name"`
	BuildVersion string `json:"buildVersion"`
}

// Pagination is attached to every list response.
type Pagination struct {
	Total int `json:"total"`
	Count int `json:"count"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// pagedResponse is the envelope shared by all list endpoints.
type pagedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// JobInfo represents a single job from /api/v1/jobs.
type JobInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	IsDisabled  bool   `json:"isDisabled"`
}

// RestorePointInfo represents a single restore point of a job.
type RestorePointInfo struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`       // protected machine name
	PlatformID     string     `json:"platformId"` // protected machine identifier
	Type           string     `json:"type"`       // Full | Increment | Synthetic
	CreationTime   time.Time  `json:"creationTime"`
	CompletionTime *time.Time `json:"completionTime"`

	ApproxSize    int64   `json:"approxSize"`
	DataSize      int64   `json:"dataSize"`
	BackupSize    int64   `json:"backupSize"`
	DedupRatio    float64 `json:"dedupRatio"`
	CompressRatio float64 `json:"compressRatio"`

	Repository RepositoryRef `json:"repository"`
	FilePath   string        `json:"filePath"`
}

// RepositoryRef describes where a restore point is stored. Extent is set
// only for scale-out repositories.
type RepositoryRef struct {
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Extent *ExtentRef `json:"extent,omitempty"`
}

// ExtentRef is one backing store of a scale-out repository.
type ExtentRef struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
