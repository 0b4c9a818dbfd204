package model

import "time"

// RestorePointType is the kind of backup file a restore point is built from.
type RestorePointType string

const (
	RestorePointFull      RestorePointType = "Full"
	RestorePointIncrement RestorePointType = "Increment"
	RestorePointSynthetic RestorePointType = "Synthetic"
)

// DurationUnknown marks a record whose completion precedes its creation.
const DurationUnknown time.Duration = -1

// Storage is where a restore point's data lives. It is one of
// StandardStorage or ScaleOutStorage.
type Storage interface {
	RepositoryName() string
	RepositoryKind() string
	StoragePath() string
	isStorage()
}

// StandardStorage is a restore point kept on a single, simple repository.
type StandardStorage struct {
	Repository     string
	RepositoryType string
	Path           string
}

func (s StandardStorage) RepositoryName() string { return s.Repository }
func (s StandardStorage) RepositoryKind() string { return s.RepositoryType }
func (s StandardStorage) StoragePath() string    { return s.Path }
func (StandardStorage) isStorage()               {}

// ScaleOutStorage is a restore point kept on one extent of a scale-out
// repository.
type ScaleOutStorage struct {
	Repository string
	Extent     string
	ExtentType string
	Path       string
}

func (s ScaleOutStorage) RepositoryName() string { return s.Repository }
func (s ScaleOutStorage) RepositoryKind() string { return "ScaleOut/" + s.ExtentType }
func (s ScaleOutStorage) StoragePath() string    { return s.Path }
func (ScaleOutStorage) isStorage()               {}

// Candidate is a raw restore-point descriptor as delivered by the catalog.
// It is read-only to the engine.
type Candidate struct {
	MachineName    string
	MachineID      string
	JobName        string
	JobDescription string
	JobKind        JobKind
	Type           RestorePointType
	Storage        Storage

	CreationTime   time.Time
	CompletionTime *time.Time // nil while the point is still in progress

	ApproxSize int64 // bytes
	DataSize   int64 // bytes, backend-reported incremental data
	BackupSize int64 // bytes on disk

	RawDedupRatio float64
	RawComprRatio float64
}

// Record is an accepted, enriched candidate. At most one Record per machine
// survives a run.
type Record struct {
	Candidate

	ID             int // 1..N after finalization, 0 before
	Duration       time.Duration
	DataRead       int64
	DedupRatio     float64
	ComprRatio     float64
	Reduction      float64
	InBackupWindow bool
}

// Completed returns the completion time. It must only be called on records,
// which always carry one.
func (r Record) Completed() time.Time {
	if r.CompletionTime == nil {
		return time.Time{}
	}
	return *r.CompletionTime
}
