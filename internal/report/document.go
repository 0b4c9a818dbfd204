package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// document is the serialized shape shared by JSON and YAML output.
type document struct {
	Reports []reportDoc `json:"reports" yaml:"reports"`
}

type reportDoc struct {
	RunID       string      `json:"runId" yaml:"runId"`
	Server      string      `json:"server" yaml:"server"`
	GeneratedAt time.Time   `json:"generatedAt" yaml:"generatedAt"`
	Summary     summaryDoc  `json:"summary" yaml:"summary"`
	SkippedJobs []string    `json:"skippedJobs,omitempty" yaml:"skippedJobs,omitempty"`
	Records     []recordDoc `json:"records" yaml:"records"`
}

type summaryDoc struct {
	WindowStart        time.Time `json:"windowStart" yaml:"windowStart"`
	WindowEnd          time.Time `json:"windowEnd" yaml:"windowEnd"`
	TotalRestorePoints int       `json:"totalRestorePoints" yaml:"totalRestorePoints"`
	InWindowCount      int       `json:"inWindowCount" yaml:"inWindowCount"`
	CompliancePercent  float64   `json:"compliancePercent" yaml:"compliancePercent"`
}

type recordDoc struct {
	ID              int       `json:"id" yaml:"id"`
	MachineName     string    `json:"machineName" yaml:"machineName"`
	MachineID       string    `json:"machineId" yaml:"machineId"`
	JobName         string    `json:"jobName" yaml:"jobName"`
	JobDescription  string    `json:"jobDescription,omitempty" yaml:"jobDescription,omitempty"`
	JobType         string    `json:"jobType" yaml:"jobType"`
	Type            string    `json:"type" yaml:"type"`
	Repository      string    `json:"repository" yaml:"repository"`
	RepositoryType  string    `json:"repositoryType" yaml:"repositoryType"`
	StoragePath     string    `json:"storagePath,omitempty" yaml:"storagePath,omitempty"`
	CreationTime    time.Time `json:"creationTime" yaml:"creationTime"`
	CompletionTime  time.Time `json:"completionTime" yaml:"completionTime"`
	DurationSeconds *int64    `json:"durationSeconds" yaml:"durationSeconds"` // null when unknown
	DataRead        int64     `json:"dataRead" yaml:"dataRead"`
	DataSize        int64     `json:"dataSize" yaml:"dataSize"`
	ApproxSize      int64     `json:"approxSize" yaml:"approxSize"`
	BackupSize      int64     `json:"backupSize" yaml:"backupSize"`
	DedupRatio      float64   `json:"dedupRatio" yaml:"dedupRatio"`
	ComprRatio      float64   `json:"comprRatio" yaml:"comprRatio"`
	RawDedupRatio   float64   `json:"rawDedupRatio" yaml:"rawDedupRatio"`
	RawComprRatio   float64   `json:"rawComprRatio" yaml:"rawComprRatio"`
	Reduction       float64   `json:"reduction" yaml:"reduction"`
	InBackupWindow  bool      `json:"inBackupWindow" yaml:"inBackupWindow"`
}

func toDocument(reports []*model.Report) document {
	doc := document{Reports: make([]reportDoc, 0, len(reports))}
	for _, r := range reports {
		rd := reportDoc{
			RunID:       r.RunID,
			Server:      r.Server,
			GeneratedAt: r.GeneratedAt,
			Summary: summaryDoc{
				WindowStart:        r.Summary.WindowStart,
				WindowEnd:          r.Summary.WindowEnd,
				TotalRestorePoints: r.Summary.TotalRestorePoints,
				InWindowCount:      r.Summary.InWindowCount,
				CompliancePercent:  r.Summary.CompliancePercent,
			},
			SkippedJobs: r.SkippedJobs,
			Records:     make([]recordDoc, 0, len(r.Records)),
		}
		for _, rec := range r.Records {
			rd.Records = append(rd.Records, toRecordDoc(rec))
		}
		doc.Reports = append(doc.Reports, rd)
	}
	return doc
}

func toRecordDoc(rec model.Record) recordDoc {
	d := recordDoc{
		ID:             rec.ID,
		MachineName:    rec.MachineName,
		MachineID:      rec.MachineID,
		JobName:        rec.JobName,
		JobDescription: rec.JobDescription,
		JobType:        string(rec.JobKind),
		Type:           string(rec.Type),
		CreationTime:   rec.CreationTime,
		CompletionTime: rec.Completed(),
		DataRead:       rec.DataRead,
		DataSize:       rec.DataSize,
		ApproxSize:     rec.ApproxSize,
		BackupSize:     rec.BackupSize,
		DedupRatio:     rec.DedupRatio,
		ComprRatio:     rec.ComprRatio,
		RawDedupRatio:  rec.RawDedupRatio,
		RawComprRatio:  rec.RawComprRatio,
		Reduction:      rec.Reduction,
		InBackupWindow: rec.InBackupWindow,
	}
	if rec.Storage != nil {
		d.Repository = rec.Storage.RepositoryName()
		d.RepositoryType = rec.Storage.RepositoryKind()
		d.StoragePath = rec.Storage.StoragePath()
	}
	if rec.Duration != model.DurationUnknown {
		secs := int64(rec.Duration / time.Second)
		d.DurationSeconds = &secs
	}
	return d
}

// WriteJSON writes reports as one indented JSON document.
func WriteJSON(w io.Writer, reports []*model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(reports)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// WriteYAML writes reports as one YAML document.
func WriteYAML(w io.Writer, reports []*model.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(reports)); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return enc.Close()
}
