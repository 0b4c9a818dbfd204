package engine

import (
	"sort"
	"strings"

	"github.com/mmehrtens/get-RPstatistics/internal/client"
	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// toJob maps a catalog job onto a JobDescriptor. Returns false when the job
// type is not one this tool reports on.
func toJob(j client.JobInfo) (model.JobDescriptor, bool) {
	kind, ok := model.ParseJobKind(j.Type)
	if !ok {
		return model.JobDescriptor{}, false
	}
	return model.JobDescriptor{
		ID:          j.ID,
		Name:        j.Name,
		Description: j.Description,
		Kind:        kind,
		Disabled:    j.IsDisabled,
	}, true
}

// toStorage picks the storage variant from the repository reference.
func toStorage(r client.RepositoryRef, path string) model.Storage {
	if r.Extent != nil {
		return model.ScaleOutStorage{
			Repository: r.Name,
			Extent:     r.Extent.Name,
			ExtentType: r.Extent.Type,
			Path:       path,
		}
	}
	return model.StandardStorage{
		Repository:     r.Name,
		RepositoryType: r.Type,
		Path:           path,
	}
}

// toRestorePointType maps the catalog type string, defaulting to Full.
func toRestorePointType(s string) model.RestorePointType {
	switch {
	case strings.EqualFold(s, string(model.RestorePointIncrement)):
		return model.RestorePointIncrement
	case strings.EqualFold(s, string(model.RestorePointSynthetic)):
		return model.RestorePointSynthetic
	default:
		return model.RestorePointFull
	}
}

// toCandidate combines a restore point with its job. description is the
// resolved job description, empty when the job detail was unavailable.
func toCandidate(rp client.RestorePointInfo, job model.JobDescriptor, description string) model.Candidate {
	return model.Candidate{
		MachineName:    rp.Name,
		MachineID:      rp.PlatformID,
		JobName:        job.Name,
		JobDescription: description,
		JobKind:        job.Kind,
		Type:           toRestorePointType(rp.Type),
		Storage:        toStorage(rp.Repository, rp.FilePath),
		CreationTime:   rp.CreationTime,
		CompletionTime: rp.CompletionTime,
		ApproxSize:     rp.ApproxSize,
		DataSize:       rp.DataSize,
		BackupSize:     rp.BackupSize,
		RawDedupRatio:  rp.DedupRatio,
		RawComprRatio:  rp.CompressRatio,
	}
}

// sortNewestFirst orders points by completion time descending, then machine
// name. Points without a completion time sort last.
func sortNewestFirst(points []client.RestorePointInfo) {
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i].CompletionTime, points[j].CompletionTime
		switch {
		case a == nil && b == nil:
			return points[i].Name < points[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return points[i].Name < points[j].Name
		}
	})
}
