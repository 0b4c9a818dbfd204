package model

import "strings"

// JobKind is the job-type tag reported by the backup platform.
type JobKind string

const (
	JobKindBackup         JobKind = "Backup"
	JobKindEndpointBackup JobKind = "EndpointBackup"
	JobKindBackupCopy     JobKind = "BackupCopy"
	JobKindFileBackup     JobKind = "FileBackup"
)

// DefaultJobKinds is the allow-list used when none is configured.
var DefaultJobKinds = []JobKind{JobKindBackup, JobKindEndpointBackup}

// ParseJobKind maps a platform type string onto a JobKind, case-insensitively.
// Returns false for tags this tool does not report on.
func ParseJobKind(s string) (JobKind, bool) {
	for _, k := range []JobKind{JobKindBackup, JobKindEndpointBackup, JobKindBackupCopy, JobKindFileBackup} {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, true
		}
	}
	return "", false
}

// JobDescriptor identifies a backup job in the catalog.
type JobDescriptor struct {
	ID          string
	Name        string
	Description string
	Kind        JobKind
	Disabled    bool
}
