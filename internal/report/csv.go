package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// csvHeader is the detail column order. Server leads so that multi-server
// output stays one flat table.
var csvHeader = []string{
	"Server", "ID", "MachineName", "MachineID", "JobName", "JobDescription", "JobType",
	"Type", "Repository", "RepositoryType", "StoragePath",
	"CreationTime", "CompletionTime", "DurationSeconds",
	"DataRead", "DataSize", "ApproxSize", "BackupSize",
	"DedupRatio", "ComprRatio", "RawDedupRatio", "RawComprRatio",
	"Reduction", "InBackupWindow",
}

// WriteCSV writes one header row and one row per record across all reports.
// Timestamps are RFC 3339; an unknown duration is an empty cell.
func WriteCSV(w io.Writer, reports []*model.Report, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range reports {
		for _, rec := range r.Records {
			if err := cw.Write(csvRow(r.Server, rec)); err != nil {
				return fmt.Errorf("write csv row %d: %w", rec.ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(server string, rec model.Record) []string {
	var repo, repoType, path string
	if rec.Storage != nil {
		repo = rec.Storage.RepositoryName()
		repoType = rec.Storage.RepositoryKind()
		path = rec.Storage.StoragePath()
	}
	var duration string
	if rec.Duration != model.DurationUnknown {
		duration = strconv.FormatInt(int64(rec.Duration/time.Second), 10)
	}
	return []string{
		server,
		strconv.Itoa(rec.ID),
		rec.MachineName,
		rec.MachineID,
		rec.JobName,
		rec.JobDescription,
		string(rec.JobKind),
		string(rec.Type),
		repo,
		repoType,
		path,
		rec.CreationTime.Format(time.RFC3339),
		rec.Completed().Format(time.RFC3339),
		duration,
		strconv.FormatInt(rec.DataRead, 10),
		strconv.FormatInt(rec.DataSize, 10),
		strconv.FormatInt(rec.ApproxSize, 10),
		strconv.FormatInt(rec.BackupSize, 10),
		strconv.FormatFloat(rec.DedupRatio, 'f', 2, 64),
		strconv.FormatFloat(rec.ComprRatio, 'f', 2, 64),
		strconv.FormatFloat(rec.RawDedupRatio, 'f', 2, 64),
		strconv.FormatFloat(rec.RawComprRatio, 'f', 2, 64),
		strconv.FormatFloat(rec.Reduction, 'f', 2, 64),
		strconv.FormatBool(rec.InBackupWindow),
	}
}
