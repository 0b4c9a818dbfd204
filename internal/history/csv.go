package history

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

var csvColumns = []string{
	"RunID", "Server", "GeneratedAt", "WindowStart", "WindowEnd",
	"TotalRestorePoints", "InWindowCount", "CompliancePercent", "SkippedJobs",
}

// CSVStore appends entries to a CSV file, writing the header when the file
// is created.
type CSVStore struct {
	path string
}

// OpenCSV returns a CSVStore for path. The file is created on first Append.
func OpenCSV(path string) (*CSVStore, error) {
	if path == "" {
		return nil, errors.New("history path is required")
	}
	return &CSVStore{path: path}, nil
}

func (s *CSVStore) Append(ctx context.Context, entries ...Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat history %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvColumns); err != nil {
			return fmt.Errorf("write history header: %w", err)
		}
	}
	for _, e := range entries {
		if err := w.Write(entryToRow(e)); err != nil {
			return fmt.Errorf("write history entry: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write history %s: %w", s.path, err)
	}
	return f.Close()
}

func (s *CSVStore) List(ctx context.Context, q Query) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvColumns)

	var out []Entry
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read history %s: %w", s.path, err)
		}
		if line == 1 && row[0] == csvColumns[0] {
			continue
		}
		e, err := rowToEntry(row)
		if err != nil {
			return nil, fmt.Errorf("history %s line %d: %w", s.path, line, err)
		}
		if q.Server != "" && !strings.EqualFold(e.Server, q.Server) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *CSVStore) Close() error { return nil }

func entryToRow(e Entry) []string {
	return []string{
		e.RunID,
		e.Server,
		e.GeneratedAt.Format(time.RFC3339),
		e.WindowStart.Format(time.RFC3339),
		e.WindowEnd.Format(time.RFC3339),
		strconv.Itoa(e.TotalRestorePoints),
		strconv.Itoa(e.InWindowCount),
		strconv.FormatFloat(e.CompliancePercent, 'f', 2, 64),
		strconv.Itoa(e.SkippedJobs),
	}
}

func rowToEntry(row []string) (Entry, error) {
	var (
		e   Entry
		err error
	)
	e.RunID = row[0]
	e.Server = row[1]
	if e.GeneratedAt, err = time.Parse(time.RFC3339, row[2]); err != nil {
		return Entry{}, fmt.Errorf("GeneratedAt: %w", err)
	}
	if e.WindowStart, err = time.Parse(time.RFC3339, row[3]); err != nil {
		return Entry{}, fmt.Errorf("WindowStart: %w", err)
	}
	if e.WindowEnd, err = time.Parse(time.RFC3339, row[4]); err != nil {
		return Entry{}, fmt.Errorf("WindowEnd: %w", err)
	}
	if e.TotalRestorePoints, err = strconv.Atoi(row[5]); err != nil {
		return Entry{}, fmt.Errorf("TotalRestorePoints: %w", err)
	}
	if e.InWindowCount, err = strconv.Atoi(row[6]); err != nil {
		return Entry{}, fmt.Errorf("InWindowCount: %w", err)
	}
	if e.CompliancePercent, err = strconv.ParseFloat(row[7], 64); err != nil {
		return Entry{}, fmt.Errorf("CompliancePercent: %w", err)
	}
	if e.SkippedJobs, err = strconv.Atoi(row[8]); err != nil {
		return Entry{}, fmt.Errorf("SkippedJobs: %w", err)
	}
	return e, nil
}
