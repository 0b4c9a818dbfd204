package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmehrtens/get-RPstatistics/internal/client"
	"github.com/mmehrtens/get-RPstatistics/internal/exclusion"
	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

// RunOptions configures one server run.
type RunOptions struct {
	Window     model.BackupWindow
	Exclusions *exclusion.Index // nil means nothing is excluded
	JobKinds   []model.JobKind  // empty means model.DefaultJobKinds
	Server     string
	Logger     *zap.Logger
	Now        func() time.Time // injectable for deterministic tests
}

func (o *RunOptions) defaults() {
	if o.Exclusions == nil {
		o.Exclusions, _ = exclusion.Build(exclusion.Options{})
	}
	if len(o.JobKinds) == 0 {
		o.JobKinds = model.DefaultJobKinds
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Run computes the SLA report for one backup server.
//
// Jobs are processed one at a time in name order; the deduplicator is only
// touched from this goroutine. A failure to list jobs aborts the run. A
// failure to list one job's restore points skips that job. Cancellation is
// checked between jobs and after a failed fetch, so a cancelled run returns
// ctx.Err() and never a partial report.
func Run(ctx context.Context, c client.CatalogClient, opts RunOptions) (*model.Report, error) {
	opts.defaults()
	log := opts.Logger.With(zap.String("server", opts.Server))

	kinds := make([]string, len(opts.JobKinds))
	allowed := make(map[model.JobKind]bool, len(opts.JobKinds))
	for i, k := range opts.JobKinds {
		kinds[i] = string(k)
		allowed[k] = true
	}

	infos, err := c.ListJobs(ctx, kinds)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]model.JobDescriptor, 0, len(infos))
	for _, info := range infos {
		job, ok := toJob(info)
		if !ok || !allowed[job.Kind] {
			continue
		}
		jobs = append(jobs, job)
	}
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	log.Info("processing jobs",
		zap.Int("jobs", len(jobs)),
		zap.Time("window_start", opts.Window.Start),
		zap.Time("window_end", opts.Window.End))

	dedup := NewDeduplicator()
	var skipped []string

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := foldJob(ctx, c, job, opts, dedup, log); err != nil {
			// A cancelled fetch is not a per-job failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn("skipping job, restore points unavailable",
				zap.String("job", job.Name), zap.Error(err))
			skipped = append(skipped, job.Name)
		}
	}

	records := dedup.Finalize()
	summary := Summarize(opts.Window, dedup.Total(), dedup.InWindow())

	log.Info("run complete",
		zap.Int("restore_points", summary.TotalRestorePoints),
		zap.Int("in_window", summary.InWindowCount),
		zap.Float64("compliance_percent", summary.CompliancePercent),
		zap.Int("skipped_jobs", len(skipped)))

	return &model.Report{
		RunID:       uuid.NewString(),
		Server:      opts.Server,
		GeneratedAt: opts.Now(),
		Summary:     summary,
		Records:     records,
		SkippedJobs: skipped,
	}, nil
}

// foldJob feeds one job's qualifying restore points into dedup. The only
// error it returns is a failure to list the job's restore points.
func foldJob(ctx context.Context, c client.CatalogClient, job model.JobDescriptor, opts RunOptions, dedup *Deduplicator, log *zap.Logger) error {
	excl := opts.Exclusions

	// Without job detail there is no description to match against.
	var description string
	detail, err := c.GetJob(ctx, job.ID)
	switch {
	case err != nil:
		log.Debug("job detail unavailable", zap.String("job", job.Name), zap.Error(err))
	case detail != nil:
		description = detail.Description
	}

	if excl.ExcludesJob(job.Name, description) {
		log.Debug("job excluded", zap.String("job", job.Name))
		return nil
	}

	points, err := c.ListRestorePoints(ctx, job.ID)
	if err != nil {
		return err
	}
	sortNewestFirst(points)

	var accepted int
	for _, rp := range points {
		cand := toCandidate(rp, job, description)

		// Job and VM rules both apply per candidate.
		if excl.ExcludesJob(cand.JobName, cand.JobDescription) || excl.ExcludesVM(cand.MachineName, cand.MachineID) {
			continue
		}

		rec, ok := Classify(cand, opts.Window)
		if !ok {
			continue
		}
		if dedup.Fold(rec) != Discarded {
			accepted++
		}
	}

	log.Debug("job folded",
		zap.String("job", job.Name),
		zap.Int("restore_points", len(points)),
		zap.Int("accepted", accepted))
	return nil
}
