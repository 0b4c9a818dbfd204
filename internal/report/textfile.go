package report

import (
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/mmehrtens/get-RPstatistics/internal/model"
)

const metricPrefix = "rpstats_"

// gauge describes one per-server summary gauge.
type gauge struct {
	name  string
	help  string
	value func(r *model.Report) float64
}

var gauges = []gauge{
	{"compliance_percent", "Share of machines whose latest restore point completed inside the backup window.",
		func(r *model.Report) float64 { return r.Summary.CompliancePercent }},
	{"restore_points", "Machines with a qualifying restore point.",
		func(r *model.Report) float64 { return float64(r.Summary.TotalRestorePoints) }},
	{"restore_points_in_window", "Machines whose latest restore point completed inside the backup window.",
		func(r *model.Report) float64 { return float64(r.Summary.InWindowCount) }},
	{"skipped_jobs", "Jobs skipped because their restore points could not be listed.",
		func(r *model.Report) float64 { return float64(len(r.SkippedJobs)) }},
	{"window_start_timestamp_seconds", "Start of the evaluated backup window.",
		func(r *model.Report) float64 { return float64(r.Summary.WindowStart.Unix()) }},
	{"window_end_timestamp_seconds", "End of the evaluated backup window.",
		func(r *model.Report) float64 { return float64(r.Summary.WindowEnd.Unix()) }},
	{"last_run_timestamp_seconds", "Time the report was generated.",
		func(r *model.Report) float64 { return float64(r.GeneratedAt.Unix()) }},
}

// MetricFamilies builds one gauge family per summary value with a "server"
// label per report.
func MetricFamilies(reports []*model.Report) []*dto.MetricFamily {
	reports = nonNil(reports)
	families := make([]*dto.MetricFamily, 0, len(gauges))
	for _, g := range gauges {
		mf := &dto.MetricFamily{
			Name: proto.String(metricPrefix + g.name),
			Help: proto.String(g.help),
			Type: dto.MetricType_GAUGE.Enum(),
		}
		for _, r := range reports {
			mf.Metric = append(mf.Metric, &dto.Metric{
				Label: []*dto.LabelPair{{Name: proto.String("server"), Value: proto.String(r.Server)}},
				Gauge: &dto.Gauge{Value: proto.Float64(g.value(r))},
			})
		}
		families = append(families, mf)
	}
	return families
}

// EncodeTextfile writes reports in the Prometheus text exposition format.
func EncodeTextfile(w io.Writer, reports []*model.Report) error {
	for _, mf := range MetricFamilies(reports) {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfile atomically replaces path with the metrics for reports, for
// pickup by node_exporter's textfile collector.
func WriteTextfile(path string, reports []*model.Report) error {
	f, err := Create(path)
	if err != nil {
		return err
	}
	if err := EncodeTextfile(f, reports); err != nil {
		f.Abort()
		return err
	}
	return f.Close()
}
