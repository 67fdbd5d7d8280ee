package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/internaldefs"
)

// auditDroppedName is the one series rendered outside the shared definition
// tables; it comes from the dispatcher, not the counter registry.
const auditDroppedName = "gosession_audit_dropped_total"

type metricsSource interface {
	MetricsSnapshot() goSession.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders goSession metrics in Prometheus text exposition format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [goSession.Engine].
func NewPrometheusExporter(engine *goSession.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from a
// custom metrics source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render writes the current metrics in Prometheus text exposition format.
// Counters come straight from the snapshot; the refresh latency histogram is
// converted from per-bucket counts to the cumulative form the format expects.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	var ew expositionWriter
	ew.out.Grow(8192)

	for _, def := range internaldefs.CounterDefs {
		ew.family(def.Name, "counter", def.Help)
		ew.sample(def.Name, "", snapshot.Counters[def.ID])
	}

	for _, def := range internaldefs.HistogramDefs {
		buckets := internaldefs.CumulativeBuckets(
			internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID]))

		ew.family(def.Name, "histogram", def.Help)
		for i, le := range internaldefs.HistogramBounds {
			ew.sample(def.Name+"_bucket", `{le="`+le+`"}`, buckets[i])
		}
		ew.sample(def.Name+"_count", "", buckets[len(buckets)-1])
		// Core snapshots track bucket counts only; the sum series is kept
		// for scrapers that expect the full histogram triple.
		ew.sample(def.Name+"_sum", "", 0)
	}

	ew.family(auditDroppedName, "counter", "Dropped audit events due to dispatcher backpressure.")
	ew.sample(auditDroppedName, "", dropped)

	return ew.out.String()
}

// expositionWriter assembles text exposition output: a HELP/TYPE header per
// family followed by its samples.
type expositionWriter struct {
	out strings.Builder
}

func (w *expositionWriter) family(name, kind, help string) {
	w.out.WriteString("# HELP ")
	w.out.WriteString(name)
	w.out.WriteByte(' ')
	w.out.WriteString(escapeHelp(help))
	w.out.WriteByte('\n')
	w.out.WriteString("# TYPE ")
	w.out.WriteString(name)
	w.out.WriteByte(' ')
	w.out.WriteString(kind)
	w.out.WriteByte('\n')
}

func (w *expositionWriter) sample(name, labels string, value uint64) {
	w.out.WriteString(name)
	w.out.WriteString(labels)
	w.out.WriteByte(' ')
	w.out.WriteString(strconv.FormatUint(value, 10))
	w.out.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
