package obs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bsm/colblock/codec"
)

// PrometheusMetrics adapts colblock.Metrics to a small set of Prometheus
// collectors, labeled by codec algorithm id.
type PrometheusMetrics struct {
	bytesWritten *prometheus.CounterVec
	bytesRead    *prometheus.CounterVec
	writeRatio   *prometheus.HistogramVec
}

// NewPrometheusMetrics registers its collectors with reg. Passing
// prometheus.DefaultRegisterer matches the package-level registration style
// most callers expect.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		bytesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colblock",
			Name:      "block_bytes_written_total",
			Help:      "Total bytes written per block, after compression, by algorithm.",
		}, []string{"algo"}),
		bytesRead: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colblock",
			Name:      "block_bytes_read_total",
			Help:      "Total bytes read per block, before decompression, by algorithm.",
		}, []string{"algo"}),
		writeRatio: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "colblock",
			Name:      "block_compression_ratio",
			Help:      "Per-block compressed/uncompressed byte ratio, by algorithm.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"algo"}),
	}
}

func (m *PrometheusMetrics) ObserveBlockWrite(algo codec.ID, srcLen, dstLen int) {
	label := algoLabel(algo)
	m.bytesWritten.WithLabelValues(label).Add(float64(dstLen))
	if srcLen > 0 {
		m.writeRatio.WithLabelValues(label).Observe(float64(dstLen) / float64(srcLen))
	}
}

func (m *PrometheusMetrics) ObserveBlockRead(algo codec.ID, n int) {
	m.bytesRead.WithLabelValues(algoLabel(algo)).Add(float64(n))
}

func algoLabel(algo codec.ID) string {
	switch algo {
	case codec.None:
		return "none"
	case codec.LZ4:
		return "lz4"
	case codec.Zstd:
		return "zstd"
	case codec.S2:
		return "s2"
	case codec.Bitpack8:
		return "bitpack8"
	default:
		return strconv.Itoa(int(algo))
	}
}
