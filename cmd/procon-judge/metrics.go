package main

import (
	"sync"

	"github.com/procon-tools/go-procon/filestore"
	"github.com/procon-tools/go-procon/types"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "procon_judge"
)

var (
	// 1ms -> 10s
	timeBuckets = []float64{
		0.001, 0.002, 0.005, 0.008, 0.010, 0.025, 0.050, 0.075, 0.1, 0.2,
		0.4, 0.6, 0.8, 1.0, 1.5, 2, 5, 10,
	}

	// 256 byte (1<<8) -> 256m (1<<28)
	fileSizeBucket = prometheus.ExponentialBuckets(1<<8, 2, 20)

	metricsSummaryQuantile = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

	verdictCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "verdict_total",
		Help:      "Number of test case verdicts",
	}, []string{"status"})

	execTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "time_seconds",
		Help:      "Histogram for the running time",
		Buckets:   timeBuckets,
	}, []string{"status"})

	execTimeSummary = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  metricsNamespace,
		Name:       "time",
		Help:       "Summary for the running time",
		Objectives: metricsSummaryQuantile,
	}, []string{"status"})

	fsSizeHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "file_size_bytes",
		Help:      "Histgram for the file size in the file store",
		Buckets:   fileSizeBucket,
	})

	fsTotalCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "file_current_total",
		Help:      "Total number of current files in the file store",
	})

	fsTotalSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "file_size_current_total",
		Help:      "Total size of current files in the file store",
	})
)

func init() {
	prometheus.MustRegister(verdictCount)
	prometheus.MustRegister(execTimeHist, execTimeSummary)
	prometheus.MustRegister(fsSizeHist, fsTotalCount, fsTotalSize)
}

func execObserve(_ *types.RunTask, r *types.ExecResult) {
	status := r.Status.String()
	ob := r.Time.Seconds()
	verdictCount.WithLabelValues(status).Inc()
	execTimeHist.WithLabelValues(status).Observe(ob)
	execTimeSummary.WithLabelValues(status).Observe(ob)
}

var _ filestore.FileStore = &metricsFileStore{}

// metricsFileStore tracks files added with content, scratch files from
// New are short lived and not counted
type metricsFileStore struct {
	mu sync.Mutex
	filestore.FileStore
	fileSize map[string]int64
}

func newMetricsFileStore(fs filestore.FileStore) filestore.FileStore {
	return &metricsFileStore{
		FileStore: fs,
		fileSize:  make(map[string]int64),
	}
}

func (m *metricsFileStore) Add(name string, content []byte) (string, error) {
	id, err := m.FileStore.Add(name, content)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := int64(len(content))
	m.fileSize[id] = s

	sf := float64(s)
	fsSizeHist.Observe(sf)
	fsTotalSize.Add(sf)
	fsTotalCount.Inc()

	return id, nil
}

func (m *metricsFileStore) Remove(id string) bool {
	success := m.FileStore.Remove(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.fileSize[id]
	if !ok {
		return success
	}
	delete(m.fileSize, id)

	fsTotalSize.Sub(float64(s))
	fsTotalCount.Dec()

	return success
}
