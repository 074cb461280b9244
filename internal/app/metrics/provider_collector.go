package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"speech-whisper/internal/app/api/provider"
)

// ProviderCollector exports provider.ProviderMetrics at scrape time.
type ProviderCollector struct {
	source provider.ProviderMetrics

	requests     *prometheus.Desc
	errors       *prometheus.Desc
	latency      *prometheus.Desc
	audioSeconds *prometheus.Desc
	healthy      *prometheus.Desc
}

// NewProviderCollector creates a collector over source.
func NewProviderCollector(source provider.ProviderMetrics) *ProviderCollector {
	return &ProviderCollector{
		source: source,
		requests: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "provider", "requests_total"),
			"Transcription requests per provider and result.",
			[]string{"provider", "result"}, nil),
		errors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "provider", "errors_total"),
			"Failed transcription requests per provider and error code.",
			[]string{"provider", "code"}, nil),
		latency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "provider", "latency_ewma_milliseconds"),
			"Smoothed transcription latency.",
			[]string{"provider"}, nil),
		audioSeconds: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "provider", "audio_processed_seconds_total"),
			"Seconds of audio transcribed.",
			[]string{"provider"}, nil),
		healthy: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "provider", "healthy"),
			"1 when the provider's recent success rate is acceptable.",
			[]string{"provider"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *ProviderCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.errors
	ch <- c.latency
	ch <- c.audioSeconds
	ch <- c.healthy
}

// Collect implements prometheus.Collector.
func (c *ProviderCollector) Collect(ch chan<- prometheus.Metric) {
	for name, stats := range c.source.GetOverallMetrics().ProviderStats {
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(stats.SuccessfulRequests), name, "success")
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(stats.FailedRequests), name, "failure")
		for code, count := range stats.ErrorBreakdown {
			ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(count), name, code)
		}
		ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, stats.AverageLatencyMs, name)
		ch <- prometheus.MustNewConstMetric(c.audioSeconds, prometheus.CounterValue, stats.TotalAudioProcessed, name)
		healthy := 0.0
		if stats.IsHealthy {
			healthy = 1
		}
		ch <- prometheus.MustNewConstMetric(c.healthy, prometheus.GaugeValue, healthy, name)
	}
}
