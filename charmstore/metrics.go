// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "charmstore_client"

// MetricsCollector is a prometheus.Collector and a RequestRecorder that
// counts and times the requests made to the charm store.
type MetricsCollector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

// NewMetricsCollector returns a new MetricsCollector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "requests_total",
				Help:      "The number of requests that received a response, by status code.",
			}, []string{"method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "request_duration_seconds",
				Help:      "The time taken to receive a response from the charm store.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			}, []string{"method"},
		),
		requestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "request_errors_total",
				Help:      "The number of requests that failed without a response.",
			}, []string{"method"},
		),
	}
}

// Record is part of the RequestRecorder interface.
func (c *MetricsCollector) Record(method string, _ *url.URL, res *http.Response, rtt time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(res.StatusCode)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(rtt.Seconds())
}

// RecordError is part of the RequestRecorder interface.
func (c *MetricsCollector) RecordError(method string, _ *url.URL, _ error) {
	c.requestErrors.WithLabelValues(method).Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.requestDuration.Describe(ch)
	c.requestErrors.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.requestDuration.Collect(ch)
	c.requestErrors.Collect(ch)
}
