package metrics

// Package metrics defines interfaces and records for observing allocation and
// release activity. Sinks like the Prometheus and InfluxDB implementations in
// infra/metrics record per-event documents and can be combined with
// NewMultiSink. The factory helpers build sinks from configuration.
