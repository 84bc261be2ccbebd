// Package oteladapters connects the ledgerstore observability interfaces to OpenTelemetry.
//
// SlogBridgeLogger routes log records through the otelslog bridge so they carry the active trace,
// MetricsCollector maps durations to histograms and counters to counters, and TracingCollector
// opens one span per store operation.
package oteladapters
