// Package prometheus exposes Engine metrics as a prometheus.Collector.
//
// The collector reads a fresh snapshot on every scrape; nothing is cached.
// Register it on any registry, or use [Exporter.Handler] for a ready
// /metrics endpoint backed by a private registry.
package prometheus
