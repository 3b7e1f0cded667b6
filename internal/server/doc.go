// Package server implements the read-only monitoring HTTP API: job list and
// per-job status, incremental batch events, service statistics, and
// Prometheus metrics. It consumes batch snapshots only and never mutates
// jobs.
package server
