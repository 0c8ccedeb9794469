// Package observability provides event logging, gate metrics and alerting
// for dqe. Events are persisted as JSON Lines (JSONL) and metrics and
// alerts are derived on demand from the event log.
package observability
