// Package analytics turns search requests into events: the Collector batches
// them onto Kafka, and the Aggregator folds them into query statistics either
// in-process or on the consuming side of the topic.
package analytics

import "time"

// RequestEvent describes one recorded search request.
type RequestEvent struct {
	RequestID string    `json:"request_id"`
	Query     string    `json:"query"`
	Rule      string    `json:"rule"`
	Results   int       `json:"results"`
	NoResult  bool      `json:"no_result"`
	LatencyUs int64     `json:"latency_us"`
	Timestamp time.Time `json:"timestamp"`
}
