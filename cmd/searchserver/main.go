// Command searchserver runs the TF-IDF search engine behind an interactive
// shell. Documents are added with "add", queried with "find", and request
// statistics are kept for the last day's worth of searches.
//
// Optional integrations are switched on in the config file or by SS_*
// environment variables: a Redis query cache, Kafka request events, periodic
// PostgreSQL snapshots, and a Prometheus/health HTTP endpoint.
//
// Usage:
//
//	go run ./cmd/searchserver [--config configs/searchserver.yaml]
//	go run ./cmd/searchserver analytics --config configs/searchserver.yaml
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
