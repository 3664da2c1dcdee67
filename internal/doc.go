// Package solacq implements a telemetry collector for a solar power
// installation.
//
// # Architecture
//
// The collector is structured into several key packages:
//   - api: HTTP clients for the inverter gateway and the power meter
//   - dtu: field-record decoding and installation-wide aggregation
//   - meter: power meter status normalization
//   - storage: per-cycle snapshot persistence (PostgreSQL or files)
//   - collector: the fetch-decode-aggregate-write cycle
//   - scheduler: fixed-interval cycle scheduling
//   - status: ops HTTP surface (readiness, metrics, latest snapshot)
//
// # Error containment
//
// Failures are contained at the smallest scope possible: a failed
// source fetch makes only that source's data absent for the cycle, a
// malformed inverter is dropped individually, and a store failure drops
// one cycle's writes. The scheduling loop itself never terminates on
// any of these; it logs and waits for the next interval.
//
// # Data flow
//
// Each cycle is a value passed through the pipeline: the raw payloads
// are fetched, decoded into per-cell and per-inverter readings,
// aggregated into an installation snapshot, joined with the normalized
// meter snapshot and written atomically. Nothing survives a cycle
// except the most recent snapshot, retained for reporting.
package solacq
