// Package telemetry provides OpenTelemetry initialization and helpers
// for distributed tracing across the Ferry conversion service.
//
// The package configures OTLP HTTP export for traces and logs, usable
// with any collector reachable over HTTP.
package telemetry
