// Package turbinewatch implements an operator dashboard for a wind turbine
// monitoring backend.
//
// # Architecture
//
// The service is structured into several key packages:
//   - api: HTTP client for the monitoring backend
//   - models: Shared data structures and response shape decoding
//   - fleet: Latest fetched snapshot and every number derived from it
//   - chart: Donut and line chart geometry
//   - orchestrator: Per-view fetch plans, pagination, filters and alert resolution
//   - render: SVG chart documents behind an LRU cache
//   - web: HTTP views, charts, health and metrics
//   - grpc: gRPC health service following backend connectivity
//   - scheduler: Periodic refresh of the active view
//
// Key Features
//
//   - Views:
//     Dashboard, turbines, alerts and analytics each keep their own
//     filters, pagination and load phase. Only the newest load of the view
//     on screen is ever applied.
//
//   - Fleet Health:
//     Every turbine lands in exactly one of healthy, warning, critical or
//     offline, and the donut's slices always sum to a full circle.
//
//   - Connectivity:
//     An unreachable backend raises a persistent banner and flips the
//     gRPC health status to NOT_SERVING until a load succeeds again.
//
// Example Usage
//
//	curl -X POST localhost:8090/api/views/dashboard/navigate
//	curl -X PUT  localhost:8090/api/views/turbines/filters -d '{"status":"OFFLINE"}'
//	curl -X POST localhost:8090/api/alerts/42/resolve
//	curl localhost:8090/charts/donut.svg
//
// For more information about specific packages, see their respective
// documentation.
package turbinewatch
