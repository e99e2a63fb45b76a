// Package logging provides the logging interface shared by the kernel, the
// orchestration layer and the application shell. It hides the zerolog backend
// behind a small Logger interface so the kernel can run with a no-op logger in
// benchmarks and a buffered one in tests.
package logging
