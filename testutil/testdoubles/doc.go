// Package testdoubles provides spies for the dependency-free observability interfaces of ledgerstore and
// the circulation shell, so tests can assert on emitted logs, metrics and spans without an OpenTelemetry backend.
package testdoubles
