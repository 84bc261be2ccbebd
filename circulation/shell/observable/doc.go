// Package observable decorates command and query handlers with metrics, tracing and logging.
//
// The wrappers never change a handler's result or error. Command outcomes are classified with
// shell.ClassifyCommandOutcome, so a domain refusal is counted as "rejected" and kept apart from
// infrastructure errors.
package observable
