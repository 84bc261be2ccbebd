// Package app assembles every command and query handler of the circulation service
// behind its observable wrapper, so the HTTP shim and the CLI run the same stack.
package app
