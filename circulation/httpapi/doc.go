// Package httpapi is the gin HTTP shim of the circulation service.
//
// It serves two surfaces:
//
//	/api/:resource, /api/commit   the raw ledger store, spoken by restengine
//	/v1/...                       one endpoint per state-machine operation and report
//
// Every route except POST /api/auth/login needs a bearer token signed with the server's secret.
package httpapi
