// Package restengine implements the ledger store as a client of the REST shim served by circulation/httpapi.
//
// Wire contract:
//
//	GET  /api/{resource}  -> 200 {"items":[...]}, ETag: "<version>"
//	PUT  /api/{resource}  <- {"items":[...]}                       -> 204
//	POST /api/commit      <- {"commitId","operation","committedAt","changes":[{"resource","expectedVersion","items"}]}
//	                      -> 204, or 409 when an expected version is stale
package restengine
