// Package cancelrequest lets a member withdraw their own pending request.
package cancelrequest
