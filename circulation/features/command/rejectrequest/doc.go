// Package rejectrequest closes a pending request without lending anything.
package rejectrequest
