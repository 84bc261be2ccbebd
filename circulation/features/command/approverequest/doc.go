// Package approverequest turns a pending request into an active loan.
package approverequest
