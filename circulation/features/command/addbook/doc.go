// Package addbook puts a new title into the catalog.
package addbook
