// Package updatebook edits catalog data and the number of owned copies.
package updatebook
