// Package acceptreturn closes a loan, freezes its fine and puts the copy back on the shelf.
package acceptreturn
