// Package removebook deletes a title that has no copies on loan.
package removebook
