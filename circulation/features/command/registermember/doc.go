// Package registermember adds a borrower, either with a generated M### id or an externally assigned ENT#### id.
package registermember
