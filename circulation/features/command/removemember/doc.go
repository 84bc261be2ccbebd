// Package removemember deletes a borrower who holds no books.
package removemember
