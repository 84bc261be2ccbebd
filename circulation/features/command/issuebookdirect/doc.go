// Package issuebookdirect lends a copy without a prior request, either at the librarian desk or via a QR self-checkout.
package issuebookdirect
