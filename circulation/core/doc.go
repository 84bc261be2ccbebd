// Package core contains the circulation domain of a small library:
// the catalog, the membership records, the request queue and the issue ledger,
// plus the policies that decide due dates and fines.
//
// Everything in here is pure. Feature packages load a Ledger, hand it to a Decide function
// together with a command, and persist whatever the DecisionResult says has changed.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
