// Package command groups the state-machine operations of the circulation ledger.
//
// Every operation lives in its own package with the same four parts:
//
//	command.go          the intent plus BuildCommand
//	decide.go           a pure Decide(ledger, command) core.DecisionResult
//	command_handler.go  validate, then shell.ExecuteDecision (lock, load, decide, commit, retry)
//	decide_test.go      the business rules
//
// The tests in this package drive several operations together and check the copy accounting
// rules after every step.
package command
