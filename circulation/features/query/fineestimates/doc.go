// Package fineestimates implements the fine estimates query.
//
// It lists what members owe right now: a live estimate for every overdue active loan,
// computed with the configured fine policy, plus the frozen fines of returned loans that
// were not settled yet. The result can be narrowed to one member.
package fineestimates
