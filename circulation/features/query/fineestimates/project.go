package fineestimates

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

// Project computes outstanding fines from the ledger. It is a pure function.
//
// Query Logic:
//
//	GIVEN: the current ledger and a fine policy
//	WHEN: FineEstimates is executed at query.At
//	THEN: one entry per issue that owes money, ordered by member and due date
//	INCLUDES: active issues past their due date (estimated with calendar days)
//	INCLUDES: returned issues with an unpaid fine (replayed, never recomputed)
//	EXCLUDES: settled fines and loans that are not overdue
func Project(ledger core.Ledger, query Query, policy core.FinePolicy) FineEstimates {
	entries := make([]FineEntry, 0)
	perMember := make(map[core.MemberIDString]float64)
	total := 0.0

	for _, issue := range ledger.Issues {
		if query.MemberID != "" && issue.MemberID != query.MemberID {
			continue
		}

		var entry FineEntry

		switch {
		case issue.IsActive():
			amount := core.CalculateFine(issue, query.At, policy)
			if amount <= 0 {
				continue
			}

			entry = newEntry(issue, core.CalendarDaysOverdue(issue.DueDate, query.At), amount, false)

		case issue.HasUnpaidFine():
			entry = newEntry(issue, issue.DaysOverdue, issue.Fine, true)

		default:
			continue
		}

		entries = append(entries, entry)
		perMember[entry.MemberID] += entry.Amount
		total += entry.Amount
	}

	slices.SortFunc(entries, func(a, b FineEntry) int {
		return cmp.Or(cmp.Compare(a.MemberID, b.MemberID), a.DueDate.Compare(b.DueDate))
	})

	return FineEstimates{
		Entries:   entries,
		PerMember: perMember,
		Total:     total,
		Policy:    policy.Name(),
		Count:     len(entries),
	}
}

func newEntry(issue core.Issue, daysOverdue int, amount float64, final bool) FineEntry {
	return FineEntry{
		IssueID:     issue.ID,
		BookID:      issue.BookID,
		MemberID:    issue.MemberID,
		DueDate:     issue.DueDate,
		DaysOverdue: daysOverdue,
		Amount:      amount,
		Final:       final,
	}
}
