package ledgeraudit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/ledgeraudit"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func Test_Project_ConsistentLedger(t *testing.T) {
	ledger := core.Ledger{
		Books:   []core.Book{fixtures.Book("B001", 2, 1)},
		Members: []core.Member{fixtures.Member("M001")},
		Issues:  []core.Issue{fixtures.ActiveIssue("I001", "B001", "M001", fixtures.Now, fixtures.Now)},
	}

	audit := ledgeraudit.Project(ledger, ledgeraudit.BuildQuery())

	assert.True(t, audit.Consistent)
	assert.Empty(t, audit.Violations)
	require.Len(t, audit.Books, 1)
	assert.Equal(t, 1, audit.Books[0].ExpectedAvailable)
}

func Test_Project_FindsDriftAndOrphans(t *testing.T) {
	// arrange
	ledger := core.Ledger{
		Books:    []core.Book{fixtures.Book("B001", 2, 2)},
		Members:  []core.Member{fixtures.Member("M001")},
		Issues:   []core.Issue{fixtures.ActiveIssue("I001", "B001", "M001", fixtures.Now, fixtures.Now)},
		Requests: []core.Request{fixtures.PendingRequest("R001", "B404", "M001", fixtures.Now)},
	}

	// act
	audit := ledgeraudit.Project(ledger, ledgeraudit.BuildQuery())

	// assert
	assert.False(t, audit.Consistent)

	rules := make([]string, 0, len(audit.Violations))
	for _, v := range audit.Violations {
		rules = append(rules, v.Rule)
	}

	assert.ElementsMatch(t, []string{core.RuleCopyAccounting, core.RuleOrphanRequest}, rules)
}

func Test_QueryHandler_ReadsFromStore(t *testing.T) {
	handler, err := ledgeraudit.NewQueryHandler(fixtures.Store(t, core.Ledger{Books: []core.Book{fixtures.Book("B001", 1, 1)}}))
	require.NoError(t, err)

	audit, err := handler.Handle(context.Background(), ledgeraudit.BuildQuery())

	require.NoError(t, err)
	assert.True(t, audit.Consistent)
}

func Test_NewQueryHandler_RejectsNilReader(t *testing.T) {
	_, err := ledgeraudit.NewQueryHandler(nil)

	assert.Error(t, err)
}
