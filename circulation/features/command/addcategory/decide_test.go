package addcategory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/addcategory"
	"github.com/AntonStoeckl/library-circulation-go/testutil/fixtures"
)

func Test_Decide_Success_AssignsNextID(t *testing.T) {
	ledger := core.Ledger{Categories: []core.Category{{ID: "C001", Name: "Fiction"}}}

	result := addcategory.Decide(ledger, addcategory.BuildCommand(" Science ", "", fixtures.Now))

	require.NoError(t, result.HasError())
	assert.Equal(t, "C002", result.EntityID)
	assert.Equal(t, "Science", result.Ledger.Categories[1].Name)
	assert.Equal(t, []core.Collection{core.CategoriesCollection}, result.Changed)
}

func Test_Decide_Error_DuplicateNameIgnoringCase(t *testing.T) {
	ledger := core.Ledger{Categories: []core.Category{{ID: "C001", Name: "Fiction"}}}

	result := addcategory.Decide(ledger, addcategory.BuildCommand("fiction", "", fixtures.Now))

	fixtures.RequireFailure(t, result.HasError(), core.ValidationError)
}
