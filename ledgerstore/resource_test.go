package ledgerstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

func Test_ParseResource_AcceptsAllLedgerCollections(t *testing.T) {
	for _, name := range []string{"books", "categories", "members", "issues", "users", "requests"} {
		resource, err := ledgerstore.ParseResource(name)

		require.NoError(t, err, name)
		assert.Equal(t, name, resource.String())
	}
}

func Test_ParseResource_RejectsUnknownNames(t *testing.T) {
	_, err := ledgerstore.ParseResource("chat")

	assert.ErrorIs(t, err, ledgerstore.ErrUnknownResource)
}

func Test_GetConsistencyLevel_DefaultsToStrong(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, ledgerstore.StrongConsistency, ledgerstore.GetConsistencyLevel(ctx))
	assert.Equal(t, ledgerstore.EventualConsistency, ledgerstore.GetConsistencyLevel(ledgerstore.WithEventualConsistency(ctx)))
	assert.Equal(t, "strong", ledgerstore.GetConsistencyLevel(ledgerstore.WithStrongConsistency(ctx)).String())
}
