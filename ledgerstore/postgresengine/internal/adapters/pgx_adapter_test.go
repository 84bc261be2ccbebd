package adapters

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ DBAdapter = (*PGXAdapter)(nil)
	_ DBAdapter = (*SQLAdapter)(nil)
	_ DBAdapter = (*SQLXAdapter)(nil)
	_ DBRows    = (*pgxRows)(nil)
	_ DBResult  = (*pgxResult)(nil)
)

func Test_PGXResult_ReportsRowsAffectedFromCommandTag(t *testing.T) {
	result := &pgxResult{tag: pgconn.NewCommandTag("UPDATE 3")}

	affected, err := result.RowsAffected()

	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}
