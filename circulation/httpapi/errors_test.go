package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/httpapi"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
)

func Test_StatusFor(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"not found":         {err: core.NewFailure(core.NotFound, "x", ""), want: http.StatusNotFound},
		"unavailable":       {err: core.NewFailure(core.Unavailable, "x", ""), want: http.StatusConflict},
		"already processed": {err: core.NewFailure(core.AlreadyProcessed, "x", ""), want: http.StatusConflict},
		"in use":            {err: core.NewFailure(core.InUse, "x", ""), want: http.StatusConflict},
		"limit exceeded":    {err: core.NewFailure(core.LimitExceeded, "x", ""), want: http.StatusUnprocessableEntity},
		"validation":        {err: core.NewFailure(core.ValidationError, "x", ""), want: http.StatusBadRequest},
		"storage":           {err: errors.Join(shell.ErrStorage, errDiskOnFire), want: http.StatusServiceUnavailable},
		"retries exhausted": {err: ledgerstore.ErrConcurrencyConflict, want: http.StatusConflict},
		"deadline":          {err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		"anything else":     {err: errDiskOnFire, want: http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, httpapi.StatusFor(tc.err))
		})
	}
}
