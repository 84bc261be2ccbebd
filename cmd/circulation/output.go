package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
)

const dateLayout = "2006-01-02"

// ErrLedgerInconsistent makes "audit" exit non-zero when violations were found.
var ErrLedgerInconsistent = errors.New("ledger is inconsistent")

var jsonOut = jsoniter.Config{EscapeHTML: false, SortMapKeys: true, IndentionStep: 2}.Froze()

func printJSON(w io.Writer, v any) error {
	data, err := jsonOut.Marshal(v)
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))

	return err
}

func printOutcome(w io.Writer, what string, result shell.HandlerResult) error {
	if result.EntityID == "" {
		_, err := fmt.Fprintf(w, "%s\n", what)
		return err
	}

	_, err := fmt.Fprintf(w, "%s: %s\n", what, result.EntityID)

	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil //nolint:nilnil
	}

	d, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", value, err)
	}

	return &d, nil
}
