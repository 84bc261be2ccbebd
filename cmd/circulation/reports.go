package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/fineestimates"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/ledgeraudit"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/query/overdueissues"
)

func newFinesCommand() *cobra.Command {
	var (
		memberID string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "fines",
		Short: "Show accrued and final fines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				fines, err := rt.handlers.FineEstimates.Handle(ctx, fineestimates.BuildQuery(core.MemberIDString(memberID), time.Now()))
				if err != nil {
					return err
				}

				if asJSON {
					return printJSON(cmd.OutOrStdout(), fines)
				}

				tw := newTable(cmd.OutOrStdout())
				_, _ = fmt.Fprintln(tw, "ISSUE\tBOOK\tMEMBER\tDUE\tDAYS\tAMOUNT\tFINAL")
				for _, e := range fines.Entries {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\t%t\n",
						e.IssueID, e.BookID, e.MemberID, e.DueDate.Format(dateLayout), e.DaysOverdue, e.Amount, e.Final)
				}
				_, _ = fmt.Fprintf(tw, "total (%s)\t\t\t\t\t%.2f\t\n", fines.Policy, fines.Total)

				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&memberID, "member", "", "only this member's fines")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newOverdueCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List active issues past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				overdue, err := rt.handlers.OverdueIssues.Handle(ctx, overdueissues.BuildQuery(time.Now()))
				if err != nil {
					return err
				}

				if asJSON {
					return printJSON(cmd.OutOrStdout(), overdue)
				}

				tw := newTable(cmd.OutOrStdout())
				_, _ = fmt.Fprintln(tw, "ISSUE\tBOOK\tMEMBER\tEMAIL\tDUE\tDAYS")
				for _, o := range overdue.Issues {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
						o.IssueID, o.BookTitle, o.MemberName, o.MemberEmail, o.DueDate.Format(dateLayout), o.DaysOverdue)
				}

				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newAuditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check copy accounting and referential integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				audit, err := rt.handlers.LedgerAudit.Handle(ctx, ledgeraudit.BuildQuery())
				if err != nil {
					return err
				}

				if err := printJSON(cmd.OutOrStdout(), audit); err != nil {
					return err
				}

				if !audit.Consistent {
					return fmt.Errorf("%w: %d violation(s)", ErrLedgerInconsistent, len(audit.Violations))
				}

				return nil
			})
		},
	}
}
