package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/acceptreturn"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/issuebookdirect"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/settlefine"
)

func newIssueCommand() *cobra.Command {
	var (
		bookID, memberID, issuedBy, due string
		qr                              bool
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Check a book out directly, without a request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dueDate, err := parseDate(due)
			if err != nil {
				return err
			}

			channel := issuebookdirect.ChannelDashboard
			if qr {
				channel = issuebookdirect.ChannelQR
			}

			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.IssueBookDirect.Handle(ctx, issuebookdirect.BuildCommand(
					core.BookIDString(bookID),
					core.MemberIDString(memberID),
					dueDate,
					channel,
					core.UserIDString(issuedBy),
					time.Now(),
				))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "book issued", result)
			})
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "book id")
	cmd.Flags().StringVar(&memberID, "member", "", "member id")
	cmd.Flags().StringVar(&issuedBy, "by", "", "id of the issuing staff user")
	cmd.Flags().StringVar(&due, "due", "", "due date as YYYY-MM-DD (defaults to the loan period)")
	cmd.Flags().BoolVar(&qr, "qr", false, "record the checkout as a QR self-checkout")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func newReturnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return <issue-id>",
		Short: "Accept a returned book and fix its fine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.AcceptReturn.Handle(ctx, acceptreturn.BuildCommand(core.IssueIDString(args[0]), time.Now()))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "return accepted", result)
			})
		},
	}
}

func newSettleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settle <issue-id>",
		Short: "Mark the fine of a returned issue as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.SettleFine.Handle(ctx, settlefine.BuildCommand(core.IssueIDString(args[0]), time.Now()))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "fine settled", result)
			})
		},
	}
}
