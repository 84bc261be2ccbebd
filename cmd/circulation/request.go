package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/approverequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/cancelrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/rejectrequest"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/submitrequest"
)

func newRequestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Submit and process book requests",
	}

	cmd.AddCommand(
		newRequestSubmitCommand(),
		newRequestProcessCommand("approve", "Approve a pending request and issue the book"),
		newRequestProcessCommand("reject", "Reject a pending request"),
		newRequestCancelCommand(),
	)

	return cmd
}

func newRequestSubmitCommand() *cobra.Command {
	var memberID, bookID string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Ask for a book on behalf of a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.SubmitRequest.Handle(ctx, submitrequest.BuildCommand(
					core.MemberIDString(memberID),
					core.BookIDString(bookID),
					time.Now(),
				))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "request submitted", result)
			})
		},
	}

	cmd.Flags().StringVar(&memberID, "member", "", "member id")
	cmd.Flags().StringVar(&bookID, "book", "", "book id")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("book")

	return cmd
}

func newRequestProcessCommand(verb, short string) *cobra.Command {
	var processedBy string

	cmd := &cobra.Command{
		Use:   verb + " <request-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				requestID := core.RequestIDString(args[0])
				by := core.UserIDString(processedBy)

				if verb == "approve" {
					result, err := rt.handlers.ApproveRequest.Handle(ctx, approverequest.BuildCommand(requestID, by, time.Now()))
					if err != nil {
						return err
					}

					return printOutcome(cmd.OutOrStdout(), "request approved, issue", result)
				}

				result, err := rt.handlers.RejectRequest.Handle(ctx, rejectrequest.BuildCommand(requestID, by, time.Now()))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "request rejected", result)
			})
		},
	}

	cmd.Flags().StringVar(&processedBy, "by", "", "id of the staff user processing the request")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

func newRequestCancelCommand() *cobra.Command {
	var memberID string

	cmd := &cobra.Command{
		Use:   "cancel <request-id>",
		Short: "Withdraw a member's pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.CancelRequest.Handle(ctx, cancelrequest.BuildCommand(
					core.RequestIDString(args[0]),
					core.MemberIDString(memberID),
					time.Now(),
				))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "request cancelled", result)
			})
		},
	}

	cmd.Flags().StringVar(&memberID, "member", "", "member who owns the request")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}
