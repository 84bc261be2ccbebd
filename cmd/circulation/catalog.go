package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/addbook"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/addcategory"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/registermember"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/removebook"
	"github.com/AntonStoeckl/library-circulation-go/circulation/features/command/removemember"
)

func newBookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage the catalog",
	}

	var book core.Book

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a title with its number of copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.AddBook.Handle(ctx, addbook.BuildCommand(book, time.Now()))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "book added", result)
			})
		},
	}

	add.Flags().StringVar(&book.Title, "title", "", "title")
	add.Flags().StringVar(&book.Author, "author", "", "author")
	add.Flags().StringVar(&book.Category, "category", "", "category name")
	add.Flags().IntVar(&book.TotalCopies, "copies", 1, "number of copies")
	add.Flags().StringVar(&book.ISBN, "isbn", "", "ISBN")
	add.Flags().StringVar(&book.Publisher, "publisher", "", "publisher")
	add.Flags().IntVar(&book.PublicationYear, "year", 0, "publication year")
	_ = add.MarkFlagRequired("title")
	_ = add.MarkFlagRequired("author")

	remove := &cobra.Command{
		Use:   "remove <book-id>",
		Short: "Remove a title that has no active issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.RemoveBook.Handle(ctx, removebook.BuildCommand(core.BookIDString(args[0]), time.Now()))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "book removed", result)
			})
		},
	}

	var categoryDescription string

	category := &cobra.Command{
		Use:   "category <name>",
		Short: "Add a catalog category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.AddCategory.Handle(ctx, addcategory.BuildCommand(args[0], categoryDescription, time.Now()))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "category added", result)
			})
		},
	}

	category.Flags().StringVar(&categoryDescription, "description", "", "description")

	cmd.AddCommand(add, remove, category)

	return cmd
}

func newMemberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage library members",
	}

	var member core.Member

	add := &cobra.Command{
		Use:   "add",
		Short: "Register a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.RegisterMember.Handle(ctx, registermember.BuildCommand(member, time.Now()))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "member registered", result)
			})
		},
	}

	add.Flags().StringVar(&member.ID, "id", "", "external member id such as a student number")
	add.Flags().StringVar(&member.Name, "name", "", "full name")
	add.Flags().StringVar(&member.Email, "email", "", "email")
	add.Flags().StringVar(&member.Phone, "phone", "", "phone")
	add.Flags().StringVar(&member.Type, "type", "student", "member type")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("email")

	remove := &cobra.Command{
		Use:   "remove <member-id>",
		Short: "Remove a member without active issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				result, err := rt.handlers.RemoveMember.Handle(ctx, removemember.BuildCommand(core.MemberIDString(args[0]), time.Now()))
				if err != nil {
					return err
				}

				return printOutcome(cmd.OutOrStdout(), "member removed", result)
			})
		},
	}

	cmd.AddCommand(add, remove)

	return cmd
}
