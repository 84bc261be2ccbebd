package addbook

import (
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
)

const commandType = "AddBook"

// Command carries the catalog data of a new book. All copies start on the shelf.
type Command struct {
	Title           string `validate:"required"`
	Author          string `validate:"required"`
	Category        string
	TotalCopies     int `validate:"gte=1"`
	ISBN            string
	Publisher       string
	PublicationYear int `validate:"gte=0"`
	CoverImage      string
	At              core.Instant
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command from a Book template; its ID and AvailableCopies are ignored.
func BuildCommand(book core.Book, at time.Time) Command {
	return Command{
		Title:           book.Title,
		Author:          book.Author,
		Category:        book.Category,
		TotalCopies:     book.TotalCopies,
		ISBN:            book.ISBN,
		Publisher:       book.Publisher,
		PublicationYear: book.PublicationYear,
		CoverImage:      book.CoverImage,
		At:              core.ToInstant(at),
	}
}
