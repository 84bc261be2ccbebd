// Package submitrequest queues a member's ask to borrow a book.
// No availability check happens here: requests may queue for books with no copies left.
package submitrequest
