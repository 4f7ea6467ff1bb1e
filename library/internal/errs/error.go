package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrUserNotFound         = errors.New("User not found")
	ErrBookNotFound         = errors.New("Book not found")
	ErrBookUnavailable      = errors.New("Book not available for borrowing. Either not found or no copies available.")
	ErrAlreadyBorrowed      = errors.New("You have already borrowed this book and not returned it yet.")
	ErrBorrowRecordNotFound = errors.New("Borrow record not found, already returned, or does not belong to you.")
	ErrDuplicateISBN        = errors.New("Book with this ISBN already exists")
	ErrInvalidCopies        = errors.New("available_copies must be between 0 and copies")
	ErrTitleAuthorRequired  = errors.New("Title and author are required")
	ErrUserExists           = errors.New("User already exists")
	ErrCredentialsRequired  = errors.New("Email and password are required")
	ErrInvalidCredentials   = errors.New("Invalid credentials")
	ErrInvalidRole          = errors.New(`Invalid role. Must be "admin" or "student"`)
	ErrLastAdminDemote      = errors.New("Cannot demote last admin. At least one admin must remain.")
	ErrLastAdminDelete      = errors.New("Cannot delete last admin. At least one admin must remain.")
	ErrUserHasBorrows       = errors.New("Cannot delete user with borrowed books")
	ErrBookBorrowed         = errors.New("Cannot delete book that is currently borrowed")
)

// ReferencedError reports an entity that cannot be deleted while open
// borrow records point at it.
type ReferencedError struct {
	Err           error
	BorrowedCount int
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("%s (%d open)", e.Err.Error(), e.BorrowedCount)
}

func (e *ReferencedError) Unwrap() error { return e.Err }

type ReferencedResponse struct {
	Error         string `json:"error"`
	BorrowedCount int    `json:"borrowed_count"`
}
