package model

import (
	"strings"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/errs"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleStudent:
		return r, nil
	default:
		return "", errs.ErrInvalidRole
	}
}

// RoleForEmail derives the registration role: any email containing
// "admin" gets the admin role.
func RoleForEmail(email string) Role {
	if strings.Contains(email, "admin") {
		return RoleAdmin
	}
	return RoleStudent
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Book struct {
	ID              int       `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	ISBN            *string   `json:"isbn" db:"isbn"`
	Description     string    `json:"description" db:"description"`
	Category        string    `json:"category" db:"category"`
	Copies          int       `json:"copies" db:"copies"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Status is the persisted state of a borrow record.
type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
)

// CurrentStatus is derived at read time and never stored.
type CurrentStatus string

const (
	CurrentReturned CurrentStatus = "returned"
	CurrentOverdue  CurrentStatus = "overdue"
	CurrentBorrowed CurrentStatus = "borrowed"
	CurrentActive   CurrentStatus = "active"
)

type BorrowRecord struct {
	ID         int        `json:"id" db:"id"`
	UserID     int        `json:"user_id" db:"user_id"`
	BookID     int        `json:"book_id" db:"book_id"`
	BorrowDate time.Time  `json:"borrow_date" db:"borrow_date"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	ReturnDate *time.Time `json:"return_date" db:"return_date"`
	Status     Status     `json:"status" db:"status"`
	FineAmount float64    `json:"fine_amount" db:"fine_amount"`
	FinePaid   bool       `json:"fine_paid" db:"fine_paid"`
}

func (r BorrowRecord) IsOpen() bool { return r.ReturnDate == nil }

// OpenBorrow is an open record locked for return, joined with its book.
type OpenBorrow struct {
	BorrowRecord
	BookTitle string `db:"book_title"`
}

type UserBorrow struct {
	BorrowID       int           `json:"borrow_id" db:"borrow_id"`
	BorrowDate     time.Time     `json:"borrow_date" db:"borrow_date"`
	DueDate        time.Time     `json:"due_date" db:"due_date"`
	ReturnDate     *time.Time    `json:"return_date" db:"return_date"`
	Status         Status        `json:"status" db:"status"`
	FineAmount     float64       `json:"fine_amount" db:"fine_amount"`
	FinePaid       bool          `json:"fine_paid" db:"fine_paid"`
	BookID         int           `json:"book_id" db:"book_id"`
	Title          string        `json:"title" db:"title"`
	Author         string        `json:"author" db:"author"`
	Category       string        `json:"category" db:"category"`
	ISBN           *string       `json:"isbn" db:"isbn"`
	CurrentStatus  CurrentStatus `json:"current_status" db:"-"`
	CalculatedFine float64       `json:"calculated_fine" db:"-"`
}

type AdminBorrow struct {
	BorrowRecord
	BookTitle     string        `json:"book_title" db:"book_title"`
	BookAuthor    string        `json:"book_author" db:"book_author"`
	UserEmail     string        `json:"user_email" db:"user_email"`
	UserName      string        `json:"user_name" db:"user_name"`
	CurrentStatus CurrentStatus `json:"current_status" db:"-"`
}

type BookStats struct {
	TotalBooks     int `json:"total_books"`
	AvailableBooks int `json:"available_books"`
	TotalUsers     int `json:"total_users"`
	ActiveBorrows  int `json:"active_borrows"`
}

type UserStats struct {
	TotalUsers   int `json:"total_users" db:"total_users"`
	AdminCount   int `json:"admin_count" db:"admin_count"`
	StudentCount int `json:"student_count" db:"student_count"`
}

type BorrowStats struct {
	ActiveBorrows         int     `json:"active_borrows" db:"active_borrows"`
	OverdueBorrows        int     `json:"overdue_borrows" db:"overdue_borrows"`
	TotalFines            float64 `json:"total_fines" db:"total_fines"`
	AverageBorrowDuration string  `json:"average_borrow_duration" db:"-"`
}
