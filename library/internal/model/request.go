package model

import "time"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type CreateBookRequest struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	ISBN            string `json:"isbn"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Copies          int    `json:"copies" validate:"gte=0"`
	AvailableCopies *int   `json:"available_copies" validate:"omitempty,gte=0"`
}

// UpdateBookRequest keeps the stored value for every nil field.
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Description     *string `json:"description"`
	Category        *string `json:"category"`
	Copies          *int    `json:"copies" validate:"omitempty,gte=0"`
	AvailableCopies *int    `json:"available_copies" validate:"omitempty,gte=0"`
}

type BookResponse struct {
	Message string `json:"message"`
	Book    Book   `json:"book"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type BorrowResult struct {
	Record          BorrowRecord
	BookTitle       string
	BookAuthor      string
	AvailableCopies int
}

type BorrowResponse struct {
	Message      string            `json:"message"`
	BorrowRecord BorrowRecordBrief `json:"borrow_record"`
	Book         BorrowedBookBrief `json:"book"`
	Reminder     string            `json:"reminder"`
}

type BorrowRecordBrief struct {
	ID         int       `json:"id"`
	BookID     int       `json:"book_id"`
	BorrowDate time.Time `json:"borrow_date"`
	DueDate    time.Time `json:"due_date"`
	Status     Status    `json:"status"`
}

type BorrowedBookBrief struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	AvailableCopies int    `json:"available_copies"`
}

type ReturnResult struct {
	BookTitle   string
	ReturnDate  time.Time
	FineAmount  float64
	FinePaid    bool
	Status      Status
	OverdueDays int
}

type ReturnResponse struct {
	Message       string        `json:"message"`
	ReturnDetails ReturnDetails `json:"return_details"`
	FineMessage   string        `json:"fine_message"`
}

type ReturnDetails struct {
	BookTitle  string    `json:"book_title"`
	ReturnDate time.Time `json:"return_date"`
	FineAmount float64   `json:"fine_amount"`
	FinePaid   bool      `json:"fine_paid"`
	Status     Status    `json:"status"`
}
