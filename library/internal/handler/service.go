package handler

import (
	"context"

	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	AuthService
	BookService
	BorrowService
	UserService

	Ping(ctx context.Context) error
	Policy() service.Policy
}

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Profile(ctx context.Context, userID int) (model.User, error)
}

type BookService interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id int) (model.Book, error)
	BookStats(ctx context.Context) (model.BookStats, error)
}

type BorrowService interface {
	Borrow(ctx context.Context, userID, bookID int) (model.BorrowResult, error)
	Return(ctx context.Context, userID, borrowID int) (model.ReturnResult, error)
	MyBorrows(ctx context.Context, userID int) ([]model.UserBorrow, error)
	AllBorrows(ctx context.Context) ([]model.AdminBorrow, error)
	BorrowStats(ctx context.Context) (model.BorrowStats, error)
}

type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	UpdateUserRole(ctx context.Context, id int, role string) (model.User, error)
	DeleteUser(ctx context.Context, id int) (model.User, error)
	UserStats(ctx context.Context) (model.UserStats, error)
}

var _ LibraryService = (*service.Service)(nil)
