package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/labstack/echo/v4"
)

const reminderDateLayout = "Jan 2, 2006"

func callerID(c echo.Context) (int, error) {
	profile, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return profile.ID, nil
}

// Borrow godoc
// @Summary borrow one copy of a book
// @Tags borrow
// @Security BearerAuth
// @Produce json
// @Param bookId path int true "book id"
// @Success 201 {object} model.BorrowResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /borrow/{bookId} [post]
func (h *Handler) Borrow(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	bookID, err := paramID(c, "bookId")
	if err != nil {
		return err
	}
	res, err := h.librarySvc.Borrow(c.Request().Context(), userID, bookID)
	if err != nil {
		return httpError(err)
	}

	loanDays := int(h.librarySvc.Policy().LoanPeriod / (24 * time.Hour))
	return c.JSON(http.StatusCreated, model.BorrowResponse{
		Message: "Book borrowed successfully!",
		BorrowRecord: model.BorrowRecordBrief{
			ID:         res.Record.ID,
			BookID:     res.Record.BookID,
			BorrowDate: res.Record.BorrowDate,
			DueDate:    res.Record.DueDate,
			Status:     res.Record.Status,
		},
		Book: model.BorrowedBookBrief{
			Title:           res.BookTitle,
			Author:          res.BookAuthor,
			AvailableCopies: res.AvailableCopies,
		},
		Reminder: fmt.Sprintf("Please return by %s (%d days from now)",
			res.Record.DueDate.Format(reminderDateLayout), loanDays),
	})
}

// Return godoc
// @Summary return a borrowed book
// @Tags borrow
// @Security BearerAuth
// @Produce json
// @Param borrowId path int true "borrow record id"
// @Success 200 {object} model.ReturnResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /borrow/return/{borrowId} [post]
func (h *Handler) Return(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	borrowID, err := paramID(c, "borrowId")
	if err != nil {
		return err
	}
	res, err := h.librarySvc.Return(c.Request().Context(), userID, borrowID)
	if err != nil {
		return httpError(err)
	}

	fineMessage := "No fine - returned on time!"
	if res.FineAmount > 0 {
		fineMessage = fmt.Sprintf("Overdue by %d days. Fine: $%.2f", res.OverdueDays, res.FineAmount)
	}
	return c.JSON(http.StatusOK, model.ReturnResponse{
		Message: "Book returned successfully!",
		ReturnDetails: model.ReturnDetails{
			BookTitle:  res.BookTitle,
			ReturnDate: res.ReturnDate,
			FineAmount: res.FineAmount,
			FinePaid:   res.FinePaid,
			Status:     res.Status,
		},
		FineMessage: fineMessage,
	})
}

// MyBorrows godoc
// @Summary caller's borrow history, newest first
// @Tags borrow
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.UserBorrow
// @Router /borrow/my-books [get]
func (h *Handler) MyBorrows(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	items, err := h.librarySvc.MyBorrows(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// AllBorrows godoc
// @Summary every borrow record
// @Tags borrow
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.AdminBorrow
// @Failure 403 {object} middleware.ErrorResponse
// @Router /borrow/all [get]
func (h *Handler) AllBorrows(c echo.Context) error {
	items, err := h.librarySvc.AllBorrows(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// BorrowStats godoc
// @Summary borrow statistics
// @Tags borrow
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.BorrowStats
// @Router /borrow/stats [get]
func (h *Handler) BorrowStats(c echo.Context) error {
	stats, err := h.librarySvc.BorrowStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
