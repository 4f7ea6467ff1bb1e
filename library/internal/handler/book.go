package handler

import (
	"net/http"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/labstack/echo/v4"
)

// ListBooks godoc
// @Summary list books ordered by title
// @Tags books
// @Produce json
// @Success 200 {array} model.Book
// @Router /books [get]
func (h *Handler) ListBooks(c echo.Context) error {
	books, err := h.librarySvc.ListBooks(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

// GetBook godoc
// @Summary get a book
// @Tags books
// @Produce json
// @Param id path int true "book id"
// @Success 200 {object} model.Book
// @Failure 404 {object} middleware.ErrorResponse
// @Router /books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	book, err := h.librarySvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// CreateBook godoc
// @Summary add a book
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body model.CreateBookRequest true "book"
// @Success 201 {object} model.BookResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		if req.Title == "" || req.Author == "" {
			return echo.NewHTTPError(http.StatusBadRequest, errs.ErrTitleAuthorRequired.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrInvalidCopies.Error())
	}
	book, err := h.librarySvc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, model.BookResponse{
		Message: "Book created successfully",
		Book:    book,
	})
}

// UpdateBook godoc
// @Summary update a book, omitted fields keep their values
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "book id"
// @Param input body model.UpdateBookRequest true "fields"
// @Success 200 {object} model.BookResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /books/{id} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrInvalidCopies.Error())
	}
	book, err := h.librarySvc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, model.BookResponse{
		Message: "Book updated successfully",
		Book:    book,
	})
}

type deleteBookResponse struct {
	Message     string `json:"message"`
	DeletedBook string `json:"deleted_book"`
}

// DeleteBook godoc
// @Summary delete a book without open borrows
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path int true "book id"
// @Success 200 {object} deleteBookResponse
// @Failure 400 {object} errs.ReferencedResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	book, err := h.librarySvc.DeleteBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deleteBookResponse{
		Message:     "Book deleted successfully",
		DeletedBook: book.Title,
	})
}

// BookStats godoc
// @Summary catalog overview
// @Tags books
// @Produce json
// @Success 200 {object} model.BookStats
// @Router /books/stats/overview [get]
func (h *Handler) BookStats(c echo.Context) error {
	stats, err := h.librarySvc.BookStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
