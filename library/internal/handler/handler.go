package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	md "github.com/Astemirdum/digital-library/pkg/middleware"
	"github.com/Astemirdum/digital-library/pkg/validate"
	_ "github.com/Astemirdum/digital-library/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	librarySvc LibraryService
	parser     md.TokenParser
	log        *zap.Logger
}

func New(librarySvc LibraryService, parser md.TokenParser, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySvc,
		parser:     parser,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.HTTPErrorHandler = md.NewHTTPErrorHandler(h.log)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Validator = validate.NewCustomValidator()

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/", h.Banner)
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)
	api.GET("/health", h.APIHealth)
	h.registerRoutes(api)

	return e
}

func (h *Handler) registerRoutes(api *echo.Group) {
	authMW := md.JwtAuthentication(h.parser)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/profile", h.Profile, authMW)

	books := api.Group("/books")
	books.GET("", h.ListBooks)
	books.GET("/stats/overview", h.BookStats)
	books.GET("/:id", h.GetBook)
	books.POST("", h.CreateBook, authMW, md.RequireAdmin)
	books.PUT("/:id", h.UpdateBook, authMW, md.RequireAdmin)
	books.DELETE("/:id", h.DeleteBook, authMW, md.RequireAdmin)

	borrow := api.Group("/borrow", authMW)
	borrow.POST("/:bookId", h.Borrow)
	borrow.POST("/return/:borrowId", h.Return)
	borrow.GET("/my-books", h.MyBorrows)
	borrow.GET("/all", h.AllBorrows, md.RequireAdmin)
	borrow.GET("/stats", h.BorrowStats, md.RequireAdmin)

	users := api.Group("/users", authMW, md.RequireAdmin)
	users.GET("", h.ListUsers)
	users.GET("/stats", h.UserStats)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id/role", h.UpdateUserRole)
	users.DELETE("/:id", h.DeleteUser)
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type bannerResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

func (h *Handler) Banner(c echo.Context) error {
	return c.JSON(http.StatusOK, bannerResponse{
		Message: "Digital Library Backend is running!",
		Status:  "online",
		Endpoints: map[string]string{
			"auth":   "/api/auth",
			"books":  "/api/books",
			"borrow": "/api/borrow",
			"users":  "/api/users",
			"health": "/api/health",
			"stats":  "/api/books/stats/overview",
		},
	})
}

type healthResponse struct {
	Status   string     `json:"status"`
	Database string     `json:"database"`
	Time     *time.Time `json:"time,omitempty"`
	Message  string     `json:"message,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// APIHealth probes the database. A failed probe still answers 200 with
// status "degraded".
func (h *Handler) APIHealth(c echo.Context) error {
	if err := h.librarySvc.Ping(c.Request().Context()); err != nil {
		h.log.Warn("health probe", zap.Error(err))
		return c.JSON(http.StatusOK, healthResponse{
			Status:   "degraded",
			Database: "error",
			Error:    err.Error(),
		})
	}
	now := time.Now().UTC()
	return c.JSON(http.StatusOK, healthResponse{
		Status:   "healthy",
		Database: "connected",
		Time:     &now,
		Message:  "All systems operational",
	})
}

func paramID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// httpError maps service errors onto HTTP statuses. Unknown errors become
// 500 and their text stays in the log.
func httpError(err error) error {
	var refErr *errs.ReferencedError
	if errors.As(err, &refErr) {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ReferencedResponse{
			Error:         refErr.Err.Error(),
			BorrowedCount: refErr.BorrowedCount,
		})
	}

	switch {
	case errors.Is(err, errs.ErrUserNotFound),
		errors.Is(err, errs.ErrBookNotFound),
		errors.Is(err, errs.ErrBorrowRecordNotFound),
		errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrBookUnavailable),
		errors.Is(err, errs.ErrAlreadyBorrowed),
		errors.Is(err, errs.ErrDuplicateISBN),
		errors.Is(err, errs.ErrInvalidCopies),
		errors.Is(err, errs.ErrTitleAuthorRequired),
		errors.Is(err, errs.ErrUserExists),
		errors.Is(err, errs.ErrCredentialsRequired),
		errors.Is(err, errs.ErrInvalidRole),
		errors.Is(err, errs.ErrLastAdminDemote),
		errors.Is(err, errs.ErrLastAdminDelete):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}
