package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/Astemirdum/digital-library/pkg/auth"
	md "github.com/Astemirdum/digital-library/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type parserFunc func(string) (auth.Profile, error)

func (f parserFunc) Parse(token string) (auth.Profile, error) { return f(token) }

func TestJwtAuthentication(t *testing.T) {
	t.Parallel()
	parser := parserFunc(func(token string) (auth.Profile, error) {
		switch token {
		case "student":
			return auth.Profile{ID: 7, Role: auth.RoleStudent}, nil
		case "admin":
			return auth.Profile{ID: 1, Role: auth.RoleAdmin}, nil
		case "old":
			return auth.Profile{}, auth.ErrTokenExpired
		default:
			return auth.Profile{}, auth.ErrTokenInvalid
		}
	})

	tests := []struct {
		name          string
		authorization string
		adminOnly     bool
		expectedCode  int
		expectedBody  string
	}{
		{name: "no header", expectedCode: http.StatusUnauthorized, expectedBody: `{"error":"Access denied. No token provided."}`},
		{name: "not bearer", authorization: "Basic abc", expectedCode: http.StatusUnauthorized, expectedBody: `{"error":"Invalid Authorization Header"}`},
		{name: "expired", authorization: "Bearer old", expectedCode: http.StatusUnauthorized, expectedBody: `{"error":"Token expired"}`},
		{name: "invalid", authorization: "Bearer junk", expectedCode: http.StatusUnauthorized, expectedBody: `{"error":"Invalid token"}`},
		{name: "ok", authorization: "Bearer student", expectedCode: http.StatusOK, expectedBody: "7"},
		{name: "student on admin route", authorization: "Bearer student", adminOnly: true, expectedCode: http.StatusForbidden, expectedBody: `{"error":"Access denied. Admin only."}`},
		{name: "admin on admin route", authorization: "Bearer admin", adminOnly: true, expectedCode: http.StatusOK, expectedBody: "1"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.HTTPErrorHandler = md.NewHTTPErrorHandler(zap.NewNop())
			mws := []echo.MiddlewareFunc{md.JwtAuthentication(parser)}
			if tt.adminOnly {
				mws = append(mws, md.RequireAdmin)
			}
			e.GET("/me", func(c echo.Context) error {
				p, err := auth.FromContext(c.Request().Context())
				if err != nil {
					return err
				}
				return c.String(http.StatusOK, strconv.Itoa(p.ID))
			}, mws...)

			r := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			if tt.authorization != "" {
				r.Header.Set(echo.HeaderAuthorization, tt.authorization)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{name: "plain error", err: errors.New("boom"), expectedCode: http.StatusInternalServerError, expectedBody: `{"error":"Internal server error"}`},
		{name: "http error", err: echo.NewHTTPError(http.StatusNotFound, "Book not found"), expectedCode: http.StatusNotFound, expectedBody: `{"error":"Book not found"}`},
		{name: "route not found", err: echo.ErrNotFound, expectedCode: http.StatusNotFound, expectedBody: `{"error":"Not Found"}`},
		{name: "5xx message hidden", err: echo.NewHTTPError(http.StatusBadGateway, "db down"), expectedCode: http.StatusBadGateway, expectedBody: `{"error":"Internal server error"}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.HTTPErrorHandler = md.NewHTTPErrorHandler(zap.NewNop())
			e.GET("/", func(c echo.Context) error { return tt.err })

			w := httptest.NewRecorder()
			e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
