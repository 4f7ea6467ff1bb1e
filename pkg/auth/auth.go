package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrNoProfile    = errors.New("no auth profile in context")
)

type Config struct {
	Secret   string        `yaml:"secret" envconfig:"JWT_SECRET" required:"true" json:"-"`
	TokenTTL time.Duration `yaml:"tokenTTL" envconfig:"TOKEN_TTL" default:"168h"`
}

type Profile struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Claims struct {
	Profile
	jwt.RegisteredClaims
}

type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{
		key: []byte(cfg.Secret),
		ttl: cfg.TokenTTL,
		now: time.Now,
	}
}

// Issue signs an HS256 token carrying the profile.
func (i *Issuer) Issue(p Profile) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := &Claims{
		Profile: p,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token.SignedString: %w", err)
	}
	return token, expiresAt, nil
}

func (i *Issuer) Parse(tokenStr string) (Profile, error) {
	claims := new(Claims)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return Profile{}, ErrTokenExpired
		}
		return Profile{}, ErrTokenInvalid
	}
	if !token.Valid || claims.ExpiresAt == nil {
		return Profile{}, ErrTokenInvalid
	}
	if i.now().After(claims.ExpiresAt.Time) {
		return Profile{}, ErrTokenExpired
	}
	return claims.Profile, nil
}

type ctxKey struct{}

func SetAuthContext(ctx context.Context, p Profile) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Profile, error) {
	p, ok := ctx.Value(ctxKey{}).(Profile)
	if !ok {
		return Profile{}, ErrNoProfile
	}
	return p, nil
}

func IsAdmin(ctx context.Context) bool {
	p, err := FromContext(ctx)
	return err == nil && p.Role == RoleAdmin
}
