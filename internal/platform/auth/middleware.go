package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Staff roles.
const (
	RoleDoctor       = "doctor"
	RoleReceptionist = "receptionist"
)

// Roles lists every staff role.
var Roles = []string{RoleDoctor, RoleReceptionist}

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Roles  []string
	Name   string
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authenticated reports whether the principal is bound to a stored user.
func (p Principal) Authenticated() bool { return p.UserID != uuid.Nil }

// DevPrincipal is used in development when a request carries no token.
var DevPrincipal = Principal{Roles: []string{RoleDoctor, RoleReceptionist}, Name: "dev"}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

type JWTConfig struct {
	Issuer *Issuer
	// DevMode lets requests without an Authorization header through as
	// DevPrincipal. A header that is present is always verified.
	DevMode bool
	Skipper func(echo.Context) bool
	// Users, when set, rejects tokens whose user is inactive or gone.
	Users UserChecker
}

// JWTMiddleware verifies the bearer token and stores the Principal in the
// request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if cfg.DevMode {
					setPrincipal(c, DevPrincipal)
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			scheme, tokenStr, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenStr) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := cfg.Issuer.Parse(strings.TrimSpace(tokenStr))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if cfg.Users != nil {
				active, err := cfg.Users.UserActive(c.Request().Context(), userID)
				if err != nil {
					return err
				}
				if !active {
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			setPrincipal(c, Principal{UserID: userID, Roles: []string{claims.Role}, Name: claims.Name})
			return next(c)
		}
	}
}

func setPrincipal(c echo.Context, p Principal) {
	c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), p)))
}
