package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gastroclinic/clinic/internal/platform/auth"
)

// AuditEntry records one state-changing API call.
type AuditEntry struct {
	UserID     string
	Roles      []string
	Action     string // create, update, delete
	Resource   string
	ResourceID string
	Method     string
	Path       string
	StatusCode int
	RequestID  string
	IPAddress  string
}

// Audit returns middleware that writes an audit line for every mutating
// request under /api, naming the staff member who made it. It must run
// after the JWT middleware so the principal is known. Reads are not audited.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			action := methodToAction(req.Method)
			if action == "" || !strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			err := next(c)

			entry := AuditEntry{
				Action:     action,
				Resource:   resourceFromPath(req.URL.Path),
				ResourceID: c.Param("id"),
				Method:     req.Method,
				Path:       req.URL.Path,
				StatusCode: c.Response().Status,
				RequestID:  requestID(c),
				IPAddress:  c.RealIP(),
			}
			// The error handler has not run yet; report the status it will send.
			if err != nil {
				entry.StatusCode, _ = resolve(err)
			}
			if p, ok := auth.PrincipalFromContext(c.Request().Context()); ok {
				entry.Roles = p.Roles
				if p.Authenticated() {
					entry.UserID = p.UserID.String()
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("roles", entry.Roles).
				Str("action", entry.Action).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Int("status", entry.StatusCode).
				Str("ip", entry.IPAddress).
				Msg("audit")

			return err
		}
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

// resourceFromPath returns the first segment after /api, e.g. "patients"
// for /api/patients/{id}.
func resourceFromPath(path string) string {
	rest := strings.TrimPrefix(path, "/api/")
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[:i]
	}
	return rest
}
