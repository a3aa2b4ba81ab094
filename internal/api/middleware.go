package api

import (
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/internal/apperr"
	"github.com/bhargav676/intern/internal/auth"
)

const identityKey = "identity"

// requireSession authenticates the bearer token and stores the caller's
// identity on the context. The token may also arrive as a "token" query
// parameter when allowQuery is set, for browsers opening a WebSocket.
func requireSession(resolver auth.Resolver, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			creds := auth.Credentials{BearerToken: auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))}
			if creds.BearerToken == "" && allowQuery {
				creds.BearerToken = c.QueryParam("token")
			}
			if creds.BearerToken == "" {
				return apperr.Unauthenticated(apperr.CodeUnauthorized, "No token provided")
			}

			id, err := resolver.Resolve(c.Request().Context(), creds)
			if err != nil {
				return err
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// requireAdmin must run after requireSession
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !identity(c).IsAdmin() {
			return apperr.Forbidden("Access denied: admins only")
		}
		return next(c)
	}
}

// identity returns the caller stored by requireSession, or nil
func identity(c echo.Context) *auth.Identity {
	id, _ := c.Get(identityKey).(*auth.Identity)
	return id
}

// requestLogger routes echo's request log through zap
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", redactURI(v.URI)),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			if v.Status >= 500 {
				logger.Error("Request", fields...)
				return nil
			}
			logger.Info("Request", fields...)
			return nil
		},
	})
}

// redactURI masks the session token a WebSocket client may pass in the query
func redactURI(uri string) string {
	i := strings.IndexByte(uri, '?')
	if i < 0 {
		return uri
	}
	query, err := url.ParseQuery(uri[i+1:])
	if err != nil {
		return uri[:i]
	}
	if _, ok := query["token"]; !ok {
		return uri
	}
	query.Set("token", "REDACTED")
	return uri[:i+1] + query.Encode()
}
