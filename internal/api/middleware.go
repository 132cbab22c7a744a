package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"portal-service/internal/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const claimsKey = "usuarioClaims"

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
	authFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Requests rejected by the auth middleware",
		},
		[]string{"reason"},
	)
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token with 401.
// Invalid and expired tokens get the same response.
func AuthMiddleware(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			authFailuresTotal.WithLabelValues("missing_header").Inc()
			return respondMessage(c, fiber.StatusUnauthorized, "Missing authorization header")
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			authFailuresTotal.WithLabelValues("malformed_header").Inc()
			return respondMessage(c, fiber.StatusUnauthorized, "Invalid authorization header format")
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "expired_token"
			}
			authFailuresTotal.WithLabelValues(reason).Inc()
			return respondMessage(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(claimsKey, claims)
		c.SetUserContext(WithUsuarioID(c.UserContext(), claims.UsuarioID))

		return c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := ClaimsFromContext(c)
		if err != nil {
			return respondMessage(c, fiber.StatusUnauthorized, "Missing authorization header")
		}

		for _, role := range roles {
			if claims.Rol == role {
				return c.Next()
			}
		}

		authFailuresTotal.WithLabelValues("forbidden_role").Inc()
		return respondMessage(c, fiber.StatusForbidden, "You do not have permission to access this resource")
	}
}

func ClaimsFromContext(c *fiber.Ctx) (*jwt.Claims, error) {
	claims, ok := c.Locals(claimsKey).(*jwt.Claims)
	if !ok || claims == nil {
		return nil, errors.New("claims not found in context")
	}

	return claims, nil
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start).Seconds()
		statusCode := c.Response().StatusCode()

		if err != nil {
			var e *fiber.Error

			if errors.As(err, &e) {
				statusCode = e.Code
			} else {
				statusCode = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		// route pattern keeps /users/:id to one series
		path := c.Route().Path
		statusStr := fmt.Sprintf("%d", statusCode)

		httpRequestTotal.WithLabelValues(method, path, statusStr).Inc()
		httpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		return err
	}
}
