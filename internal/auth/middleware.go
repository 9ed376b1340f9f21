package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const ContextHouseholdIDKey = "household_id"

// JWTMiddleware проверяет access-токен и сохраняет household_id в контексте.
// GET-запросы могут передать токен параметром access_token (EventSource).
func JWTMiddleware(manager *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := manager.ParseAccessToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			householdID, err := claims.HouseholdID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			c.Set(ContextHouseholdIDKey, householdID)
			return next(c)
		}
	}
}

// HouseholdIDFromContext извлекает идентификатор домохозяйства из контекста.
func HouseholdIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(ContextHouseholdIDKey)
	householdID, ok := value.(uuid.UUID)
	return householdID, ok
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := strings.TrimSpace(c.QueryParam("access_token")); token != "" && c.Request().Method == http.MethodGet {
			return token, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	return tokenString, nil
}
