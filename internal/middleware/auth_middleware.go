package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"spiceMarket/domain"
	"spiceMarket/pkg/logger"
	jsonres "spiceMarket/pkg/response"
	"spiceMarket/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID      = "user_id"
	ContextRole        = "role"
	ContextToken       = "token"
	ContextTokenClaims = "token_claims"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	ParseJWT(token string) (*utils.Claims, error)
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", c.JSON(http.StatusUnauthorized, jsonres.Error(
			"UNAUTHORIZED", "Missing authorization header", nil,
		))
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
		return "", c.JSON(http.StatusUnauthorized, jsonres.Error(
			"UNAUTHORIZED", "Invalid authorization format", nil,
		))
	}

	return tokenParts[1], nil
}

// AuthMiddleware accepts access tokens only.
func AuthMiddleware(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if tokenString == "" {
				return err
			}

			claims, err := tokens.ParseJWT(tokenString)
			if err != nil || claims.Purpose != utils.PurposeAccess {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid or expired token", nil,
				))
			}

			userIDUint, err := strconv.ParseUint(claims.UserID, 10, 64)
			if err != nil {
				logger.Error("Invalid user ID in token", err)
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Invalid user ID in token", nil,
				))
			}

			c.Set(ContextUserID, uint(userIDUint))
			c.Set(ContextRole, claims.Role)
			c.Set(ContextToken, tokenString)

			return next(c)
		}
	}
}

// ResetTokenMiddleware accepts password reset tokens of the given purpose and
// exposes the raw token to the handler.
func ResetTokenMiddleware(tokens TokenParser, purpose string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if tokenString == "" {
				return err
			}

			claims, err := tokens.ParseJWT(tokenString)
			if err != nil || claims.Purpose != purpose {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid or expired reset token", nil,
				))
			}

			c.Set(ContextToken, tokenString)
			c.Set(ContextTokenClaims, claims)

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(string)
			if !ok || !strings.EqualFold(role, domain.RoleAdmin) {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}

// SelfOrAdmin lets admins through and otherwise requires the path parameter
// to match the authenticated user's id.
func SelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loggedInUserID, ok := c.Get(ContextUserID).(uint)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			role, _ := c.Get(ContextRole).(string)
			if strings.EqualFold(role, domain.RoleAdmin) {
				return next(c)
			}

			requestedIDUint, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, jsonres.Error(
					"BAD_REQUEST", "Invalid user ID", nil,
				))
			}

			if uint(requestedIDUint) != loggedInUserID {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "You can only access your own data", nil,
				))
			}

			return next(c)
		}
	}
}

// ActorFrom reads the authenticated caller set by AuthMiddleware.
func ActorFrom(c echo.Context) (domain.Actor, bool) {
	userID, ok := c.Get(ContextUserID).(uint)
	if !ok {
		return domain.Actor{}, false
	}

	role, _ := c.Get(ContextRole).(string)
	return domain.Actor{UserID: userID, Role: role}, true
}
