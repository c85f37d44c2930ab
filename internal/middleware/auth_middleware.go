package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/pkg/logger"
	jsonres "github.com/Archanasadhasivam/AgriPricePredict/pkg/response"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/utils"

	"github.com/labstack/echo/v4"
)

// TokenValidator checks a token against the server-side token store
type TokenValidator interface {
	ValidateTokenFromRedis(ctx context.Context, token string) (string, error)
}

// AuthMiddleware basic JWT authentication without the token store
func AuthMiddleware() echo.MiddlewareFunc {
	return authenticate(nil)
}

// AuthMiddlewareWithRedis JWT authentication that also requires the token to
// be present in the token store, so logged out tokens stop working
func AuthMiddlewareWithRedis(tokenValidator TokenValidator) echo.MiddlewareFunc {
	return authenticate(tokenValidator)
}

func authenticate(tokenValidator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Missing authorization header", nil,
				))
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid authorization format", nil,
				))
			}

			tokenString := tokenParts[1]

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				logger.Debug("Failed to parse JWT", err)
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "Invalid token", nil,
				))
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || expAt == nil || time.Now().After(expAt.Time) {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Token expired", nil,
				))
			}

			if tokenValidator != nil {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				defer cancel()

				userID, err := tokenValidator.ValidateTokenFromRedis(ctx, tokenString)
				if err != nil {
					logger.Error("Token not found in Redis", err)
					return c.JSON(http.StatusUnauthorized, jsonres.Error(
						"UNAUTHORIZED", "Token expired or invalid", nil,
					))
				}

				if userID != claims.UserID {
					logger.Error("UserID mismatch between JWT and Redis")
					return c.JSON(http.StatusUnauthorized, jsonres.Error(
						"UNAUTHORIZED", "Invalid token", nil,
					))
				}
			}

			userIDUint, err := strconv.ParseUint(claims.UserID, 10, 64)
			if err != nil {
				logger.Error("Invalid user ID in token", err)
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Invalid user ID in token", nil,
				))
			}

			c.Set("user_id", uint(userIDUint))
			c.Set("role", claims.Role)
			c.Set("token", tokenString)

			return next(c)
		}
	}
}

// RoleResolver returns the role currently stored for a user. It fails when
// the account no longer exists.
type RoleResolver interface {
	UserRole(ctx context.Context, userID uint) (string, error)
}

// currentRole prefers the stored role over the token claim when a resolver
// is given.
func currentRole(c echo.Context, roles RoleResolver) (string, error) {
	claimRole, ok := c.Get("role").(string)
	if !ok {
		return "", echo.NewHTTPError(http.StatusForbidden, "Invalid role")
	}
	if roles == nil {
		return claimRole, nil
	}

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := roles.UserRole(ctx, userID)
	if err != nil {
		logger.Warn("Role lookup failed", "user_id", userID, "error", err)
		return "", echo.NewHTTPError(http.StatusUnauthorized, "User no longer exists")
	}

	c.Set("role", role)
	return role, nil
}

func roleError(c echo.Context, err error) error {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return c.JSON(http.StatusForbidden, jsonres.Error("FORBIDDEN", err.Error(), nil))
	}
	code := "FORBIDDEN"
	if he.Code == http.StatusUnauthorized {
		code = "UNAUTHORIZED"
	}
	return c.JSON(he.Code, jsonres.Error(code, fmt.Sprint(he.Message), nil))
}

// AdminOnly requires the admin role. With a nil resolver the token claim is
// trusted.
func AdminOnly(roles RoleResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, err := currentRole(c, roles)
			if err != nil {
				return roleError(c, err)
			}
			if !strings.EqualFold(roleStr, "admin") {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Admin access required", nil,
				))
			}

			return next(c)
		}
	}
}

// SelfOrAdmin lets admins through and everyone else only to their own :id
func SelfOrAdmin(roles RoleResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loggedInUserID, ok := c.Get("user_id").(uint)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "User not authenticated", nil,
				))
			}

			roleStr, err := currentRole(c, roles)
			if err != nil {
				return roleError(c, err)
			}

			if strings.EqualFold(roleStr, "admin") {
				return next(c)
			}

			requestedIDUint, err := strconv.ParseUint(c.Param("id"), 10, 64)
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
