package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sneakerlib/auth-service/internal/domain"
	"github.com/sneakerlib/auth-service/internal/dto"
	"github.com/sneakerlib/auth-service/internal/service"
	"github.com/sneakerlib/auth-service/internal/token"
)

const (
	ctxKeyUserID = "user_id"
	ctxKeyEmail  = "email"
	ctxKeyClaims = "claims"
)

// AuthMiddleware validates the bearer access token and adds user info to context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		claims, err := authService.ValidateAccessToken(c.Request.Context(), raw)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		userID, err := domain.ParseUserID(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Set(ctxKeyEmail, claims.Email)
		c.Set(ctxKeyClaims, claims)

		c.Next()
	}
}

// RequireRole rejects requests whose token role is not one of the given roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := claimsFromContext(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authentication required",
			})
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: "Insufficient permissions",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// bearerToken extracts the raw token from the Authorization header.
// Returns an empty string when the header is missing or malformed.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// currentUserID reads the authenticated user ID set by AuthMiddleware.
// Writes a 401 response and returns ok=false when it is absent.
func currentUserID(c *gin.Context) (domain.UserID, bool) {
	v, exists := c.Get(ctxKeyUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Authentication required",
		})
		c.Abort()
		return domain.UserID{}, false
	}
	userID, ok := v.(domain.UserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Authentication required",
		})
		c.Abort()
		return domain.UserID{}, false
	}
	return userID, true
}

func claimsFromContext(c *gin.Context) *token.Claims {
	v, exists := c.Get(ctxKeyClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*token.Claims)
	return claims
}
