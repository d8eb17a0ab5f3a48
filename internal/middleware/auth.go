package middleware

import (
	"net/http"
	"strings"

	"github.com/SergeiKhy/shortly/internal/auth"
	"github.com/gin-gonic/gin"
)

// Ключи контекста для личности вызывающего
const (
	ctxKeyUserID    = "auth_user_id"
	ctxKeyUserEmail = "auth_user_email"
	ctxKeyUserName  = "auth_user_name"
)

// AuthGuard middleware для аутентификации по bearer токену
type AuthGuard struct {
	jwtManager *auth.JWTManager
}

func NewAuthGuard(jwtManager *auth.JWTManager) *AuthGuard {
	return &AuthGuard{jwtManager: jwtManager}
}

// Required отклоняет запросы без валидного токена
func (g *AuthGuard) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Missing or malformed authorization header",
			})
			c.Abort()
			return
		}

		claims, err := g.jwtManager.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// Identify молча заполняет личность для валидного токена и никогда не
// прерывает запрос. Ставится до rate limiter, чтобы лимит считался
// по пользователю; доступ контролируют Required/Optional на роутах
func (g *AuthGuard) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := extractBearerToken(c); ok {
			if claims, err := g.jwtManager.Validate(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// Optional заполняет личность, когда токен есть и валиден; без токена
// запрос проходит анонимно. Невалидный токен всё же отклоняется
func (g *AuthGuard) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractBearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := g.jwtManager.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(ctxKeyUserID, claims.UserID)
	c.Set(ctxKeyUserEmail, claims.Email)
	c.Set(ctxKeyUserName, claims.Name)
}

// GetUserID извлекает ID аутентифицированного пользователя из контекста
func GetUserID(c *gin.Context) (uint, bool) {
	id, exists := c.Get(ctxKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := id.(uint)
	return userID, ok
}

// GetUserEmail извлекает email аутентифицированного пользователя из контекста
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(ctxKeyUserEmail)
	if !exists {
		return "", false
	}
	value, ok := email.(string)
	return value, ok
}
