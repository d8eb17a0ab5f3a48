package handler

import (
	"github.com/SergeiKhy/shortly/internal/middleware"
	"github.com/SergeiKhy/shortly/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(
	urlService service.UrlService,
	userService service.UserService,
	authService service.AuthService,
	authGuard *middleware.AuthGuard,
	rateLimiter *middleware.RateLimiter,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.Default()

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	// Rate limiting для всех запросов; Identify до лимитера,
	// чтобы аутентифицированные запросы считались по пользователю
	router.Use(authGuard.Identify())
	router.Use(rateLimiter.Middleware())

	urlHandler := NewUrlHandler(urlService, logger)
	userHandler := NewUserHandler(userService, logger)
	authHandler := NewAuthHandler(authService, logger)

	// Пользователи
	router.POST("/users", userHandler.CreateUser)
	router.PUT("/users/:id", authGuard.Required(), userHandler.UpdateUser)
	router.DELETE("/users/:id", authGuard.Required(), userHandler.DeleteUser)

	// Аутентификация
	auth := router.Group("/auth")
	{
		auth.POST("/login", authHandler.SignIn)
		auth.GET("/me", authGuard.Required(), authHandler.Me)
	}

	// Короткие ссылки
	router.POST("/urls", authGuard.Optional(), urlHandler.CreateUrl)
	router.GET("/urls", authGuard.Required(), urlHandler.ListUrls)
	router.PATCH("/urls/:id", authGuard.Required(), urlHandler.UpdateUrl)
	router.DELETE("/urls/:id", authGuard.Required(), urlHandler.DeleteUrl)

	// Редирект (корневой путь) - без аутентификации
	router.GET("/:code", urlHandler.Redirect)

	// Служебные роуты
	router.GET("/api/v1/health", HealthCheck)
	AddSwaggerRoutes(router)

	return router
}
