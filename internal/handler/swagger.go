package handler

import (
	"github.com/gin-gonic/gin"
)

// SwaggerUI serves the Swagger UI HTML page
// @Summary Swagger UI
// @Description Interactive API documentation
// @Tags documentation
// @Produce html
// @Success 200 {string} string "Swagger UI HTML page"
// @Router /docs [get]
func SwaggerUI(c *gin.Context) {
	c.File("./docs/swagger-ui.html")
}

// AddSwaggerRoutes регистрирует роуты документации
func AddSwaggerRoutes(router *gin.Engine) {
	router.GET("/docs", SwaggerUI)
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
}
