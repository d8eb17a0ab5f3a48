package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SergeiKhy/shortly/internal/middleware"
	"github.com/SergeiKhy/shortly/internal/models"
	"github.com/SergeiKhy/shortly/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UrlHandler struct {
	service service.UrlService
	logger  *zap.Logger
}

func NewUrlHandler(service service.UrlService, logger *zap.Logger) *UrlHandler {
	return &UrlHandler{
		service: service,
		logger:  logger,
	}
}

type CreateUrlResponse struct {
	ShortURL string `json:"shortUrl"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateUrl godoc
// @Summary Create a short url
// @Description Shorten a target URL; the owner is taken from the bearer token when present
// @Tags urls
// @Accept json
// @Produce json
// @Param request body models.CreateUrlInput true "Url creation request"
// @Success 201 {object} CreateUrlResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /urls [post]
func (h *UrlHandler) CreateUrl(c *gin.Context) {
	var input models.CreateUrlInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	// Владелец опционален: анонимное создание разрешено
	var ownerID *uint
	if userID, ok := middleware.GetUserID(c); ok {
		ownerID = &userID
	}

	shortURL, err := h.service.Create(c.Request.Context(), &input, ownerID)
	if err != nil {
		h.logger.Error("Failed to create url", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create URL",
		})
		return
	}

	c.JSON(http.StatusCreated, CreateUrlResponse{ShortURL: shortURL})
}

// ListUrls godoc
// @Summary List urls owned by the caller
// @Tags urls
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Url
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /urls [get]
func (h *UrlHandler) ListUrls(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	urls, err := h.service.FindManyByOwner(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list urls", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve user URLs",
		})
		return
	}

	c.JSON(http.StatusOK, urls)
}

// Redirect godoc
// @Summary Redirect to the target URL
// @Description Resolve a short code, count the visit and redirect
// @Tags urls
// @Param code path string true "Short code"
// @Success 302
// @Failure 404 {object} ErrorResponse
// @Router /{code} [get]
func (h *UrlHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	url, err := h.service.FindAndTrackVisit(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrURLNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "URL not found",
			})
			return
		}
		h.logger.Error("Failed to resolve url", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to retrieve URL",
		})
		return
	}

	c.Redirect(http.StatusFound, url.URL)
}

// UpdateUrl godoc
// @Summary Update a url
// @Description Patch url fields; only the owner may update
// @Tags urls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Url ID"
// @Param request body models.UpdateUrlInput true "Url patch"
// @Success 200 {object} models.Url
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /urls/{id} [patch]
func (h *UrlHandler) UpdateUrl(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input models.UpdateUrlInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	userID, _ := middleware.GetUserID(c)

	url, err := h.service.Update(c.Request.Context(), id, &input, userID)
	if err != nil {
		h.respondUrlError(c, err, "Failed to update URL", "You are not authorized to update this URL")
		return
	}

	c.JSON(http.StatusOK, url)
}

// DeleteUrl godoc
// @Summary Delete a url
// @Description Soft-delete a url; only the owner may delete
// @Tags urls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Url ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /urls/{id} [delete]
func (h *UrlHandler) DeleteUrl(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := h.service.Remove(c.Request.Context(), id, userID); err != nil {
		h.respondUrlError(c, err, "Failed to delete URL", "You are not authorized to delete this URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "URL deleted successfully"})
}

// respondUrlError транслирует доменные ошибки в HTTP статусы
func (h *UrlHandler) respondUrlError(c *gin.Context, err error, internalMsg, forbiddenMsg string) {
	switch {
	case errors.Is(err, service.ErrURLNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "URL not found",
		})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: forbiddenMsg,
		})
	default:
		h.logger.Error(internalMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: internalMsg,
		})
	}
}

// parseID разбирает path-параметр :id
func parseID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "ID must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}
