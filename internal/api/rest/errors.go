package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/buxdao/nft-ownership-sync/internal/api/shared/errors"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondError responds with the status of an executor error.
// Errors that are not API errors are logged and hidden behind message.
func respondError(c *gin.Context, err error, message string) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatus() >= http.StatusInternalServerError {
			logger.ErrorCtx(c.Request.Context(), err)
		}
		c.JSON(apiErr.HTTPStatus(), apiErr)
		return
	}

	logger.ErrorCtx(c.Request.Context(), err)
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}
