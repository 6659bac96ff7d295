// Package handler provides HTTP handlers for the API.
package handler

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/verustcode/adreport/pkg/errors"
	"github.com/verustcode/adreport/pkg/logger"
)

// Pagination limits shared by list endpoints
const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// respondError writes err as {code, message[, details]} with the status of its code.
// Plain errors become internal errors and their text is not exposed.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := errors.AsAppError(err)
	if !ok {
		logger.Error("Unhandled handler error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    errors.ErrCodeInternal,
			"message": "Internal server error",
		})
		return
	}

	body := gin.H{"code": appErr.Code, "message": appErr.Message}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.JSON(appErr.HTTPStatus(), body)
}

// respondDBError maps record-not-found to a 404 for resource, anything else to E5002
func respondDBError(c *gin.Context, resource string, err error) {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, errors.ErrNotFound(resource))
		return
	}
	logger.Error("Database error", zap.String("resource", resource), zap.Error(err))
	respondError(c, errors.Wrap(errors.ErrCodeDBQuery, "database error", err))
}

// bindJSON decodes the body into req, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, errors.ErrValidation("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// pagination reads page and page_size query parameters with defaults
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// queryBool parses a boolean query parameter, def when absent or malformed
func queryBool(c *gin.Context, name string, def bool) bool {
	v, ok := c.GetQuery(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
