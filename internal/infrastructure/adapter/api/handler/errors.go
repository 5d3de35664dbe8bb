package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/api/dto"
)

// StatusCode maps a domain error to an HTTP status code
func StatusCode(err error) int {
	var cv *domainerr.ConstraintViolationError
	switch {
	case errors.Is(err, domainerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrValidation),
		errors.Is(err, domainerr.ErrInvalidRequest),
		errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrNegativeAmount),
		errors.Is(err, domainerr.ErrInvalidStatementFile):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.As(err, &cv):
		if cv.Kind == domainerr.ConstraintUnique {
			return http.StatusConflict
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainerr.ErrStatementAlreadyProcessed),
		errors.Is(err, domainerr.ErrWriteConflict):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrTransactionTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domainerr.ErrDatabaseConnection):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type logFielder interface {
	LogFields() map[string]any
}

// respondError logs err and writes its ErrorResponse. Server errors are
// reported without their message.
func respondError(c *gin.Context, logger coreport.Logger, message string, err error) {
	status := StatusCode(err)

	fields := map[string]any{
		"path":   c.FullPath(),
		"status": status,
		"error":  err.Error(),
	}
	var lf logFielder
	if errors.As(err, &lf) {
		for k, v := range lf.LogFields() {
			fields[k] = v
		}
	}

	resp := dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: err.Error(),
	}
	if kind := domainerr.KindOf(err); kind != domainerr.KindUnknown {
		resp.Kind = string(kind)
	}

	if status >= http.StatusInternalServerError {
		logger.Error(message, fields)
		if status == http.StatusInternalServerError {
			resp.Message = "Internal server error"
		}
	} else {
		logger.Warn(message, fields)
	}

	_ = c.Error(err)
	c.JSON(status, resp)
}

// badRequest rejects a request that could not be bound
func badRequest(c *gin.Context, logger coreport.Logger, err error) {
	logger.Warn("Invalid request format", map[string]any{
		"path":  c.FullPath(),
		"error": err.Error(),
	})
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
		Message: "Invalid request format: " + err.Error(),
	})
}
