package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/admin-security/pkg/errors"
	"github.com/jwalitptl/admin-security/pkg/validator"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	TraceID string                 `json:"trace_id,omitempty"`
	Fields  []validator.FieldError `json:"fields,omitempty"`
}

// ErrorHandler renders the last error attached with c.Error. Validation
// failures become 400 with one entry per field.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		traceID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("trace_id", traceID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		lastErr := c.Errors.Last().Err
		resp := ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
			TraceID: traceID,
		}

		if fields := validator.Translate(lastErr, nil); len(fields) > 0 {
			resp.Code = http.StatusBadRequest
			resp.Message = "validation failed"
			resp.Fields = fields
		} else if appErr, ok := apperrors.As(lastErr); ok {
			resp.Code = appErr.StatusCode()
			if appErr.Code != apperrors.ErrInternal {
				resp.Message = appErr.Message
			}
		}

		c.AbortWithStatusJSON(resp.Code, resp)
	}
}
